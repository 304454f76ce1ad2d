package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/utkarsh5026/gosvn/pkg/client"
	"github.com/utkarsh5026/gosvn/pkg/config"
	"github.com/utkarsh5026/gosvn/pkg/pristine"
	"github.com/utkarsh5026/gosvn/pkg/ra"
	"github.com/utkarsh5026/gosvn/pkg/repository/scpath"
	"github.com/utkarsh5026/gosvn/pkg/resolve"
	"github.com/utkarsh5026/gosvn/pkg/wcdb"
)

// workingCopy bundles everything a command needs to talk to one
// working copy: the wcdb root, the pristine store, and a registry of
// repository-access plugins reachable from it.
type workingCopy struct {
	root     *wcdb.WCRoot
	pristine *pristine.Store
	registry *ra.Registry
	repoPath scpath.RepositoryPath
	config   *config.TypedConfig
}

// openWorkingCopy finds the nearest ancestor of the current directory
// holding a .source metadata directory and opens its wcdb and pristine
// store.
func openWorkingCopy(ctx context.Context) (*workingCopy, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	dir := cwd
	for {
		sourceDir := filepath.Join(dir, scpath.SourceDir)
		if info, err := os.Stat(sourceDir); err == nil && info.IsDir() {
			repoPath, err := scpath.NewRepositoryPath(dir)
			if err != nil {
				return nil, fmt.Errorf("invalid repository path: %w", err)
			}
			return openAt(ctx, repoPath, sourceDir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("not a gosvn working copy (or any parent up to mount point)")
		}
		dir = parent
	}
}

func openAt(ctx context.Context, repoPath scpath.RepositoryPath, sourceDir string) (*workingCopy, error) {
	root, err := wcdb.Open(ctx, filepath.Join(sourceDir, "wc.db"), string(repoPath))
	if err != nil {
		return nil, fmt.Errorf("open working copy: %w", err)
	}

	store, err := pristine.Open(repoPath)
	if err != nil {
		return nil, fmt.Errorf("open pristine store: %w", err)
	}

	localPlugin := ra.NewLocalPlugin()
	localPlugin.RegisterRepository(string(repoPath), ra.NewRepository())
	registry := ra.NewRegistry()
	registry.Register(localPlugin)

	cfgManager := config.NewManager(repoPath)
	if err := cfgManager.Load(ctx); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &workingCopy{
		root:     root,
		pristine: store,
		registry: registry,
		repoPath: repoPath,
		config:   config.NewTypedConfig(cfgManager),
	}, nil
}

// readWorkingFile reads the on-disk content of a moved-to working file
// relative to the working copy's root, the real filesystem reader
// wired behind pkg/resolve.Coordinator.ReadWorkingFile and
// pkg/tceditor.Receiver.ReadWorkingFile in production.
func (wc *workingCopy) readWorkingFile(relpath wcdb.Relpath) ([]byte, error) {
	abspath, err := wc.repoPath.JoinRelative(scpath.RelativePath(relpath))
	if err != nil {
		return nil, err
	}
	return os.ReadFile(string(abspath))
}

func (wc *workingCopy) resolver() *resolve.Coordinator {
	return &resolve.Coordinator{
		WCRoot:             wc.root,
		Pristine:           wc.pristine,
		ReadWorkingFile:    wc.readWorkingFile,
		ShadowedNodePolicy: wc.config.ShadowedNodePolicy(),
	}
}

func (wc *workingCopy) switcher(autoMerge bool) *client.Switch {
	return &client.Switch{
		Registry:               wc.registry,
		WCRoot:                 wc.root,
		Resolver:               wc.resolver(),
		AutoMergeTreeConflicts: autoMerge,
	}
}

// Lipgloss styles for CLI output.
var (
	colorGreenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	colorRedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	colorYellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
	colorCyanStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5F5FFF")).
			Padding(0, 1).
			MarginBottom(1)
)

func colorGreen(s string) string  { return colorGreenStyle.Render(s) }
func colorRed(s string) string    { return colorRedStyle.Render(s) }
func colorYellow(s string) string { return colorYellowStyle.Render(s) }
func colorCyan(s string) string   { return colorCyanStyle.Render(s) }

func renderHeader(text string) string { return headerStyle.Render(text) }
