package ra

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/utkarsh5026/gosvn/pkg/editor"
	"github.com/utkarsh5026/gosvn/pkg/wcdb"
)

// Node is one repository node as it exists at a given revision.
type Node struct {
	Kind     wcdb.Kind
	Checksum string // meaningful for KindFile/KindSymlink only
}

// Repository is an in-process "ra_local" repository: a simple
// revision history a LocalPlugin session can diff against, standing
// in for the real network/filesystem round trip a production RA
// layer would make. It exists so pkg/client.Switch can be driven and
// tested without a real svnserve or DAV endpoint.
type Repository struct {
	mu        sync.Mutex
	revisions []map[wcdb.Relpath]Node // index i is the tree as of revision i
}

// NewRepository returns a Repository starting at revision 0 (empty tree).
func NewRepository() *Repository {
	return &Repository{revisions: []map[wcdb.Relpath]Node{{}}}
}

// Commit snapshots the current HEAD overlaid with changes into a new
// revision and returns its number. A Node with an empty Checksum and
// KindFile/KindSymlink kind is not valid; to delete a path, use Delete
// instead.
func (r *Repository) Commit(changes map[wcdb.Relpath]Node) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[wcdb.Relpath]Node, len(r.revisions[len(r.revisions)-1])+len(changes))
	for k, v := range r.revisions[len(r.revisions)-1] {
		next[k] = v
	}
	for k, v := range changes {
		next[k] = v
	}
	r.revisions = append(r.revisions, next)
	return int64(len(r.revisions) - 1)
}

// Delete removes relpaths from the current HEAD in a new revision.
func (r *Repository) Delete(relpaths ...wcdb.Relpath) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[wcdb.Relpath]Node, len(r.revisions[len(r.revisions)-1]))
	for k, v := range r.revisions[len(r.revisions)-1] {
		next[k] = v
	}
	for _, p := range relpaths {
		delete(next, p)
	}
	r.revisions = append(r.revisions, next)
	return int64(len(r.revisions) - 1)
}

func (r *Repository) latest() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.revisions) - 1)
}

func (r *Repository) tree(revision int64) (map[wcdb.Relpath]Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if revision < 0 || int(revision) >= len(r.revisions) {
		return nil, fmt.Errorf("ra: revision %d out of range [0,%d]", revision, len(r.revisions)-1)
	}
	return r.revisions[revision], nil
}

// LocalPlugin is the "file" scheme Plugin, the Go analogue of
// ra_local: repositories are looked up by filesystem path rather than
// dialed over the network.
type LocalPlugin struct {
	mu    sync.RWMutex
	repos map[string]*Repository
}

// NewLocalPlugin returns a LocalPlugin with no repositories registered.
func NewLocalPlugin() *LocalPlugin {
	return &LocalPlugin{repos: make(map[string]*Repository)}
}

func (p *LocalPlugin) Scheme() string { return "file" }

// RegisterRepository makes repo reachable at file://<path>.
func (p *LocalPlugin) RegisterRepository(path string, repo *Repository) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.repos[path] = repo
}

func (p *LocalPlugin) Open(ctx context.Context, rawURL string) (Session, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	path := strings.TrimSuffix(u.Path, "/")

	p.mu.RLock()
	repo, ok := p.repos[path]
	p.mu.RUnlock()
	if !ok {
		return nil, ErrNoSuchRepo(path)
	}
	return &localSession{repo: repo}, nil
}

type localSession struct {
	repo *Repository
}

func (s *localSession) Close() error { return nil }

func (s *localSession) LatestRevision(ctx context.Context) (int64, error) {
	return s.repo.latest(), nil
}

func (s *localSession) GetCommitEditor(ctx context.Context) (editor.Editor, error) {
	return nil, fmt.Errorf("ra: commit editor not supported by the local plugin")
}

// Update computes the delta between fromRevision and toRevision and
// drives ed with it: AddDirectory/AddFile for paths new at toRevision,
// AlterFile for paths whose checksum changed, Delete for paths gone at
// toRevision. This is enough surface for pkg/client.Switch to exercise
// a real editor.Editor.
func (s *localSession) Update(ctx context.Context, fromRevision, toRevision int64, ed editor.Editor) error {
	from, err := s.repo.tree(fromRevision)
	if err != nil {
		return err
	}
	to, err := s.repo.tree(toRevision)
	if err != nil {
		return err
	}

	for relpath, node := range to {
		old, existed := from[relpath]
		switch {
		case !existed && node.Kind == wcdb.KindDir:
			if err := ed.AddDirectory(ctx, relpath); err != nil {
				return fmt.Errorf("update %s: %w", relpath, err)
			}
		case !existed:
			if err := ed.AddFile(ctx, relpath, node.Checksum); err != nil {
				return fmt.Errorf("update %s: %w", relpath, err)
			}
		case existed && old.Checksum != node.Checksum && node.Kind == wcdb.KindFile:
			if err := ed.AlterFile(ctx, editor.AlterFileArgs{
				Relpath:          relpath,
				ExpectedRevision: fromRevision,
				NewChecksum:      node.Checksum,
			}); err != nil {
				return fmt.Errorf("update %s: %w", relpath, err)
			}
		}
	}
	for relpath := range from {
		if _, stillPresent := to[relpath]; !stillPresent {
			if err := ed.Delete(ctx, relpath, fromRevision); err != nil {
				return fmt.Errorf("update %s: %w", relpath, err)
			}
		}
	}

	return ed.Complete(ctx)
}
