package workqueue

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/utkarsh5026/gosvn/pkg/common/fileops"
	"github.com/utkarsh5026/gosvn/pkg/pristine"
	"github.com/utkarsh5026/gosvn/pkg/repository/scpath"
)

// FileRunner is the production Runner: it installs pristine content and
// writes conflict marker files directly to the working copy, using the
// teacher's atomic-write helpers (pkg/common/fileops.AtomicWrite) so a
// crash mid-install never leaves a half-written file.
type FileRunner struct {
	Pristine *pristine.Store
}

// Run implements Runner.
func (r *FileRunner) Run(ctx context.Context, item Item) error {
	switch item.Kind {
	case KindInstallPristine:
		return r.installPristine(item)
	case KindWriteMarkers:
		return r.writeMarkers(item)
	default:
		return fmt.Errorf("workqueue: unknown item kind %d", item.Kind)
	}
}

func (r *FileRunner) installPristine(item Item) error {
	src, err := r.Pristine.Open(item.Checksum)
	if err != nil {
		return fmt.Errorf("install pristine into %s: %w", item.TargetAbspath, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("install pristine into %s: %w", item.TargetAbspath, err)
	}

	target, err := scpath.NewAbsolutePath(item.TargetAbspath)
	if err != nil {
		return fmt.Errorf("install pristine into %s: %w", item.TargetAbspath, err)
	}
	if err := fileops.AtomicWrite(target, data, os.FileMode(0644)); err != nil {
		return err
	}
	if !item.CommitTime.IsZero() {
		t := item.CommitTime.Time()
		if err := os.Chtimes(target.String(), t, t); err != nil {
			return fmt.Errorf("stamp commit time on %s: %w", item.TargetAbspath, err)
		}
	}
	return nil
}

func (r *FileRunner) writeMarkers(item Item) error {
	for suffix, data := range item.MarkerData {
		target, err := scpath.NewAbsolutePath(item.VictimAbspath + suffix)
		if err != nil {
			return fmt.Errorf("write conflict marker %s: %w", suffix, err)
		}
		if err := fileops.AtomicWrite(target, data, os.FileMode(0644)); err != nil {
			return fmt.Errorf("write conflict marker %s: %w", suffix, err)
		}
	}
	return nil
}
