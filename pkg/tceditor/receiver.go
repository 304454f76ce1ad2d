// Package tceditor implements the tree-conflict editor receiver and
// the edit driver that walks a moved-away subtree during an update,
// co-located in one package since the driver and the receiver it calls
// are tightly coupled.
package tceditor

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/utkarsh5026/gosvn/pkg/conflict"
	"github.com/utkarsh5026/gosvn/pkg/editor"
	"github.com/utkarsh5026/gosvn/pkg/merge"
	"github.com/utkarsh5026/gosvn/pkg/pristine"
	"github.com/utkarsh5026/gosvn/pkg/wcdb"
	"github.com/utkarsh5026/gosvn/pkg/workqueue"
)

// Notification is what the receiver emits for each node it touches.
type Notification struct {
	TargetRelpath wcdb.Relpath
	Kind          wcdb.Kind
	ContentState  string // "conflicted", "merged", "changed", "inapplicable"
	OldRevision   int64
	NewRevision   int64
	Completed     bool
}

// NotifyFunc receives Notifications as the receiver produces them.
type NotifyFunc func(Notification)

const (
	StateConflicted   = "conflicted"
	StateMerged       = "merged"
	StateChanged      = "changed"
	StateInapplicable = "inapplicable"
)

// Receiver implements editor.Editor for tree-conflict resolution: it
// merges the incoming update into the moved-to working file wherever
// the driver calls AlterFile, and declines every other capability.
type Receiver struct {
	Tx       *wcdb.Tx
	Pristine *pristine.Store
	Queue    *workqueue.Queue
	Notify   NotifyFunc

	// ReadWorkingFile reads the current on-disk content of the
	// moved-to working file. Production callers (cmd/gosvn) wire in
	// the real working-copy filesystem reader; tests plug in a fake.
	// Nil falls back to a reader that always errors.
	ReadWorkingFile func(wcdb.Relpath) ([]byte, error)

	MoveRootDstRelpath wcdb.Relpath
	OldVersion         *conflict.Version
	NewVersion         *conflict.Version

	// ShadowedNodePolicy selects the behavior of AlterFile when the
	// target is shadowed by a higher op-depth layer. "skip" (the zero
	// value) leaves the working file untouched; "refuse" fails the
	// whole resolution instead.
	ShadowedNodePolicy string
}

var _ editor.Editor = (*Receiver)(nil)

func (r *Receiver) AddDirectory(ctx context.Context, relpath wcdb.Relpath) error {
	return editor.Unsupported("add_directory")
}

func (r *Receiver) AddFile(ctx context.Context, relpath wcdb.Relpath, checksum string) error {
	return editor.Unsupported("add_file")
}

func (r *Receiver) AddSymlink(ctx context.Context, relpath wcdb.Relpath, target string) error {
	return editor.Unsupported("add_symlink")
}

func (r *Receiver) AddAbsent(ctx context.Context, relpath wcdb.Relpath, kind wcdb.Kind) error {
	return editor.Unsupported("add_absent")
}

func (r *Receiver) AlterDirectory(ctx context.Context, relpath wcdb.Relpath, expectedRevision int64, properties map[string]string) error {
	return editor.Unsupported("alter_directory")
}

func (r *Receiver) AlterSymlink(ctx context.Context, relpath wcdb.Relpath, expectedRevision int64, newTarget string) error {
	return editor.Unsupported("alter_symlink")
}

func (r *Receiver) Delete(ctx context.Context, relpath wcdb.Relpath, expectedRevision int64) error {
	return editor.Unsupported("delete")
}

func (r *Receiver) Copy(ctx context.Context, srcRelpath wcdb.Relpath, srcRevision int64, dstRelpath wcdb.Relpath) error {
	return editor.Unsupported("copy")
}

func (r *Receiver) Move(ctx context.Context, srcRelpath, dstRelpath wcdb.Relpath) error {
	return editor.Unsupported("move")
}

func (r *Receiver) Rotate(ctx context.Context, relpaths []wcdb.Relpath) error {
	return editor.Unsupported("rotate")
}

// AlterFile is the only mutating capability this receiver implements.
// args.NewChecksum is the post-update checksum; the node's current
// checksum, revision, and kind are read fresh from the destination's
// own op-depth layer and asserted against args.ExpectedRevision.
func (r *Receiver) AlterFile(ctx context.Context, args editor.AlterFileArgs) error {
	dstOpDepth := r.MoveRootDstRelpath.Depth()
	dst, err := r.Tx.DepthGetInfo(ctx, args.Relpath, dstOpDepth)
	if err != nil {
		return fmt.Errorf("alter_file %s: %w", args.Relpath, err)
	}
	if dst.Revision != args.ExpectedRevision {
		return fmt.Errorf("alter_file %s: expected revision %d, found %d", args.Relpath, args.ExpectedRevision, dst.Revision)
	}
	if dst.Kind != wcdb.KindFile {
		return fmt.Errorf("alter_file %s: expected a file, found %s", args.Relpath, dst.Kind)
	}

	if dst.Checksum == args.NewChecksum {
		return nil // content unchanged by the update; nothing to merge
	}

	shadowed, err := r.Tx.IsShadowedAbove(ctx, args.Relpath, dstOpDepth)
	if err != nil {
		return fmt.Errorf("alter_file %s: %w", args.Relpath, err)
	}
	if shadowed {
		// A higher layer shadows this node, so the working file must
		// not be touched. ShadowedNodePolicy decides whether that's a
		// silent no-op or a hard failure.
		if r.ShadowedNodePolicy == "refuse" {
			return fmt.Errorf("alter_file %s: shadowed by a higher op-depth layer", args.Relpath)
		}
		return nil
	}

	return r.updateWorkingFile(ctx, args.Relpath, dst.ReposRelpath, args.NewChecksum, dst.Checksum)
}

// updateWorkingFile runs a three-way merge with the pre-update
// pristine content as base, the post-update pristine content as the
// incoming side, and the moved-to working file's current content as
// the local side. A conflicting result stamps the conflict skeleton
// and enqueues marker work items; a clean result enqueues a pristine
// install.
func (r *Receiver) updateWorkingFile(ctx context.Context, dstRelpath wcdb.Relpath, moveDstReposRelpath, moveSrcChecksum, moveDstChecksum string) error {
	baseContent, err := r.readPristine(moveDstChecksum)
	if err != nil {
		return fmt.Errorf("update_working_file %s: read base: %w", dstRelpath, err)
	}
	incomingContent, err := r.readPristine(moveSrcChecksum)
	if err != nil {
		return fmt.Errorf("update_working_file %s: read incoming: %w", dstRelpath, err)
	}

	mineContent, err := r.readWorkingFile(dstRelpath)
	if err != nil {
		return fmt.Errorf("update_working_file %s: read working copy: %w", dstRelpath, err)
	}

	outcome := merge.Files(baseContent, mineContent, incomingContent)

	var contentState string
	if outcome.HasConflicts {
		skel := &conflict.Skeleton{
			VictimRelpath:  dstRelpath,
			TreeConflicted: false,
		}
		if r.OldVersion != nil {
			original := *r.OldVersion
			original.PathInRepos = moveDstReposRelpath
			original.NodeKind = wcdb.KindFile
			skel.SetOpUpdate(original)
		}
		if err := conflict.Write(ctx, r.Tx, skel); err != nil {
			return fmt.Errorf("update_working_file %s: write conflict: %w", dstRelpath, err)
		}

		markers := skel.CreateMarkers(mineContent, baseContent, incomingContent)
		markers.VictimAbspath = string(dstRelpath)
		r.Queue.Append(markers)
		contentState = StateConflicted
	} else {
		r.Queue.Append(workqueue.Item{
			Kind:          workqueue.KindInstallPristine,
			TargetAbspath: string(dstRelpath),
			Checksum:      moveSrcChecksum,
		})
		if !bytes.Equal(mineContent, baseContent) {
			contentState = StateMerged
		} else {
			contentState = StateChanged
		}
	}

	r.emit(Notification{
		TargetRelpath: dstRelpath,
		Kind:          wcdb.KindFile,
		ContentState:  contentState,
		OldRevision:   r.peg(r.OldVersion),
		NewRevision:   r.peg(r.NewVersion),
	})
	return nil
}

func (r *Receiver) readPristine(checksum string) ([]byte, error) {
	rc, err := r.Pristine.Open(checksum)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (r *Receiver) readWorkingFile(relpath wcdb.Relpath) ([]byte, error) {
	if r.ReadWorkingFile == nil {
		return nil, fmt.Errorf("tceditor: no working-file reader configured for %s", relpath)
	}
	return r.ReadWorkingFile(relpath)
}

// Complete notifies that the whole driven tree has been processed.
func (r *Receiver) Complete(ctx context.Context) error {
	r.emit(Notification{
		TargetRelpath: r.MoveRootDstRelpath,
		ContentState:  StateInapplicable,
		NewRevision:   r.peg(r.NewVersion),
		Completed:     true,
	})
	return nil
}

// Abort is a no-op: any partial state is cleaned up by the caller's
// transaction rollback.
func (r *Receiver) Abort(ctx context.Context, cause error) error {
	return nil
}

func (r *Receiver) emit(n Notification) {
	if r.Notify != nil {
		r.Notify(n)
	}
}

func (r *Receiver) peg(v *conflict.Version) int64 {
	if v == nil {
		return wcdb.InvalidRevision
	}
	return v.Revision
}
