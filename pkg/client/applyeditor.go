// Package client provides the CLI-facing orchestration glue that ties
// pkg/ra, pkg/wcdb, and pkg/resolve together. switch.go drives a
// repository-access session against a working copy, and applyeditor.go
// supplies the editor.Editor that writes what the session reports
// straight into the BASE layer.
package client

import (
	"context"
	"fmt"

	"github.com/utkarsh5026/gosvn/pkg/conflict"
	"github.com/utkarsh5026/gosvn/pkg/editor"
	"github.com/utkarsh5026/gosvn/pkg/tceditor"
	"github.com/utkarsh5026/gosvn/pkg/wcdb"
	"github.com/utkarsh5026/gosvn/pkg/workqueue"
)

// ApplyEditor implements editor.Editor for a plain update/switch: it
// writes new and altered nodes straight into the BASE layer and queues
// a pristine install per changed file. For a node found to have been
// locally moved away no pristine install is queued (an altered file
// still gets its new BASE revision/checksum; a deleted one keeps its
// BASE row); instead a tree-conflict skeleton is recorded and the
// victim's relpath collected so the caller can hand it to pkg/resolve.
type ApplyEditor struct {
	Tx        *wcdb.Tx
	Queue     *workqueue.Queue
	Victims   *[]wcdb.Relpath
	Operation conflict.Operation
	Notify    tceditor.NotifyFunc

	// TargetRevision is the revision new/altered BASE rows are stamped
	// with.
	TargetRevision int64
}

var _ editor.Editor = (*ApplyEditor)(nil)

func (e *ApplyEditor) AddDirectory(ctx context.Context, relpath wcdb.Relpath) error {
	return e.Tx.InsertNode(ctx, wcdb.NodeRow{
		Relpath:       relpath,
		OpDepth:       0,
		Kind:          wcdb.KindDir,
		Revision:      e.TargetRevision,
		ParentRelpath: relpath.Dir(),
	})
}

func (e *ApplyEditor) AddFile(ctx context.Context, relpath wcdb.Relpath, checksum string) error {
	if err := e.Tx.InsertNode(ctx, wcdb.NodeRow{
		Relpath:       relpath,
		OpDepth:       0,
		Kind:          wcdb.KindFile,
		Revision:      e.TargetRevision,
		ParentRelpath: relpath.Dir(),
		Checksum:      checksum,
	}); err != nil {
		return err
	}
	e.queueInstall(relpath, checksum)
	e.notify(relpath, wcdb.KindFile, tceditor.StateChanged)
	return nil
}

func (e *ApplyEditor) AddSymlink(ctx context.Context, relpath wcdb.Relpath, target string) error {
	return editor.Unsupported("add_symlink")
}

func (e *ApplyEditor) AddAbsent(ctx context.Context, relpath wcdb.Relpath, kind wcdb.Kind) error {
	return editor.Unsupported("add_absent")
}

func (e *ApplyEditor) AlterDirectory(ctx context.Context, relpath wcdb.Relpath, expectedRevision int64, properties map[string]string) error {
	return e.Tx.UpdateBaseNode(ctx, relpath, e.TargetRevision, "")
}

// AlterFile bumps relpath's BASE revision/checksum. If relpath has
// been locally moved away, it then records a tree-conflict victim
// instead of touching the working file, deferring the merge to
// pkg/resolve.
func (e *ApplyEditor) AlterFile(ctx context.Context, args editor.AlterFileArgs) error {
	if err := e.Tx.UpdateBaseNode(ctx, args.Relpath, e.TargetRevision, args.NewChecksum); err != nil {
		return fmt.Errorf("apply_editor: alter_file %s: %w", args.Relpath, err)
	}

	deletion, err := e.Tx.ScanDeletion(ctx, args.Relpath)
	if err != nil {
		return fmt.Errorf("apply_editor: alter_file %s: %w", args.Relpath, err)
	}
	if deletion.Deleted && deletion.MoveOpRoot != "" {
		return e.recordVictim(ctx, args.Relpath, args.ExpectedRevision)
	}
	e.queueInstall(args.Relpath, args.NewChecksum)
	e.notify(args.Relpath, wcdb.KindFile, tceditor.StateChanged)
	return nil
}

func (e *ApplyEditor) AlterSymlink(ctx context.Context, relpath wcdb.Relpath, expectedRevision int64, newTarget string) error {
	return editor.Unsupported("alter_symlink")
}

// Delete removes relpath from the BASE layer, unless it has been
// locally moved away; then the BASE row is kept and, as in AlterFile,
// a tree-conflict victim is recorded instead.
func (e *ApplyEditor) Delete(ctx context.Context, relpath wcdb.Relpath, expectedRevision int64) error {
	deletion, err := e.Tx.ScanDeletion(ctx, relpath)
	if err != nil {
		return fmt.Errorf("apply_editor: delete %s: %w", relpath, err)
	}
	if deletion.Deleted && deletion.MoveOpRoot != "" {
		return e.recordVictim(ctx, relpath, expectedRevision)
	}
	if err := e.Tx.DeleteBaseNode(ctx, relpath); err != nil {
		return err
	}
	e.notify(relpath, "", tceditor.StateChanged)
	return nil
}

func (e *ApplyEditor) Copy(ctx context.Context, srcRelpath wcdb.Relpath, srcRevision int64, dstRelpath wcdb.Relpath) error {
	return editor.Unsupported("copy")
}

func (e *ApplyEditor) Move(ctx context.Context, srcRelpath, dstRelpath wcdb.Relpath) error {
	return editor.Unsupported("move")
}

func (e *ApplyEditor) Rotate(ctx context.Context, relpaths []wcdb.Relpath) error {
	return editor.Unsupported("rotate")
}

func (e *ApplyEditor) Complete(ctx context.Context) error { return nil }

func (e *ApplyEditor) Abort(ctx context.Context, cause error) error { return nil }

func (e *ApplyEditor) queueInstall(relpath wcdb.Relpath, checksum string) {
	e.Queue.Append(workqueue.Item{
		Kind:          workqueue.KindInstallPristine,
		TargetAbspath: string(relpath),
		Checksum:      checksum,
	})
}

func (e *ApplyEditor) notify(relpath wcdb.Relpath, kind wcdb.Kind, state string) {
	if e.Notify == nil {
		return
	}
	e.Notify(tceditor.Notification{
		TargetRelpath: relpath,
		Kind:          kind,
		ContentState:  state,
		NewRevision:   e.TargetRevision,
	})
}

// recordVictim writes a tree-conflict skeleton for relpath and appends
// it to Victims. It lives here rather than in pkg/conflict since only
// the caller driving this editor knows the old/new version pair
// involved.
func (e *ApplyEditor) recordVictim(ctx context.Context, relpath wcdb.Relpath, oldRevision int64) error {
	base, err := e.Tx.BaseGetInfo(ctx, relpath)
	if err != nil {
		return fmt.Errorf("apply_editor: record_victim %s: %w", relpath, err)
	}

	skel := &conflict.Skeleton{
		VictimRelpath:  relpath,
		Operation:      e.Operation,
		LocalChange:    conflict.LocalMovedAway,
		IncomingChange: conflict.IncomingEdit,
		TreeConflicted: true,
		Old: &conflict.Version{
			ReposRootURL: base.ReposRootURL,
			PathInRepos:  base.ReposRelpath,
			Revision:     oldRevision,
			NodeKind:     base.Kind,
		},
		New: &conflict.Version{
			ReposRootURL: base.ReposRootURL,
			PathInRepos:  base.ReposRelpath,
			Revision:     e.TargetRevision,
			NodeKind:     base.Kind,
		},
	}
	if err := conflict.Write(ctx, e.Tx, skel); err != nil {
		return fmt.Errorf("apply_editor: record_victim %s: %w", relpath, err)
	}
	*e.Victims = append(*e.Victims, relpath)
	e.notify(relpath, base.Kind, tceditor.StateConflicted)
	return nil
}
