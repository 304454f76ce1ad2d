// Package resolve implements the Coordinator: the single entry point,
// UpdateMovedAwayConflictVictim, that ties the working-copy store,
// conflict store, tree-conflict editor, and layer replacer together
// inside one transaction.
package resolve

import (
	"context"
	"fmt"

	"github.com/utkarsh5026/gosvn/pkg/conflict"
	"github.com/utkarsh5026/gosvn/pkg/pristine"
	"github.com/utkarsh5026/gosvn/pkg/tceditor"
	"github.com/utkarsh5026/gosvn/pkg/wcdb"
	"github.com/utkarsh5026/gosvn/pkg/workqueue"
)

// Coordinator drives the whole auto-resolution of a moved-away tree
// conflict victim against one WCRoot.
type Coordinator struct {
	WCRoot   *wcdb.WCRoot
	Pristine *pristine.Store
	Notify   tceditor.NotifyFunc

	// ReadWorkingFile reads the current on-disk content of a moved-to
	// working file; forwarded unchanged into the Receiver it builds.
	ReadWorkingFile func(wcdb.Relpath) ([]byte, error)

	// ShadowedNodePolicy is forwarded unchanged into the Receiver;
	// empty means "skip" (resolve.shadowed-node-policy's default).
	ShadowedNodePolicy string
}

// UpdateMovedAwayConflictVictim resolves the tree conflict recorded at
// victimRelpath, returning the work items the caller must run (after
// this function's transaction has committed) to apply the merge's
// filesystem side effects.
//
// In order: read and validate the conflict skeleton, locate the move
// destination, construct and drive the tree-conflict editor, and
// replace the destination's op-depth layer, all inside one
// transaction.
func (c *Coordinator) UpdateMovedAwayConflictVictim(ctx context.Context, victimRelpath wcdb.Relpath) ([]workqueue.Item, error) {
	if err := c.WCRoot.VerifyUsable(); err != nil {
		return nil, err
	}

	tx, err := c.WCRoot.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	skel, err := conflict.Read(ctx, tx, victimRelpath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", victimRelpath, err)
	}
	if skel == nil {
		return nil, conflict.ErrNotInConflict(string(victimRelpath))
	}
	op, oldVersion, newVersion, treeConflicted := skel.ReadInfo()
	if !treeConflicted {
		return nil, conflict.ErrNotTreeConflict(string(victimRelpath))
	}

	deletion, err := tx.ScanDeletion(ctx, victimRelpath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", victimRelpath, err)
	}
	if deletion.MoveOpRoot == "" {
		return nil, conflict.ErrResolverFailed(string(victimRelpath),
			fmt.Errorf("the node has not been moved away"))
	}
	moveRootDstRelpath := deletion.MoveOpRoot

	queue := workqueue.New()
	receiver := &tceditor.Receiver{
		Tx:                 tx,
		Pristine:           c.Pristine,
		Queue:              queue,
		Notify:             c.Notify,
		ReadWorkingFile:    c.ReadWorkingFile,
		MoveRootDstRelpath: moveRootDstRelpath,
		OldVersion:         oldVersion,
		NewVersion:         newVersion,
		ShadowedNodePolicy: c.ShadowedNodePolicy,
	}
	driver := &tceditor.Driver{Tx: tx, Editor: receiver}

	if err := driver.Drive(ctx, op, victimRelpath, moveRootDstRelpath, oldVersion); err != nil {
		return nil, conflict.ErrResolverFailed(string(victimRelpath), err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("resolve %s: commit: %w", victimRelpath, err)
	}
	committed = true

	return queue.Items(), nil
}
