package tceditor

import (
	"context"
	"fmt"

	"github.com/utkarsh5026/gosvn/pkg/conflict"
	"github.com/utkarsh5026/gosvn/pkg/editor"
	"github.com/utkarsh5026/gosvn/pkg/wcdb"
)

// Driver walks the post-update state at a move's source (BASE,
// op_depth 0) against the pre-update state already recorded at the
// move's destination, driving Editor with the difference.
type Driver struct {
	Tx     *wcdb.Tx
	Editor editor.Editor
}

// Drive transfers the changes from srcRelpath (the move source,
// walked at op_depth 0) onto dstRelpath (the move destination,
// already at its own op_depth). Once the editor reports the walk
// complete, it replaces the destination's working layer with a copy
// of the source subtree, so that future scans see the moved-to
// subtree as matching the newly-updated source.
//
// Only update/switch victims are supported; any other operation kind
// is rejected before the walk starts, since merge-born tree conflicts
// are not auto-resolved here.
func (d *Driver) Drive(ctx context.Context, op conflict.Operation, srcRelpath, dstRelpath wcdb.Relpath, oldVersion *conflict.Version) error {
	if op != conflict.OpUpdate && op != conflict.OpSwitch {
		return fmt.Errorf("tceditor: cannot auto-resolve a tree conflict raised by operation %q", op)
	}

	var kind wcdb.Kind
	if oldVersion != nil {
		kind = oldVersion.NodeKind
	}

	moveRootDstRevision := wcdb.InvalidRevision
	if oldVersion != nil {
		moveRootDstRevision = oldVersion.Revision
	}

	var walkErr error
	switch kind {
	case wcdb.KindFile, wcdb.KindSymlink:
		walkErr = d.updateMovedAwayFile(ctx, srcRelpath, dstRelpath, moveRootDstRevision)
	case wcdb.KindDir:
		walkErr = d.updateMovedAwaySubtree(ctx, srcRelpath, dstRelpath, dstRelpath, moveRootDstRevision)
	default:
		walkErr = fmt.Errorf("tceditor: unsupported move-root node kind %q", kind)
	}
	if walkErr != nil {
		_ = d.Editor.Abort(ctx, walkErr)
		return walkErr
	}

	if err := d.Editor.Complete(ctx); err != nil {
		return fmt.Errorf("tceditor: complete: %w", err)
	}

	if err := d.Tx.ReplaceLayer(ctx, srcRelpath, dstRelpath); err != nil {
		return fmt.Errorf("tceditor: replace layer: %w", err)
	}
	return nil
}

// updateMovedAwayFile reads the post-update pristine checksum at
// srcRelpath's BASE layer and tells the editor to merge it into
// dstRelpath.
func (d *Driver) updateMovedAwayFile(ctx context.Context, srcRelpath, dstRelpath wcdb.Relpath, moveRootDstRevision int64) error {
	src, err := d.Tx.BaseGetInfo(ctx, srcRelpath)
	if err != nil {
		return fmt.Errorf("update_moved_away_file %s: %w", srcRelpath, err)
	}

	return d.Editor.AlterFile(ctx, editor.AlterFileArgs{
		Relpath:          dstRelpath,
		ExpectedRevision: moveRootDstRevision,
		NewChecksum:      src.Checksum,
	})
}

// updateMovedAwayDir is a stub: directory-level notification, property
// updates, and child-list reconciliation are not yet implemented. It
// keeps the same shape as the file case so the subtree walk has a
// place to hang that behavior once it is needed.
func (d *Driver) updateMovedAwayDir(ctx context.Context, srcRelpath, dstRelpath wcdb.Relpath) error {
	return nil
}

// updateMovedAwaySubtree recurses over srcRelpath's BASE children,
// filtering to only those that belong to this specific move (via
// ScanDeletion's op-root) before recursing into each.
func (d *Driver) updateMovedAwaySubtree(ctx context.Context, srcRelpath, dstRelpath, moveRootDstRelpath wcdb.Relpath, moveRootDstRevision int64) error {
	if err := d.updateMovedAwayDir(ctx, srcRelpath, dstRelpath); err != nil {
		return err
	}

	children, err := d.Tx.BaseGetChildren(ctx, srcRelpath)
	if err != nil {
		return fmt.Errorf("update_moved_away_subtree %s: %w", srcRelpath, err)
	}

	for _, name := range children {
		childSrcRelpath := srcRelpath.Join(name)

		// Is this child part of our move operation? A child added or
		// removed by the update itself (rather than carried by the move)
		// has no deletion record pointing back at our move root, and is
		// simply not walked.
		deletion, err := d.Tx.ScanDeletion(ctx, childSrcRelpath)
		if err != nil {
			return fmt.Errorf("update_moved_away_subtree %s: %w", childSrcRelpath, err)
		}
		if deletion.MoveOpRoot == "" || deletion.MoveOpRoot != moveRootDstRelpath {
			continue
		}

		childBase, err := d.Tx.BaseGetInfo(ctx, childSrcRelpath)
		if err != nil {
			return fmt.Errorf("update_moved_away_subtree %s: %w", childSrcRelpath, err)
		}
		childDstRelpath := dstRelpath.Join(name)

		switch childBase.Kind {
		case wcdb.KindFile, wcdb.KindSymlink:
			if err := d.updateMovedAwayFile(ctx, childSrcRelpath, childDstRelpath, moveRootDstRevision); err != nil {
				return err
			}
		case wcdb.KindDir:
			if err := d.updateMovedAwaySubtree(ctx, childSrcRelpath, childDstRelpath, moveRootDstRelpath, moveRootDstRevision); err != nil {
				return err
			}
		}
	}
	return nil
}
