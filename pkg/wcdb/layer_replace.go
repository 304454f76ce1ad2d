package wcdb

import (
	"context"
	"fmt"
)

// ReplaceLayer rewrites the single op-depth layer at dstRelpath so it
// matches the subtree at srcRelpath's srcOpDepth layer (below), after
// the tree-conflict editor has applied content changes.
//
// srcOpDepth is taken from the second row SelectNodeInfo returns for
// srcRelpath: the first is always BASE (op_depth 0), the second is the
// layer that recorded the source's deletion/move. Its absence means
// srcRelpath was never actually deleted locally.
func (t *Tx) ReplaceLayer(ctx context.Context, srcRelpath, dstRelpath Relpath) error {
	rows, err := t.SelectNodeInfo(ctx, srcRelpath)
	if err != nil {
		return fmt.Errorf("replace_layer: %w", err)
	}
	if len(rows) < 2 {
		return ErrNotDeleted(string(srcRelpath))
	}
	srcOpDepth := rows[1].OpDepth
	dstOpDepth := dstRelpath.Depth()

	if err := t.DeleteWorkingOpDepth(ctx, dstRelpath, dstOpDepth); err != nil {
		return fmt.Errorf("replace_layer: %w", err)
	}

	srcRows, err := t.SelectLocalRelpathOpDepth(ctx, srcRelpath, srcOpDepth)
	if err != nil {
		return fmt.Errorf("replace_layer: %w", err)
	}

	for _, srcCPRelpath := range srcRows {
		suffix, ok := srcCPRelpath.SkipAncestor(srcRelpath)
		if !ok {
			continue
		}
		dstCPRelpath := dstRelpath
		if suffix != "" {
			dstCPRelpath = dstRelpath.Join(string(suffix))
		}
		if err := t.CopyNodeMove(ctx, srcCPRelpath, srcOpDepth, dstCPRelpath, dstOpDepth, dstCPRelpath.Dir()); err != nil {
			return fmt.Errorf("replace_layer: copy %s: %w", srcCPRelpath, err)
		}
	}

	// TODO(move-replay): extend or retract base-deleted layers to
	// account for children added or removed by the incoming update.

	return nil
}
