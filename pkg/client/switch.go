package client

import (
	"context"
	"fmt"

	"github.com/utkarsh5026/gosvn/pkg/conflict"
	"github.com/utkarsh5026/gosvn/pkg/ra"
	"github.com/utkarsh5026/gosvn/pkg/resolve"
	"github.com/utkarsh5026/gosvn/pkg/tceditor"
	"github.com/utkarsh5026/gosvn/pkg/wcdb"
	"github.com/utkarsh5026/gosvn/pkg/workqueue"
)

// Switch orchestrates a working-copy switch (or, with Operation set to
// conflict.OpUpdate, a plain update): open a repository-access session
// at url, fetch its delta against the target's current BASE revision,
// apply it, and, when AutoMergeTreeConflicts is set, hand any
// moved-away victims straight to the resolver.
type Switch struct {
	Registry *ra.Registry
	WCRoot   *wcdb.WCRoot
	Resolver *resolve.Coordinator

	// Operation distinguishes a switch from a plain update for the
	// tree-conflict skeletons ApplyEditor records; both drive the same
	// apply path.
	Operation conflict.Operation

	// AutoMergeTreeConflicts runs pkg/resolve against every moved-away
	// victim this switch raises, controlled by the "resolve.auto-merge"
	// config knob.
	AutoMergeTreeConflicts bool

	Notify tceditor.NotifyFunc
}

// Result reports what a Switch.Run produced: the work items the
// caller must run after the transaction commits, and any tree
// conflicts the switch itself raised (whether or not they were
// auto-resolved).
type Result struct {
	WorkItems           []workqueue.Item
	TreeConflictVictims []wcdb.Relpath
}

// Run switches target to url. target's current BASE revision is the
// diff's "from" side; the session's latest revision is the "to" side.
func (s *Switch) Run(ctx context.Context, target wcdb.Relpath, url string) (*Result, error) {
	if err := s.WCRoot.VerifyUsable(); err != nil {
		return nil, err
	}

	sess, err := s.Registry.Open(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("switch %s: %w", target, err)
	}
	defer sess.Close()

	latest, err := sess.LatestRevision(ctx)
	if err != nil {
		return nil, fmt.Errorf("switch %s: %w", target, err)
	}

	tx, err := s.WCRoot.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	base, err := tx.BaseGetInfo(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("switch %s: %w", target, err)
	}

	queue := workqueue.New()
	var victims []wcdb.Relpath
	applyEd := &ApplyEditor{
		Tx:             tx,
		Queue:          queue,
		Victims:        &victims,
		Operation:      s.Operation,
		Notify:         s.Notify,
		TargetRevision: latest,
	}

	if err := sess.Update(ctx, base.Revision, latest, applyEd); err != nil {
		return nil, fmt.Errorf("switch %s: %w", target, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("switch %s: commit: %w", target, err)
	}
	committed = true

	items := queue.Items()
	if s.AutoMergeTreeConflicts {
		for _, victim := range victims {
			resolved, err := s.Resolver.UpdateMovedAwayConflictVictim(ctx, victim)
			if err != nil {
				continue // left as an unresolved tree conflict for the user
			}
			items = append(items, resolved...)
		}
	}

	return &Result{WorkItems: items, TreeConflictVictims: victims}, nil
}
