// Package workqueue implements the append-only deferred-mutation log:
// filesystem mutations that must outlive the database transaction
// that queued them. Work items here only ever run after their owning
// database transaction has already committed, so there is nothing to
// roll back; a failed item is reported and notifications already
// emitted for earlier items are never retracted.
package workqueue

import (
	"context"

	"github.com/utkarsh5026/gosvn/pkg/common"
)

// Kind identifies what an Item does when it runs.
type Kind int

const (
	// KindInstallPristine copies pristine content into a working file.
	KindInstallPristine Kind = iota
	// KindWriteMarkers writes conflict marker files for a victim.
	KindWriteMarkers
)

// Item is an opaque queued filesystem mutation. The core never
// executes an Item directly; it only appends to a Queue which the
// caller runs after its transaction commits.
type Item struct {
	Kind Kind

	// InstallPristine fields.
	TargetAbspath string
	Checksum      string

	// CommitTime, when non-zero, is applied to TargetAbspath's mtime
	// after install, the miscellany.use-commit-times behavior.
	CommitTime common.Timestamp

	// WriteMarkers fields.
	VictimAbspath string
	MarkerData    map[string][]byte // suffix (".mine", ".rOLD", ".rNEW", ...) -> content
}

// Runner performs the side effect a Kind of Item describes. Production
// code supplies one backed by pkg/pristine and the filesystem; tests
// supply a fake.
type Runner interface {
	Run(ctx context.Context, item Item) error
}

// Queue is an append-only, in-memory list of work items collected
// during one transaction.
type Queue struct {
	items []Item
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{}
}

// Append adds an item to the tail of the queue, preserving
// deterministic ordering between queued items and committed state.
func (q *Queue) Append(item Item) {
	q.items = append(q.items, item)
}

// Items returns the queued items in append order.
func (q *Queue) Items() []Item {
	return q.items
}

// Len reports how many items are queued.
func (q *Queue) Len() int {
	return len(q.items)
}

// Run executes every queued item in order using runner, stopping at
// the first error and returning it; the items after the failing one
// are not run, and the error does not say which item failed.
func (q *Queue) Run(ctx context.Context, runner Runner) error {
	for _, item := range q.items {
		if err := runner.Run(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
