// Package conflict implements the conflict skeleton API: structured
// conflict records attached to a victim relpath, and the deferred
// marker-file work item their resolution queues.
package conflict

import "github.com/utkarsh5026/gosvn/pkg/wcdb"

// Operation is the operation that produced a conflict.
type Operation string

const (
	OpUpdate Operation = "update"
	OpSwitch Operation = "switch"
	OpMerge  Operation = "merge"
)

// LocalChange is the local-side reason recorded on a tree conflict.
type LocalChange string

const (
	LocalEdited    LocalChange = "edited"
	LocalDeleted   LocalChange = "deleted"
	LocalMissing   LocalChange = "missing"
	LocalMovedAway LocalChange = "moved_away"
)

// IncomingChange is the incoming-side action recorded on a tree conflict.
type IncomingChange string

const (
	IncomingEdit    IncomingChange = "edit"
	IncomingDelete  IncomingChange = "delete"
	IncomingAdd     IncomingChange = "add"
	IncomingReplace IncomingChange = "replace"
)

// Version identifies one side of a conflict: a repository location,
// revision, and node kind.
type Version struct {
	ReposRootURL string
	ReposUUID    string
	PathInRepos  string
	Revision     int64
	NodeKind     wcdb.Kind
}

// Skeleton is a structured conflict record attached to a victim relpath.
type Skeleton struct {
	VictimRelpath  wcdb.Relpath
	Operation      Operation
	LocalChange    LocalChange
	IncomingChange IncomingChange
	TreeConflicted bool
	Old            *Version
	New            *Version

	// OriginalVersion is set by SetOpUpdate when a content conflict
	// (not the tree conflict itself) is stamped during resolution.
	OriginalVersion *Version
	stampedOp       Operation
}

// SetOpUpdate stamps the skeleton with the operation that produced a
// content-level conflict during resolution, and the original version
// the victim is being compared against.
func (s *Skeleton) SetOpUpdate(original Version) {
	s.stampedOp = OpUpdate
	s.OriginalVersion = &original
}

// ReadInfo returns the skeleton's operation, version pair, and tree-
// conflict flag.
func (s *Skeleton) ReadInfo() (op Operation, old, new *Version, treeConflicted bool) {
	return s.Operation, s.Old, s.New, s.TreeConflicted
}

// ReadTreeConflict returns the local/incoming change pair.
func (s *Skeleton) ReadTreeConflict() (LocalChange, IncomingChange) {
	return s.LocalChange, s.IncomingChange
}
