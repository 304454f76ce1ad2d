package conflict

import (
	baseerr "github.com/utkarsh5026/gosvn/pkg/common/err"
)

const pkgName = "conflict"

// Error codes for conditions pkg/wcdb doesn't raise directly: a
// resolver invoked on a victim that carries no conflict at all, or a
// conflict that exists but isn't the tree-conflict kind the resolver
// handles.
const (
	CodeNotInConflict   = "NOT_IN_CONFLICT"
	CodeNotTreeConflict = "NOT_TREE_CONFLICT_VICTIM"
	CodeResolverFailed  = "CONFLICT_RESOLVER_FAILURE"
)

// Error wraps the base error type with conflict-specific context.
type Error struct {
	base          *baseerr.Error
	VictimRelpath string
}

func newError(op, code, victimRelpath string, underlying error) *Error {
	return &Error{
		base:          baseerr.New(pkgName, code, op, "", underlying),
		VictimRelpath: victimRelpath,
	}
}

func (e *Error) Error() string {
	msg := e.base.Error()
	if e.VictimRelpath != "" {
		msg += " [victim=" + e.VictimRelpath + "]"
	}
	return msg
}

func (e *Error) Unwrap() error { return e.base }

// ErrNotInConflict is returned when a victim relpath carries no
// conflict skeleton at all.
func ErrNotInConflict(victimRelpath string) error {
	return newError("read", CodeNotInConflict, victimRelpath, nil)
}

// ErrNotTreeConflict is returned when a victim's conflict skeleton
// exists but TreeConflicted is false.
func ErrNotTreeConflict(victimRelpath string) error {
	return newError("read_tree_conflict", CodeNotTreeConflict, victimRelpath, nil)
}

// ErrResolverFailed wraps an error raised while resolving a victim;
// resolution failures are reported, never silently swallowed.
func ErrResolverFailed(victimRelpath string, underlying error) error {
	return newError("resolve", CodeResolverFailed, victimRelpath, underlying)
}

// IsNotInConflict reports whether err is an ErrNotInConflict.
func IsNotInConflict(err error) bool {
	return baseerr.IsCode(err, CodeNotInConflict)
}

// IsNotTreeConflict reports whether err is an ErrNotTreeConflict.
func IsNotTreeConflict(err error) bool {
	return baseerr.IsCode(err, CodeNotTreeConflict)
}

// IsResolverFailed reports whether err is an ErrResolverFailed.
func IsResolverFailed(err error) bool {
	return baseerr.IsCode(err, CodeResolverFailed)
}
