package wcdb

import (
	baseerr "github.com/utkarsh5026/gosvn/pkg/common/err"
)

const pkgName = "wcdb"

// Package-specific error codes. Not-found and not-deleted conditions
// are raised here; the rest of the error taxonomy lives closer to the
// callers that detect it (pkg/conflict, pkg/editor).
const (
	CodeNotFound        = "NOT_FOUND"
	CodeNotDeleted      = "NOT_DELETED"
	CodeWCRootNotUsable = "WCROOT_NOT_USABLE"
)

// Error wraps the base error type with wcdb-specific context.
type Error struct {
	base    *baseerr.Error
	Relpath string
	OpDepth int
}

func newError(op, code, relpath string, opDepth int, underlying error) *Error {
	return &Error{
		base:    baseerr.New(pkgName, code, op, "", underlying),
		Relpath: relpath,
		OpDepth: opDepth,
	}
}

func (e *Error) Error() string {
	msg := e.base.Error()
	if e.Relpath != "" {
		msg += " [relpath=" + e.Relpath + "]"
	}
	return msg
}

func (e *Error) Unwrap() error { return e.base }

// ErrNodeNotFound is returned when a query expects a row but finds none.
func ErrNodeNotFound(op, relpath string, opDepth int) error {
	return newError(op, CodeNotFound, relpath, opDepth, nil)
}

// ErrNotDeleted is returned by ReplaceLayer when the source has no
// working layer above BASE.
func ErrNotDeleted(relpath string) error {
	return newError("replace_layer", CodeNotDeleted, relpath, 0, nil)
}

// IsNotFound reports whether err is a "no such node" error.
func IsNotFound(err error) bool {
	return baseerr.IsCode(err, CodeNotFound)
}

// IsNotDeleted reports whether err is a "source not deleted" error.
func IsNotDeleted(err error) bool {
	return baseerr.IsCode(err, CodeNotDeleted)
}
