// Package editor defines the tree-delta editor capability set: a
// 13-callback interface a driver invokes while walking a tree. Most
// real editors only implement a handful of these callbacks;
// ErrUnsupported is the uniform way to decline the rest.
package editor

import (
	"context"

	"github.com/utkarsh5026/gosvn/pkg/wcdb"
)

// AlterFileArgs carries the arguments to Editor.AlterFile.
type AlterFileArgs struct {
	Relpath          wcdb.Relpath
	ExpectedRevision int64
	NewChecksum      string
}

// Editor is the full capability set a tree-delta driver (pkg/tceditor's
// Driver) may invoke while walking a tree. Implementations that don't
// support a given operation return ErrUnsupported from it. A driver
// that calls an unsupported callback has a bug: the tree-conflict
// editor driver never invokes any callback besides AlterFile,
// Complete, and Abort, so ErrUnsupported reaching the driver is always
// fatal rather than something to skip past.
type Editor interface {
	AddDirectory(ctx context.Context, relpath wcdb.Relpath) error
	AddFile(ctx context.Context, relpath wcdb.Relpath, checksum string) error
	AddSymlink(ctx context.Context, relpath wcdb.Relpath, target string) error
	AddAbsent(ctx context.Context, relpath wcdb.Relpath, kind wcdb.Kind) error

	AlterDirectory(ctx context.Context, relpath wcdb.Relpath, expectedRevision int64, properties map[string]string) error
	AlterFile(ctx context.Context, args AlterFileArgs) error
	AlterSymlink(ctx context.Context, relpath wcdb.Relpath, expectedRevision int64, newTarget string) error

	Delete(ctx context.Context, relpath wcdb.Relpath, expectedRevision int64) error
	Copy(ctx context.Context, srcRelpath wcdb.Relpath, srcRevision int64, dstRelpath wcdb.Relpath) error
	Move(ctx context.Context, srcRelpath, dstRelpath wcdb.Relpath) error
	Rotate(ctx context.Context, relpaths []wcdb.Relpath) error

	Complete(ctx context.Context) error
	Abort(ctx context.Context, cause error) error
}

// ErrUnsupported is returned by an Editor callback that declines to
// perform the requested operation. The tree-conflict resolution
// editor (pkg/tceditor.Receiver) returns this from every callback
// except AlterFile, Complete, and Abort; the driver is never supposed
// to invoke those, so getting ErrUnsupported back signals a
// driver/receiver mismatch rather than a condition to recover from.
type ErrUnsupported struct {
	Callback string
}

func (e *ErrUnsupported) Error() string {
	return "editor: unsupported feature: " + e.Callback
}

// Unsupported constructs an ErrUnsupported for callback.
func Unsupported(callback string) error {
	return &ErrUnsupported{Callback: callback}
}

// IsUnsupported reports whether err is an ErrUnsupported.
func IsUnsupported(err error) bool {
	_, ok := err.(*ErrUnsupported)
	return ok
}
