// Package pristine implements the content-addressed pristine blob
// store: immutable file bodies keyed by checksum, resolved to an
// absolute path or opened as a read stream. Blobs are stored under a
// two-level hash-prefix directory layout with no header or compression
// framing, since the three-way merger needs the raw bytes back
// unmodified.
package pristine

import (
	"fmt"
	"io"
	"os"

	"github.com/utkarsh5026/gosvn/pkg/common/fileops"
	"github.com/utkarsh5026/gosvn/pkg/repository/scpath"
)

// Store is a file-based content-addressed blob store rooted at
// <wcroot>/.source/pristine.
type Store struct {
	root scpath.SourcePath
}

// Open returns a Store rooted under repoPath's .source directory,
// creating the pristine directory if necessary.
func Open(repoPath scpath.RepositoryPath) (*Store, error) {
	root := repoPath.SourcePath().Join("pristine")
	if err := fileops.EnsureDir(root.ToAbsolutePath()); err != nil {
		return nil, fmt.Errorf("initialize pristine store: %w", err)
	}
	return &Store{root: root}, nil
}

// Path resolves checksum to the absolute path of its blob.
func (s *Store) Path(checksum string) (scpath.AbsolutePath, error) {
	if err := validateChecksum(checksum); err != nil {
		return "", err
	}
	return s.blobPath(checksum).ToAbsolutePath(), nil
}

// Open returns a read stream over the blob for checksum. The caller
// must close it.
func (s *Store) Open(checksum string) (io.ReadCloser, error) {
	path, err := s.Path(checksum)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path.String())
	if err != nil {
		return nil, fmt.Errorf("open pristine %s: %w", checksum, err)
	}
	return f, nil
}

// Install writes data under checksum if it is not already present. A
// pristine blob is never rewritten once inserted.
func (s *Store) Install(checksum string, data []byte) error {
	if err := validateChecksum(checksum); err != nil {
		return err
	}
	path := s.blobPath(checksum).ToAbsolutePath()

	exists, err := fileops.Exists(path)
	if err != nil {
		return fmt.Errorf("install pristine %s: %w", checksum, err)
	}
	if exists {
		return nil
	}
	return fileops.WriteReadOnly(path, data)
}

// Has reports whether checksum is present in the store.
func (s *Store) Has(checksum string) (bool, error) {
	path, err := s.Path(checksum)
	if err != nil {
		return false, err
	}
	return fileops.Exists(path)
}

// blobPath splits checksum into a two-level hash-prefix layout
// (pristine/ab/cdef...) to keep any one directory from growing too
// large.
func (s *Store) blobPath(checksum string) scpath.SourcePath {
	return s.root.Join(checksum[:2], checksum[2:])
}

func validateChecksum(checksum string) error {
	if len(checksum) < 3 {
		return fmt.Errorf("invalid checksum: %q", checksum)
	}
	return nil
}
