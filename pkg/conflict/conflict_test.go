package conflict

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/utkarsh5026/gosvn/pkg/wcdb"
)

func newTestRoot(t *testing.T) *wcdb.WCRoot {
	t.Helper()
	dir, err := os.MkdirTemp("", "gosvn-conflict-*")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	root, err := wcdb.Open(context.Background(), filepath.Join(dir, "wc.db"), dir)
	if err != nil {
		t.Fatalf("wcdb.Open: %v", err)
	}
	t.Cleanup(func() { root.Close() })
	return root
}

func TestReadWriteRoundTrip(t *testing.T) {
	root := newTestRoot(t)
	ctx := context.Background()

	tx, err := root.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	skel := &Skeleton{
		VictimRelpath:  "a/moved.txt",
		Operation:      OpUpdate,
		LocalChange:    LocalMovedAway,
		IncomingChange: IncomingEdit,
		TreeConflicted: true,
		Old: &Version{
			ReposRootURL: "https://example.test/repo",
			PathInRepos:  "a/moved.txt",
			Revision:     5,
			NodeKind:     wcdb.KindFile,
		},
		New: &Version{
			ReposRootURL: "https://example.test/repo",
			PathInRepos:  "a/moved.txt",
			Revision:     7,
			NodeKind:     wcdb.KindFile,
		},
	}

	if err := Write(ctx, tx, skel); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	tx, err = root.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	got, err := Read(ctx, tx, "a/moved.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got == nil {
		t.Fatal("Read returned nil for a victim that was written")
	}
	if got.Operation != OpUpdate || !got.TreeConflicted {
		t.Errorf("Read = %+v, want operation=update tree_conflicted=true", got)
	}
	if got.Old == nil || got.Old.Revision != 5 {
		t.Errorf("Read.Old = %+v, want revision 5", got.Old)
	}
	if got.New == nil || got.New.Revision != 7 {
		t.Errorf("Read.New = %+v, want revision 7", got.New)
	}
}

func TestReadMissingReturnsNil(t *testing.T) {
	root := newTestRoot(t)
	ctx := context.Background()

	tx, err := root.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	got, err := Read(ctx, tx, "no/such/victim.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != nil {
		t.Errorf("Read = %+v, want nil for an unconflicted path", got)
	}
}

func TestCreateMarkers(t *testing.T) {
	skel := &Skeleton{
		VictimRelpath: "a/moved.txt",
		Old:           &Version{Revision: 5},
		New:           &Version{Revision: 7},
	}
	item := skel.CreateMarkers([]byte("mine"), []byte("old"), []byte("new"))

	if string(item.MarkerData[".mine"]) != "mine" {
		t.Errorf("markers[.mine] = %q, want %q", item.MarkerData[".mine"], "mine")
	}
	if string(item.MarkerData[".r5"]) != "old" {
		t.Errorf("markers[.r5] = %q, want %q", item.MarkerData[".r5"], "old")
	}
	if string(item.MarkerData[".r7"]) != "new" {
		t.Errorf("markers[.r7] = %q, want %q", item.MarkerData[".r7"], "new")
	}
}
