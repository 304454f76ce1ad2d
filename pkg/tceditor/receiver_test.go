package tceditor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/utkarsh5026/gosvn/pkg/conflict"
	"github.com/utkarsh5026/gosvn/pkg/editor"
	"github.com/utkarsh5026/gosvn/pkg/pristine"
	"github.com/utkarsh5026/gosvn/pkg/repository/scpath"
	"github.com/utkarsh5026/gosvn/pkg/wcdb"
	"github.com/utkarsh5026/gosvn/pkg/workqueue"
)

func newTestFixture(t *testing.T) (*wcdb.WCRoot, *pristine.Store) {
	t.Helper()
	dir, err := os.MkdirTemp("", "gosvn-tceditor-*")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	root, err := wcdb.Open(context.Background(), filepath.Join(dir, "wc.db"), dir)
	if err != nil {
		t.Fatalf("wcdb.Open: %v", err)
	}
	t.Cleanup(func() { root.Close() })

	repoPath, err := scpath.NewRepositoryPath(dir)
	if err != nil {
		t.Fatalf("NewRepositoryPath: %v", err)
	}
	store, err := pristine.Open(repoPath)
	if err != nil {
		t.Fatalf("pristine.Open: %v", err)
	}
	return root, store
}

func TestReceiver_AlterFile_CleanMerge(t *testing.T) {
	root, store := newTestFixture(t)
	ctx := context.Background()

	must(t, store.Install("base-sum", []byte("a\nb\nc\n")))
	must(t, store.Install("new-sum", []byte("a\nb\nc\nd\n")))

	tx, err := root.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	must(t, tx.InsertNode(ctx, wcdb.NodeRow{Relpath: "dst.txt", OpDepth: 1, Kind: wcdb.KindFile, Revision: 3, Checksum: "base-sum"}))

	queue := workqueue.New()
	r := &Receiver{
		Tx:                 tx,
		Pristine:           store,
		Queue:              queue,
		ReadWorkingFile:    fakeWorkingFile("dst.txt", []byte("a\nb\nc\n")),
		MoveRootDstRelpath: "dst.txt",
		OldVersion:         &conflict.Version{Revision: 3},
		NewVersion:         &conflict.Version{Revision: 4},
	}

	err = r.AlterFile(ctx, editor.AlterFileArgs{
		Relpath:          "dst.txt",
		ExpectedRevision: 3,
		NewChecksum:      "new-sum",
	})
	if err != nil {
		t.Fatalf("AlterFile: %v", err)
	}
	must(t, tx.Commit())

	if queue.Len() != 1 {
		t.Fatalf("queue.Len() = %d, want 1", queue.Len())
	}
	item := queue.Items()[0]
	if item.Kind != workqueue.KindInstallPristine || item.Checksum != "new-sum" {
		t.Errorf("queued item = %+v, want InstallPristine of new-sum", item)
	}
}

func TestReceiver_AlterFile_Conflict(t *testing.T) {
	root, store := newTestFixture(t)
	ctx := context.Background()

	must(t, store.Install("base-sum", []byte("a\nb\nc\n")))
	must(t, store.Install("new-sum", []byte("a\nTHEIRS\nc\n")))

	tx, err := root.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	must(t, tx.InsertNode(ctx, wcdb.NodeRow{Relpath: "dst.txt", OpDepth: 1, Kind: wcdb.KindFile, Revision: 3, Checksum: "base-sum"}))

	queue := workqueue.New()
	r := &Receiver{
		Tx:                 tx,
		Pristine:           store,
		Queue:              queue,
		ReadWorkingFile:    fakeWorkingFile("dst.txt", []byte("a\nMINE\nc\n")),
		MoveRootDstRelpath: "dst.txt",
		OldVersion:         &conflict.Version{Revision: 3, PathInRepos: "dst.txt"},
		NewVersion:         &conflict.Version{Revision: 4},
	}

	err = r.AlterFile(ctx, editor.AlterFileArgs{
		Relpath:          "dst.txt",
		ExpectedRevision: 3,
		NewChecksum:      "new-sum",
	})
	if err != nil {
		t.Fatalf("AlterFile: %v", err)
	}
	must(t, tx.Commit())

	if queue.Len() != 1 || queue.Items()[0].Kind != workqueue.KindWriteMarkers {
		t.Fatalf("expected one WriteMarkers item, got %+v", queue.Items())
	}

	tx, err = root.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()
	skel, err := conflict.Read(ctx, tx, "dst.txt")
	if err != nil {
		t.Fatalf("conflict.Read: %v", err)
	}
	if skel == nil {
		t.Fatal("expected a conflict skeleton to have been written")
	}
}

func TestReceiver_UnsupportedCapabilities(t *testing.T) {
	r := &Receiver{}
	ctx := context.Background()

	if err := r.AddDirectory(ctx, "x"); !editor.IsUnsupported(err) {
		t.Errorf("AddDirectory: err = %v, want unsupported", err)
	}
	if err := r.Delete(ctx, "x", 1); !editor.IsUnsupported(err) {
		t.Errorf("Delete: err = %v, want unsupported", err)
	}
	if err := r.Move(ctx, "x", "y"); !editor.IsUnsupported(err) {
		t.Errorf("Move: err = %v, want unsupported", err)
	}
}

func fakeWorkingFile(relpath string, content []byte) func(wcdb.Relpath) ([]byte, error) {
	return func(r wcdb.Relpath) ([]byte, error) {
		if string(r) != relpath {
			return nil, os.ErrNotExist
		}
		return content, nil
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
