package fileindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nrupatunga/fff.nvim/ignore"
)

func writeFile(t *testing.T, dir, rel string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestIndex(t *testing.T, base string) *Index {
	t.Helper()
	matcher := ignore.New(ignore.Options{RootDir: base})
	ix, err := New(base, Options{Ignore: matcher, MaxThreads: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ix
}

func Test_New_RejectsNonDirectory(t *testing.T) {
	tmp := t.TempDir()
	file := writeFile(t, tmp, "a.txt")
	if _, err := New(file, Options{}); err != ErrInvalidBase {
		t.Fatalf("expected ErrInvalidBase, got %v", err)
	}
}

func Test_Scan_FindsNonHiddenFiles(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "src/main.go")
	writeFile(t, tmp, "src/util.go")
	writeFile(t, tmp, ".hidden/secret.txt")
	writeFile(t, tmp, ".git/config")

	ix := newTestIndex(t, tmp)
	if err := ix.Scan(context.Background()); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	snap := ix.Snapshot()
	if len(snap.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(snap.Records))
	}
	for _, rec := range snap.Records {
		if rec.Name == "secret.txt" || rec.Name == "config" {
			t.Errorf("hidden file leaked into index: %s", rec.RelativePath)
		}
	}
}

func Test_Scan_BumpsGeneration(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "a.txt")
	ix := newTestIndex(t, tmp)

	if err := ix.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}
	g1 := ix.Generation()

	if err := ix.Rescan(context.Background()); err != nil {
		t.Fatal(err)
	}
	g2 := ix.Generation()

	if g2 <= g1 {
		t.Errorf("expected generation to increase, got %d -> %d", g1, g2)
	}
}

func Test_Rescan_PreservesIndexIDForUnchangedFiles(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "a.txt")
	ix := newTestIndex(t, tmp)
	if err := ix.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := ix.Snapshot().Records[0].IndexID

	if err := ix.Rescan(context.Background()); err != nil {
		t.Fatal(err)
	}
	after := ix.Snapshot().Records[0].IndexID

	if before != after {
		t.Errorf("expected stable index_id across rescan with no changes, got %d -> %d", before, after)
	}
}

func Test_Rescan_RemovesDeletedFiles(t *testing.T) {
	tmp := t.TempDir()
	path := writeFile(t, tmp, "a.txt")
	ix := newTestIndex(t, tmp)
	if err := ix.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(ix.Snapshot().Records) != 1 {
		t.Fatal("expected 1 record before delete")
	}

	os.Remove(path)
	if err := ix.Rescan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(ix.Snapshot().Records) != 0 {
		t.Errorf("expected 0 records after delete+rescan, got %d", len(ix.Snapshot().Records))
	}
}

func Test_ApplyEvent_Created(t *testing.T) {
	tmp := t.TempDir()
	ix := newTestIndex(t, tmp)
	if err := ix.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}

	path := writeFile(t, tmp, "new.go")
	if err := ix.ApplyEvent(Event{Kind: EventCreated, Path: path}); err != nil {
		t.Fatal(err)
	}

	snap := ix.Snapshot()
	if len(snap.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(snap.Records))
	}
	if snap.Records[0].RelativePath != "new.go" {
		t.Errorf("expected new.go, got %s", snap.Records[0].RelativePath)
	}
}

func Test_ApplyEvent_CreatedDoesNotBumpGeneration(t *testing.T) {
	tmp := t.TempDir()
	ix := newTestIndex(t, tmp)
	if err := ix.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}
	g := ix.Generation()

	path := writeFile(t, tmp, "new.go")
	if err := ix.ApplyEvent(Event{Kind: EventCreated, Path: path}); err != nil {
		t.Fatal(err)
	}
	if ix.Generation() != g {
		t.Errorf("expected generation to stay at %d, got %d", g, ix.Generation())
	}
}

func Test_ApplyEvent_Deleted(t *testing.T) {
	tmp := t.TempDir()
	path := writeFile(t, tmp, "a.go")
	ix := newTestIndex(t, tmp)
	if err := ix.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}

	os.Remove(path)
	if err := ix.ApplyEvent(Event{Kind: EventDeleted, Path: path}); err != nil {
		t.Fatal(err)
	}
	if len(ix.Snapshot().Records) != 0 {
		t.Errorf("expected record removed, got %d", len(ix.Snapshot().Records))
	}
}

func Test_ApplyEvent_Renamed_PreservesIndexID(t *testing.T) {
	tmp := t.TempDir()
	oldPath := writeFile(t, tmp, "old.go")
	ix := newTestIndex(t, tmp)
	if err := ix.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}
	id := ix.Snapshot().Records[0].IndexID

	newPath := filepath.Join(tmp, "new.go")
	os.Rename(oldPath, newPath)
	if err := ix.ApplyEvent(Event{Kind: EventRenamed, OldPath: oldPath, Path: newPath}); err != nil {
		t.Fatal(err)
	}

	snap := ix.Snapshot()
	if len(snap.Records) != 1 {
		t.Fatalf("expected 1 record after rename, got %d", len(snap.Records))
	}
	if snap.Records[0].IndexID != id {
		t.Errorf("expected index_id to survive rename, got %d -> %d", id, snap.Records[0].IndexID)
	}
	if snap.Records[0].RelativePath != "new.go" {
		t.Errorf("expected relative path new.go, got %s", snap.Records[0].RelativePath)
	}
	if snap.Records[0].GitStatus() != GitStatusRenamed {
		t.Errorf("expected renamed git status, got %s", snap.Records[0].GitStatus())
	}
}

func Test_Restart_ClearsAndRescansNewBase(t *testing.T) {
	tmp1 := t.TempDir()
	writeFile(t, tmp1, "one.txt")
	tmp2 := t.TempDir()
	writeFile(t, tmp2, "two.txt")
	writeFile(t, tmp2, "three.txt")

	ix := newTestIndex(t, tmp1)
	if err := ix.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(ix.Snapshot().Records) != 1 {
		t.Fatal("expected 1 record before restart")
	}

	newMatcher := ignore.New(ignore.Options{RootDir: tmp2})
	ix.ignore = newMatcher
	if err := ix.Restart(context.Background(), tmp2); err != nil {
		t.Fatalf("Restart: %v", err)
	}

	if len(ix.Snapshot().Records) != 2 {
		t.Errorf("expected 2 records after restart, got %d", len(ix.Snapshot().Records))
	}
}

func Test_RecordByAbsolutePath(t *testing.T) {
	tmp := t.TempDir()
	path := writeFile(t, tmp, "a.txt")
	ix := newTestIndex(t, tmp)
	if err := ix.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}

	rec, ok := ix.RecordByAbsolutePath(path)
	if !ok {
		t.Fatal("expected to find record by absolute path")
	}
	if rec.RelativePath != "a.txt" {
		t.Errorf("expected a.txt, got %s", rec.RelativePath)
	}
}
