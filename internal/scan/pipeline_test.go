package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dupfind/internal/hashing"
	"dupfind/pkg/db/store"
)

func newTestIndex(t *testing.T, scanID int64) store.IndexStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "index.db")

	s, err := store.NewSQLiteStore(store.SQLiteConfig{Path: dbPath}, scanID)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	ctx := context.Background()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunUpsertsEveryFileWithMetadataOnlyComposite(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.txt"), "hello")
	mustWriteFile(t, filepath.Join(root, "sub", "b.txt"), "world")

	idx := newTestIndex(t, 1000)
	snap, err := Run(ctx, idx, Options{Root: root, Workers: 2, Mask: hashing.Size, Incremental: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if snap.Scanned != 2 || snap.Updated != 2 {
		t.Errorf("snap = %+v, want Scanned=2 Updated=2", snap)
	}

	rec, err := idx.GetByPath(ctx, filepath.Join(root, "a.txt"))
	if err != nil || rec == nil {
		t.Fatalf("GetByPath: rec=%v err=%v", rec, err)
	}
	if rec.Hash == nil {
		t.Error("expected metadata-only composite to be set")
	}
}

func TestRunWithContentSelectedLeavesHashNullUntilContentPhase(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.txt"), "hello")

	idx := newTestIndex(t, 1000)
	mask := hashing.Size | hashing.Content
	if _, err := Run(ctx, idx, Options{Root: root, Workers: 1, Mask: mask, Incremental: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	rec, err := idx.GetByPath(ctx, filepath.Join(root, "a.txt"))
	if err != nil || rec == nil {
		t.Fatalf("GetByPath: rec=%v err=%v", rec, err)
	}
	if rec.Hash != nil {
		t.Errorf("expected hash to remain null before the content phase, got %x", rec.Hash)
	}
}

func TestRunSecondPassSkipsUnchangedFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.txt"), "hello")

	idx := newTestIndex(t, 1000)
	if _, err := Run(ctx, idx, Options{Root: root, Workers: 1, Mask: hashing.Size, Incremental: true}); err != nil {
		t.Fatalf("Run (first): %v", err)
	}

	snap, err := Run(ctx, idx, Options{Root: root, Workers: 1, Mask: hashing.Size, Incremental: true})
	if err != nil {
		t.Fatalf("Run (second): %v", err)
	}
	if snap.SkippedUnchanged != 1 || snap.Updated != 0 {
		t.Errorf("snap = %+v, want SkippedUnchanged=1 Updated=0", snap)
	}
}

func TestRunFullRescanIgnoresCacheEvenWhenUnchanged(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.txt"), "hello")

	idx := newTestIndex(t, 1000)
	if _, err := Run(ctx, idx, Options{Root: root, Workers: 1, Mask: hashing.Size, Incremental: true}); err != nil {
		t.Fatalf("Run (first): %v", err)
	}

	snap, err := Run(ctx, idx, Options{Root: root, Workers: 1, Mask: hashing.Size, Incremental: true, FullRescan: true})
	if err != nil {
		t.Fatalf("Run (rescan): %v", err)
	}
	if snap.Updated != 1 || snap.SkippedUnchanged != 0 {
		t.Errorf("snap = %+v, want Updated=1 SkippedUnchanged=0", snap)
	}
}

func TestHashContentFillsHashForDuplicateSizeMembers(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.txt"), "hello")
	mustWriteFile(t, filepath.Join(root, "b.txt"), "hello")
	mustWriteFile(t, filepath.Join(root, "unique.txt"), "unmatched-size")

	idx := newTestIndex(t, 1000)
	mask := hashing.Size | hashing.Content
	if _, err := Run(ctx, idx, Options{Root: root, Workers: 2, Mask: mask, Incremental: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	snap, err := HashContent(ctx, idx, mask, 2, nil)
	if err != nil {
		t.Fatalf("HashContent: %v", err)
	}
	if snap.HashedContent != 2 {
		t.Errorf("HashedContent = %d, want 2 (only the duplicate-size pair)", snap.HashedContent)
	}

	recA, _ := idx.GetByPath(ctx, filepath.Join(root, "a.txt"))
	recB, _ := idx.GetByPath(ctx, filepath.Join(root, "b.txt"))
	recU, _ := idx.GetByPath(ctx, filepath.Join(root, "unique.txt"))

	if recA.Hash == nil || recB.Hash == nil {
		t.Fatal("expected both duplicate-size members to have hashes after content phase")
	}
	if string(recA.Hash) != string(recB.Hash) {
		t.Errorf("identical-content files should hash identically: %x != %x", recA.Hash, recB.Hash)
	}
	if recU.Hash != nil {
		t.Errorf("unique-size file should never reach the content phase, got hash %x", recU.Hash)
	}
}

func TestHashContentNeverReadsAFileWithAUniqueSize(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permission bits")
	}

	ctx := context.Background()
	root := t.TempDir()
	blocked := filepath.Join(root, "blocked.txt")
	mustWriteFile(t, blocked, "secret")
	if err := os.Chmod(filepath.Dir(blocked), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(blocked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(blocked, 0644) })

	idx := newTestIndex(t, 1000)
	mask := hashing.Size | hashing.Content
	if _, err := Run(ctx, idx, Options{Root: root, Workers: 1, Mask: mask, Incremental: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	snap, err := HashContent(ctx, idx, mask, 1, nil)
	if err != nil {
		t.Fatalf("HashContent: %v", err)
	}
	// The unreadable file is alone at its size, so it never enters a
	// duplicate-size bucket and the content phase never touches it.
	if snap.HashedContent != 0 {
		t.Errorf("HashedContent = %d, want 0", snap.HashedContent)
	}
}
