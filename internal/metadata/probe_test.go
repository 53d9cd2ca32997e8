package metadata

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestProbeSizeAndModified(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	info, err := Probe(path)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if info.Size != 6 {
		t.Errorf("size = %d, want 6", info.Size)
	}
	if info.Modified != mtime.Unix() {
		t.Errorf("modified = %d, want %d", info.Modified, mtime.Unix())
	}
}

func TestProbeMissingPath(t *testing.T) {
	if _, err := Probe(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestBirthWarnFiresAtMostOnce(t *testing.T) {
	birthWarnOnce = sync.Once{}

	count := 0
	OnBirthTimeUnavailable(func() { count++ })

	warnBirthUnavailable()
	warnBirthUnavailable()
	warnBirthUnavailable()

	if count != 1 {
		t.Fatalf("warn fired %d times, want 1", count)
	}
}
