package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	config "dupfind/internal/config/dupfind"
	"dupfind/internal/detector"
	"dupfind/internal/hashing"
	"dupfind/internal/scan"
	"dupfind/pkg/db/store"
	"dupfind/pkg/log"
)

func newTestLogger() log.LoggerService {
	cfg := config.GetDefault().Log
	cfg.NoTerminal = true
	return log.NewLoggerService("dupfind-test", cfg)
}

func newTestStore(t *testing.T) store.IndexStore {
	t.Helper()
	return openTestStore(t, filepath.Join(t.TempDir(), "index.db"))
}

// openTestStore opens a fresh *SQLiteStore handle at path. Orchestrator.Run
// owns the full connect/close lifecycle of whatever store it's given, so
// simulating two successive CLI invocations against the same index means
// constructing two separate handles rather than reusing one across Run
// calls.
func openTestStore(t *testing.T, path string) store.IndexStore {
	t.Helper()
	s, err := store.NewSQLiteStore(store.SQLiteConfig{Path: path}, NowScanID())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type countingConsumer struct {
	groups int
}

func (c *countingConsumer) Consume(ctx context.Context, groups <-chan detector.Result) (bool, error) {
	for r := range groups {
		if r.Err != nil {
			return false, r.Err
		}
		c.groups++
	}
	return false, nil
}

// lastSnapshotSink keeps the most recent progress snapshot it was given.
type lastSnapshotSink struct {
	last scan.Snapshot
}

func (s *lastSnapshotSink) Report(snap scan.Snapshot) { s.last = snap }
func (s *lastSnapshotSink) ReportError(string, error) {}

func TestRunFindsContentDuplicates(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "duplicate-bytes")
	writeFile(t, filepath.Join(root, "b.txt"), "duplicate-bytes")
	writeFile(t, filepath.Join(root, "c.txt"), "unique-bytes-here")

	idx := newTestStore(t)
	consumer := &countingConsumer{}

	o := New(newTestLogger())
	err := o.Run(ctx, Options{
		Root:     root,
		Workers:  2,
		Mask:     hashing.Size | hashing.Content,
		DB:       idx,
		Consumer: consumer,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if consumer.groups != 1 {
		t.Errorf("groups = %d, want 1", consumer.groups)
	}
}

func TestRunRejectsMissingRoot(t *testing.T) {
	idx := newTestStore(t)
	o := New(newTestLogger())

	err := o.Run(context.Background(), Options{
		Root:    filepath.Join(t.TempDir(), "does-not-exist"),
		Workers: 1,
		Mask:    hashing.Size,
		DB:      idx,
	})
	if err == nil {
		t.Fatal("expected an error for a missing root")
	}
}

func TestRunForcesFullRescanOnHashComponentsChange(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "hello")
	dbPath := filepath.Join(t.TempDir(), "index.db")

	o := New(newTestLogger())
	firstIdx := openTestStore(t, dbPath)
	if err := o.Run(ctx, Options{Root: root, Workers: 1, Mask: hashing.Size, DB: firstIdx}); err != nil {
		t.Fatalf("Run (first): %v", err)
	}

	secondIdx := openTestStore(t, dbPath)
	sink := &lastSnapshotSink{}
	if err := o.Run(ctx, Options{Root: root, Workers: 1, Mask: hashing.Size | hashing.FileName, DB: secondIdx, Sink: sink}); err != nil {
		t.Fatalf("Run (second): %v", err)
	}
	// a.txt is unchanged on disk, so only a forced rescan rewrites it.
	if sink.last.Updated != 1 || sink.last.SkippedUnchanged != 0 {
		t.Errorf("second run snapshot = %+v, want Updated=1 SkippedUnchanged=0", sink.last)
	}

	thirdIdx := openTestStore(t, dbPath)
	value, ok, err := thirdIdx.Config(ctx, "hash_components")
	if err != nil || !ok {
		t.Fatalf("Config: value=%q ok=%v err=%v", value, ok, err)
	}
	want := (hashing.Size | hashing.FileName).String()
	if value != want {
		t.Errorf("persisted hash_components = %q, want %q", value, want)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}
