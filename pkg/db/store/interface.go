package store

import (
	"context"

	"dupfind/pkg/db/models"
)

// IndexStore is the durable, single-file catalog behind the scan pipeline
// and the duplicate detector. Implementations must serialize writes; the
// SQLite implementation serializes all operations on a single connection.
type IndexStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// CurrentScanID is the generation marker fixed when the store is
	// constructed.
	CurrentScanID() int64

	// File operations
	GetByPath(ctx context.Context, path string) (*models.FileRecord, error)
	Upsert(ctx context.Context, path string, size, modified, created int64, hash []byte) error
	TouchScan(ctx context.Context, path string) error
	UpdateHash(ctx context.Context, path string, hash []byte) error

	// Config operations
	Config(ctx context.Context, key string) (string, bool, error)
	SetConfig(ctx context.Context, key, value string) error

	// Bucket queries, ordered per the contract UI layers rely on.
	DuplicateSizesForCurrentRun(ctx context.Context) ([]int64, error)
	CountDuplicateSizesForCurrentRun(ctx context.Context) (int64, error)
	FilesOfSize(ctx context.Context, size int64) ([]models.FileRecord, error)

	DuplicateHashesForCurrentRun(ctx context.Context) ([][]byte, error)
	CountDuplicateHashesForCurrentRun(ctx context.Context) (int64, error)
	FilesOfHash(ctx context.Context, hash []byte) ([]models.FileRecord, error)

	// Sweep deletes records whose scan_id is not among the keepGenerations
	// most recent distinct scan ids in the table, and returns the number
	// of rows removed.
	Sweep(ctx context.Context, keepGenerations int) (int64, error)
}
