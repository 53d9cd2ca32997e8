package store

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dupfind/internal/errs"
	"dupfind/pkg/db/migrations"
	"dupfind/pkg/db/models"
)

var _ IndexStore = (*SQLiteStore)(nil)

// SQLiteStore implements IndexStore using SQLite through gorm, with raw
// SQL for the bucket-grouping and upsert-preserve-hash queries gorm's
// query builder can't express directly.
type SQLiteStore struct {
	db            *gorm.DB
	path          string
	currentScanID int64
	retries       int
	backoff       time.Duration
}

// SQLiteConfig holds SQLite-specific configuration.
type SQLiteConfig struct {
	Path     string
	LogLevel logger.LogLevel
}

// NewSQLiteStore creates a new SQLite-backed index store whose current
// scan id is nowUnix, fixed for the store's lifetime. Callers pass
// wall-clock seconds (orchestrator.NowScanID), per the "scan generation
// as epoch" design note: if two runs begin within the same second they
// share an id, which is harmless because their effect on the index is
// compositionally identical.
func NewSQLiteStore(cfg SQLiteConfig, nowUnix int64) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:            db,
		path:          cfg.Path,
		currentScanID: nowUnix,
		retries:       5,
		backoff:       25 * time.Millisecond,
	}, nil
}

// DB returns the underlying gorm database instance.
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

func (s *SQLiteStore) CurrentScanID() int64 {
	return s.currentScanID
}

// Connect configures the connection pool and journaling mode. SQLite only
// supports a single writer; the pool is capped at one connection so gorm
// never opens a second writer underneath us. Every operation of this
// store, read or write, therefore runs on that one connection, one at a
// time; WAL journaling lets other processes read the file meanwhile.
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := s.db.WithContext(ctx).Exec("PRAGMA journal_mode = WAL").Error; err != nil {
		return fmt.Errorf("failed to set journal mode: %w", err)
	}
	if err := s.db.WithContext(ctx).Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate creates the schema if absent, via the versioned migrator in
// pkg/db/migrations.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return migrations.NewMigrator(s.db).Migrate(ctx)
}

func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// withRetry retries transient IndexStore errors (SQLITE_BUSY and friends)
// a bounded number of times with brief backoff, per spec's
// IndexStoreError handling: transient errors are retried, persistent
// errors abort the run.
func (s *SQLiteStore) withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if err == gorm.ErrRecordNotFound {
			return err
		}
		if !errs.Transient(err) {
			return fmt.Errorf("%w: %v", errs.ErrIndexStore, err)
		}
		time.Sleep(s.backoff * time.Duration(attempt+1))
	}
	return fmt.Errorf("%w: %v", errs.ErrIndexStore, err)
}

func (s *SQLiteStore) GetByPath(ctx context.Context, path string) (*models.FileRecord, error) {
	var rec models.FileRecord
	err := s.withRetry(func() error {
		return s.db.WithContext(ctx).Where("path = ?", path).First(&rec).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Upsert overwrites size/modified/created and sets scan_id to the
// current run on path collision. hash is only written when non-nil,
// preserving a previously computed hash through a metadata-only refresh.
func (s *SQLiteStore) Upsert(ctx context.Context, path string, size, modified, created int64, hash []byte) error {
	const q = `
INSERT INTO files (path, size, modified, created, hash, scan_id)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
  size = excluded.size,
  modified = excluded.modified,
  created = excluded.created,
  scan_id = excluded.scan_id,
  hash = CASE WHEN excluded.hash IS NOT NULL THEN excluded.hash ELSE files.hash END
`
	// A nil []byte is bound as an empty blob rather than NULL, which would
	// defeat the CASE below; pass an untyped nil so the driver binds NULL.
	var hashArg any
	if hash != nil {
		hashArg = hash
	}
	return s.withRetry(func() error {
		return s.db.WithContext(ctx).Exec(q, path, size, modified, created, hashArg, s.currentScanID).Error
	})
}

func (s *SQLiteStore) TouchScan(ctx context.Context, path string) error {
	return s.withRetry(func() error {
		return s.db.WithContext(ctx).
			Exec("UPDATE files SET scan_id = ? WHERE path = ?", s.currentScanID, path).Error
	})
}

func (s *SQLiteStore) UpdateHash(ctx context.Context, path string, hash []byte) error {
	return s.withRetry(func() error {
		return s.db.WithContext(ctx).
			Exec("UPDATE files SET hash = ? WHERE path = ?", hash, path).Error
	})
}

func (s *SQLiteStore) Config(ctx context.Context, key string) (string, bool, error) {
	var entry models.ConfigEntry
	err := s.withRetry(func() error {
		return s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *SQLiteStore) SetConfig(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO config (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value
`
	return s.withRetry(func() error {
		return s.db.WithContext(ctx).Exec(q, key, value).Error
	})
}

func (s *SQLiteStore) DuplicateSizesForCurrentRun(ctx context.Context) ([]int64, error) {
	var sizes []int64
	err := s.withRetry(func() error {
		return s.db.WithContext(ctx).
			Model(&models.FileRecord{}).
			Where("scan_id = ?", s.currentScanID).
			Group("size").
			Having("COUNT(*) >= 2").
			Order("size DESC").
			Pluck("size", &sizes).Error
	})
	return sizes, err
}

func (s *SQLiteStore) CountDuplicateSizesForCurrentRun(ctx context.Context) (int64, error) {
	var count int64
	err := s.withRetry(func() error {
		return s.db.WithContext(ctx).Raw(`
SELECT COUNT(*) FROM (
  SELECT size FROM files WHERE scan_id = ? GROUP BY size HAVING COUNT(*) >= 2
)`, s.currentScanID).Scan(&count).Error
	})
	return count, err
}

func (s *SQLiteStore) FilesOfSize(ctx context.Context, size int64) ([]models.FileRecord, error) {
	var recs []models.FileRecord
	err := s.withRetry(func() error {
		return s.db.WithContext(ctx).
			Where("scan_id = ? AND size = ?", s.currentScanID, size).
			Order("path ASC").
			Find(&recs).Error
	})
	return recs, err
}

func (s *SQLiteStore) DuplicateHashesForCurrentRun(ctx context.Context) ([][]byte, error) {
	type row struct {
		Hash    []byte
		MaxSize int64
	}
	var rows []row
	err := s.withRetry(func() error {
		return s.db.WithContext(ctx).
			Model(&models.FileRecord{}).
			Select("hash, MAX(size) AS max_size").
			Where("scan_id = ? AND hash IS NOT NULL", s.currentScanID).
			Group("hash").
			Having("COUNT(*) >= 2").
			Order("max_size DESC").
			Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	hashes := make([][]byte, len(rows))
	for i, r := range rows {
		hashes[i] = r.Hash
	}
	return hashes, nil
}

func (s *SQLiteStore) CountDuplicateHashesForCurrentRun(ctx context.Context) (int64, error) {
	var count int64
	err := s.withRetry(func() error {
		return s.db.WithContext(ctx).Raw(`
SELECT COUNT(*) FROM (
  SELECT hash FROM files WHERE scan_id = ? AND hash IS NOT NULL GROUP BY hash HAVING COUNT(*) >= 2
)`, s.currentScanID).Scan(&count).Error
	})
	return count, err
}

func (s *SQLiteStore) FilesOfHash(ctx context.Context, hash []byte) ([]models.FileRecord, error) {
	var recs []models.FileRecord
	err := s.withRetry(func() error {
		return s.db.WithContext(ctx).
			Where("scan_id = ? AND hash = ?", s.currentScanID, hash).
			Order("path ASC").
			Find(&recs).Error
	})
	return recs, err
}

// Sweep deletes records whose scan_id is not among the keepGenerations
// most recent distinct scan ids present in the table.
func (s *SQLiteStore) Sweep(ctx context.Context, keepGenerations int) (int64, error) {
	var result *gorm.DB
	err := s.withRetry(func() error {
		result = s.db.WithContext(ctx).Exec(`
DELETE FROM files WHERE scan_id NOT IN (
  SELECT scan_id FROM (
    SELECT DISTINCT scan_id FROM files ORDER BY scan_id DESC LIMIT ?
  )
)`, keepGenerations)
		return result.Error
	})
	if err != nil {
		return 0, err
	}
	return result.RowsAffected, nil
}
