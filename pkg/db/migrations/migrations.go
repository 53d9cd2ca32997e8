package migrations

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"dupfind/pkg/db/models"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	Up          func(*gorm.DB) error
	Down        func(*gorm.DB) error
}

// migrationHistory tracks applied migrations
type migrationHistory struct {
	ID          uint   `gorm:"primaryKey"`
	Version     int    `gorm:"uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	AppliedAt   int64  `gorm:"autoCreateTime"`
}

// Migrator handles database migrations
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{
		db:         db,
		migrations: allMigrations(),
	}
}

// Migrate runs all pending migrations
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&migrationHistory{}); err != nil {
		return fmt.Errorf("failed to create migration history table: %w", err)
	}

	var applied []migrationHistory
	if err := m.db.WithContext(ctx).Find(&applied).Error; err != nil {
		return fmt.Errorf("failed to query migration history: %w", err)
	}

	appliedVersions := make(map[int]bool)
	for _, a := range applied {
		appliedVersions[a.Version] = true
	}

	for _, migration := range m.migrations {
		if appliedVersions[migration.Version] {
			continue
		}

		if err := m.runMigration(ctx, migration); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Description, err)
		}
	}

	return nil
}

func (m *Migrator) runMigration(ctx context.Context, migration Migration) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := migration.Up(tx); err != nil {
			return err
		}

		history := migrationHistory{
			Version:     migration.Version,
			Description: migration.Description,
		}
		return tx.Create(&history).Error
	})
}

// allMigrations returns all migrations in order.
func allMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Initial schema: files and config tables",
			Up: func(db *gorm.DB) error {
				if err := db.AutoMigrate(&models.FileRecord{}, &models.ConfigEntry{}); err != nil {
					return err
				}
				// Partial index on hash IS NOT NULL: gorm's struct tags can't
				// express a partial index, so it's created directly.
				return db.Exec(`
CREATE INDEX IF NOT EXISTS idx_files_hash_not_null ON files(hash) WHERE hash IS NOT NULL
`).Error
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.FileRecord{}, &models.ConfigEntry{})
			},
		},
	}
}
