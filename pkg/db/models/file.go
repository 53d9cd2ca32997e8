package models

// FileRecord is one row per distinct absolute path known to the index.
// Path is unique across the table; (ID, Path) establish identity. Hash is
// either nil or exactly 8 bytes. ScanID is non-decreasing per path across
// runs; a record is live for the current run iff ScanID equals the run's
// current scan id.
type FileRecord struct {
	ID       uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Path     string `gorm:"column:path;type:text;not null;uniqueIndex"`
	Size     int64  `gorm:"column:size;not null;index:idx_files_size"`
	Modified int64  `gorm:"column:modified;not null"`
	Created  int64  `gorm:"column:created;not null;default:0"`
	Hash     []byte `gorm:"column:hash"`
	ScanID   int64  `gorm:"column:scan_id;not null;index:idx_files_scan_id"`
}

func (FileRecord) TableName() string { return "files" }
