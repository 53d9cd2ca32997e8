package models

// DuplicateGroup is a transient value: a shared size and optional
// composite fingerprint, plus the ordered list of FileRecords that share
// them. A group only ever reaches a consumer with at least 2 members.
type DuplicateGroup struct {
	Size  int64
	Hash  *uint64 // nil when grouped by size only
	Files []FileRecord
}
