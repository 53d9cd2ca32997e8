package models

// ConfigEntry is a key/value store for run-invariant settings. Entries
// are created on first use, overwritten otherwise, never deleted by the
// core.
type ConfigEntry struct {
	Key   string `gorm:"column:key;primaryKey;type:text"`
	Value string `gorm:"column:value;type:text;not null"`
}

func (ConfigEntry) TableName() string { return "config" }

// HashComponentsKey is the well-known config key holding the integer
// bitmask of components selected at the last successful run.
const HashComponentsKey = "hash_components"
