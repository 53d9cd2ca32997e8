package hashing

import (
	"encoding/binary"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/cases"
)

var foldCase = cases.Fold()

// Metadata is the subset of a FileRecord the composite mixer can draw
// components from.
type Metadata struct {
	Path     string
	Size     int64
	Modified int64
	Created  int64
}

// Composite feeds the components selected by mask into a fresh streaming
// 64-bit hash, in the fixed canonical order size, created, modified,
// case-folded basename, content fingerprint. A disabled component
// contributes nothing to the stream, not a zero placeholder, so distinct
// masks never alias into the same namespace. content may be nil when mask
// does not include Content.
func Composite(mask Components, md Metadata, content *[8]byte) [8]byte {
	h := xxhash.New()
	var buf [8]byte

	if mask.Has(Size) {
		binary.LittleEndian.PutUint64(buf[:], uint64(md.Size))
		h.Write(buf[:])
	}
	if mask.Has(Created) {
		binary.LittleEndian.PutUint64(buf[:], uint64(md.Created))
		h.Write(buf[:])
	}
	if mask.Has(Modified) {
		binary.LittleEndian.PutUint64(buf[:], uint64(md.Modified))
		h.Write(buf[:])
	}
	if mask.Has(FileName) {
		name := foldCase.String(filepath.Base(md.Path))
		h.Write([]byte(name))
	}
	if mask.Has(Content) && content != nil {
		h.Write(content[:])
	}

	var out [8]byte
	binary.BigEndian.PutUint64(out[:], h.Sum64())
	return out
}
