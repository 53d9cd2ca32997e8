// Package detector streams duplicate groups out of the Index Store,
// confirming true duplicates by size alone or by full composite hash.
package detector

import (
	"context"
	"encoding/binary"

	"dupfind/pkg/db/models"
	"dupfind/pkg/db/store"
)

// batchSize is the number of bucket keys walked per batch. All bucket keys
// are fetched up front; members are fetched one bucket at a time, right
// before that bucket's group is sent, so at most one resolved group is
// held ahead of the consumer.
const batchSize = 100

// Result pairs a streamed group with any error encountered producing it.
// A non-nil Err ends the stream; Group is the zero value in that case.
type Result struct {
	Group models.DuplicateGroup
	Err   error
}

// Detector streams DuplicateGroups from an IndexStore.
type Detector struct {
	idx store.IndexStore
}

func New(idx store.IndexStore) *Detector {
	return &Detector{idx: idx}
}

// BySize streams one group per duplicate-size bucket, with Hash left nil.
// Buckets are traversed in the order the Index Store reports them
// (descending size). This mode is never invoked by the orchestrator's
// default pipeline — metadata-only composites are always available by the
// time detection runs — but is kept for diagnostics and future modes.
func (d *Detector) BySize(ctx context.Context) <-chan Result {
	out := make(chan Result)
	go func() {
		defer close(out)

		sizes, err := d.idx.DuplicateSizesForCurrentRun(ctx)
		if err != nil {
			send(ctx, out, Result{Err: err})
			return
		}

		for batchStart := 0; batchStart < len(sizes); batchStart += batchSize {
			end := min(batchStart+batchSize, len(sizes))
			for _, size := range sizes[batchStart:end] {
				if ctx.Err() != nil {
					return
				}
				members, err := d.idx.FilesOfSize(ctx, size)
				if err != nil {
					if !send(ctx, out, Result{Err: err}) {
						return
					}
					continue
				}
				if len(members) < 2 {
					continue
				}
				group := models.DuplicateGroup{Size: size, Files: members}
				if !send(ctx, out, Result{Group: group}) {
					return
				}
			}
		}
	}()
	return out
}

// ByHash streams one group per duplicate-hash bucket. The group's
// reported size is taken from its first member (a valid representative
// because every member of a hash bucket shares a composite that includes
// size whenever the Size bit was set); its reported hash reinterprets the
// 8-byte fingerprint as a big-endian uint64.
func (d *Detector) ByHash(ctx context.Context) <-chan Result {
	out := make(chan Result)
	go func() {
		defer close(out)

		hashes, err := d.idx.DuplicateHashesForCurrentRun(ctx)
		if err != nil {
			send(ctx, out, Result{Err: err})
			return
		}

		for batchStart := 0; batchStart < len(hashes); batchStart += batchSize {
			end := min(batchStart+batchSize, len(hashes))
			for _, hash := range hashes[batchStart:end] {
				if ctx.Err() != nil {
					return
				}
				members, err := d.idx.FilesOfHash(ctx, hash)
				if err != nil {
					if !send(ctx, out, Result{Err: err}) {
						return
					}
					continue
				}
				if len(members) < 2 {
					continue
				}
				h := binary.BigEndian.Uint64(hash)
				group := models.DuplicateGroup{Size: members[0].Size, Hash: &h, Files: members}
				if !send(ctx, out, Result{Group: group}) {
					return
				}
			}
		}
	}()
	return out
}

// CountBySize and CountByHash let the orchestrator print a total before
// streaming begins, backed by the Index Store's count-only queries so
// bucket contents never need materializing just to learn how many there
// are.
func (d *Detector) CountBySize(ctx context.Context) (int64, error) {
	return d.idx.CountDuplicateSizesForCurrentRun(ctx)
}

func (d *Detector) CountByHash(ctx context.Context) (int64, error) {
	return d.idx.CountDuplicateHashesForCurrentRun(ctx)
}

// send delivers r on out, honoring cancellation; it reports whether the
// value was delivered.
func send(ctx context.Context, out chan<- Result, r Result) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}
