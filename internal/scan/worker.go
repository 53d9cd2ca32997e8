package scan

import (
	"context"
	"fmt"
	"os"

	"dupfind/internal/errs"
	"dupfind/internal/hashing"
	"dupfind/internal/metadata"
	"dupfind/pkg/db/store"
)

// worker drains paths until the channel closes, classifying each one
// against the index and upserting the result. It returns when paths is
// closed or ctx is cancelled.
type worker struct {
	idx        store.IndexStore
	mask       hashing.Components
	incr       bool // incremental: reuse cached records when unchanged
	fullRescan bool
	counters   *Counters
	sink       ProgressSink
}

func (w *worker) run(ctx context.Context, paths <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-paths:
			if !ok {
				return
			}
			w.classify(ctx, path)
		}
	}
}

func (w *worker) classify(ctx context.Context, path string) {
	n := w.counters.Scanned.Add(1)
	if n%1000 == 0 {
		w.sink.Report(w.counters.Snapshot())
	}

	info, err := metadata.Probe(path)
	if err != nil {
		w.reportSkip(path, err)
		return
	}

	if w.incr && !w.fullRescan {
		if cached, err := w.idx.GetByPath(ctx, path); err == nil && cached != nil &&
			cached.Size == info.Size && cached.Modified == info.Modified && cached.Created == info.Created {
			if err := w.idx.TouchScan(ctx, path); err != nil {
				w.reportSkip(path, err)
				return
			}
			w.counters.SkippedUnchanged.Add(1)
			return
		}
	}

	md := hashing.Metadata{Path: path, Size: info.Size, Modified: info.Modified, Created: info.Created}

	if !w.mask.Has(hashing.Content) {
		composite := hashing.Composite(w.mask, md, nil)
		if err := w.idx.Upsert(ctx, path, info.Size, info.Modified, info.Created, composite[:]); err != nil {
			w.reportSkip(path, err)
			return
		}
		w.counters.Updated.Add(1)
		return
	}

	// Content selected: persist metadata now, leave hash null. The
	// content-hash phase fills it in once duplicate-size buckets are
	// known, so files with a unique size never pay for a content read.
	if err := w.idx.Upsert(ctx, path, info.Size, info.Modified, info.Created, nil); err != nil {
		w.reportSkip(path, err)
		return
	}
	w.counters.Updated.Add(1)
}

func (w *worker) reportSkip(path string, err error) {
	w.counters.SkippedError.Add(1)
	w.sink.ReportError(path, wrapClassifyErr(err))
}

func wrapClassifyErr(err error) error {
	if os.IsPermission(err) {
		return fmt.Errorf("%w: %v", errs.ErrAccessDenied, err)
	}
	return fmt.Errorf("%w: %v", errs.ErrIO, err)
}
