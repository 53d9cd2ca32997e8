package scan

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"dupfind/internal/errs"
	"dupfind/internal/hashing"
	"dupfind/pkg/db/store"
)

// HashContent runs the content-hashing phase: for every duplicate-size
// bucket already written during the scan phase, it computes the content
// sampler's fingerprint for each member, mixes it into the full composite,
// and writes the result back with UpdateHash. Errors on individual files
// are reported and do not abort the phase; the bucket's other members are
// still processed.
func HashContent(ctx context.Context, idx store.IndexStore, mask hashing.Components, workers int, sink ProgressSink) (Snapshot, error) {
	if sink == nil {
		sink = noopSink{}
	}
	if workers < 1 {
		workers = 1
	}

	counters := &Counters{}

	sizes, err := idx.DuplicateSizesForCurrentRun(ctx)
	if err != nil {
		return counters.Snapshot(), err
	}

	for _, size := range sizes {
		if err := ctx.Err(); err != nil {
			return counters.Snapshot(), fmt.Errorf("%w: %v", errs.ErrCancelled, err)
		}

		members, err := idx.FilesOfSize(ctx, size)
		if err != nil {
			sink.ReportError("", err)
			continue
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)

		for _, rec := range members {
			rec := rec
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				hashContentOne(gctx, idx, mask, rec.Path, rec.Size, rec.Modified, rec.Created, counters, sink)
				return nil
			})
		}
		// Errors from individual files are reported, not propagated;
		// g.Wait only ever returns a cancellation from gctx.
		if err := g.Wait(); err != nil {
			return counters.Snapshot(), fmt.Errorf("%w: %v", errs.ErrCancelled, err)
		}
	}

	return counters.Snapshot(), nil
}

func hashContentOne(ctx context.Context, idx store.IndexStore, mask hashing.Components, path string, size, modified, created int64, counters *Counters, sink ProgressSink) {
	content, err := hashing.SampleFile(path, size)
	if err != nil {
		// A read failure still yields the all-zero sentinel per the
		// sampler's contract; the composite is computed from it rather
		// than leaving the record hash-less.
		sink.ReportError(path, fmt.Errorf("%w: %v", errs.ErrHashRead, err))
	}

	md := hashing.Metadata{Path: path, Size: size, Modified: modified, Created: created}
	composite := hashing.Composite(mask, md, &content)

	if err := idx.UpdateHash(ctx, path, composite[:]); err != nil {
		sink.ReportError(path, err)
		return
	}
	counters.HashedContent.Add(1)
	sink.Report(counters.Snapshot())
}
