// Package scan implements the bounded producer/consumer traversal that
// walks a root directory, classifies each file against the index, and
// writes results through to the Index Store.
package scan

import (
	"context"
	"fmt"
	"sync"

	"dupfind/internal/errs"
	"dupfind/internal/hashing"
	"dupfind/pkg/db/store"
)

// queueCapacity bounds the enumerator-to-worker channel. The enumerator
// blocks once it's full, which is the pipeline's backpressure mechanism
// when workers fall behind filesystem traversal.
const queueCapacity = 10000

// Options configures a single scan run.
type Options struct {
	Root        string
	Workers     int
	Mask        hashing.Components
	Incremental bool
	FullRescan  bool
	Sink        ProgressSink
}

// Run walks Root and classifies every file it finds, blocking until the
// enumerator and all workers have drained. It returns the final counters
// and the first error ctx cancellation surfaced, if any.
func Run(ctx context.Context, idx store.IndexStore, opts Options) (Snapshot, error) {
	sink := opts.Sink
	if sink == nil {
		sink = noopSink{}
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	counters := &Counters{}
	paths := make(chan string, queueCapacity)

	var wg sync.WaitGroup
	go enumerate(ctx, opts.Root, paths, sink)

	for i := 0; i < workers; i++ {
		w := &worker{
			idx:        idx,
			mask:       opts.Mask,
			incr:       opts.Incremental,
			fullRescan: opts.FullRescan,
			counters:   counters,
			sink:       sink,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(ctx, paths)
		}()
	}

	wg.Wait()
	snap := counters.Snapshot()
	sink.Report(snap)

	if err := ctx.Err(); err != nil {
		return snap, fmt.Errorf("%w: %v", errs.ErrCancelled, err)
	}
	return snap, nil
}
