package scan

import "sync/atomic"

// ProgressSink receives progress and error reports from the pipeline. It is
// the external collaborator that renders a progress bar; the pipeline
// itself only requires that calls don't block indefinitely.
type ProgressSink interface {
	// Report is called at roughly fixed intervals during the scan phase
	// and once per completion during the content-hash phase. Monotone
	// non-decrease of the embedded counts is the only contract.
	Report(Snapshot)

	// ReportError is called for a per-path failure that was skipped
	// rather than aborting the run.
	ReportError(path string, err error)
}

// Counters holds the pipeline's atomic progress counters. Snapshot is safe
// to call concurrently with Add; individual fields may not be perfectly
// consistent with one another, which is acceptable for progress display.
type Counters struct {
	Scanned          atomic.Int64
	Updated          atomic.Int64
	SkippedUnchanged atomic.Int64
	SkippedError     atomic.Int64
	HashedContent    atomic.Int64
}

// Snapshot is a point-in-time copy of Counters suitable for passing to a
// ProgressSink.
type Snapshot struct {
	Scanned          int64
	Updated          int64
	SkippedUnchanged int64
	SkippedError     int64
	HashedContent    int64
}

// Snapshot copies the current counter values.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Scanned:          c.Scanned.Load(),
		Updated:          c.Updated.Load(),
		SkippedUnchanged: c.SkippedUnchanged.Load(),
		SkippedError:     c.SkippedError.Load(),
		HashedContent:    c.HashedContent.Load(),
	}
}

// noopSink discards all reports; used when the caller supplies no sink.
type noopSink struct{}

func (noopSink) Report(Snapshot)           {}
func (noopSink) ReportError(string, error) {}
