// Package orchestrator sequences a single run through its state machine:
// INIT, SCAN, an optional content-hash phase, DETECT, INTERACT, and SWEEP.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/mwantia/fabric/pkg/container"

	"dupfind/internal/detector"
	"dupfind/internal/errs"
	"dupfind/internal/hashing"
	"dupfind/internal/metadata"
	"dupfind/internal/scan"
	"dupfind/pkg/db/store"
	"dupfind/pkg/log"
)

// retainedGenerations is the number of newest distinct scan_id values kept
// by Sweep at the end of every run.
const retainedGenerations = 2

// Options configures a single run, sourced from the CLI surface.
type Options struct {
	Root     string
	Workers  int
	Mask     hashing.Components
	FullScan bool
	// SizeOnly selects the diagnostic size-bucket detector (Detector.BySize)
	// instead of the default composite-hash detector (Detector.ByHash).
	// Groups are then keyed on size alone, with no content fingerprint.
	SizeOnly bool
	DB       store.IndexStore
	Sink     scan.ProgressSink
	Consumer Consumer
}

// Consumer is the interactive UI's contract: given a lazy group stream, it
// presents actions to the user and returns whether the run should stop
// early (user-quit) and any fatal error.
type Consumer interface {
	Consume(ctx context.Context, groups <-chan detector.Result) (quit bool, err error)
}

// Orchestrator wires together the Index Store, Scan Pipeline, and
// Duplicate Detector behind fabric's service container, mirroring the
// registration style used for long-lived services elsewhere in this
// codebase even though a one-shot CLI run only ever resolves what it just
// registered.
type Orchestrator struct {
	sc  *container.ServiceContainer
	log log.LoggerService
}

func New(logger log.LoggerService) *Orchestrator {
	return &Orchestrator{
		sc:  container.NewServiceContainer(),
		log: logger,
	}
}

func (o *Orchestrator) setupServices(idx store.IndexStore) error {
	errors := container.Errors{}

	errors.Add(container.Register[log.LoggerServiceImpl](o.sc,
		container.With[log.LoggerService](),
		container.WithInstance(o.log)))

	errors.Add(container.Register[store.SQLiteStore](o.sc,
		container.With[store.IndexStore](),
		container.WithInstance(idx)))

	return errors.Errors()
}

func (o *Orchestrator) resolveIndexStore(ctx context.Context) (store.IndexStore, error) {
	ok, resolved := o.sc.ResolveByType(ctx, reflect.TypeOf((*store.IndexStore)(nil)).Elem())
	if !ok {
		return nil, fmt.Errorf("failed to resolve IndexStore: not registered")
	}
	idx, ok := resolved.(store.IndexStore)
	if !ok {
		return nil, fmt.Errorf("resolved service is not an IndexStore")
	}
	return idx, nil
}

// Run executes the full state machine for one invocation: INIT -> SCAN ->
// [CONTENT-HASH?] -> DETECT -> INTERACT -> SWEEP -> DONE. The only early
// exit is a user-requested quit during INTERACT, which still runs SWEEP
// before returning.
func (o *Orchestrator) Run(ctx context.Context, opts Options) error {
	if _, err := os.Stat(opts.Root); err != nil {
		return fmt.Errorf("root %q does not exist: %w", opts.Root, err)
	}

	if err := opts.DB.Connect(ctx); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIndexStore, err)
	}
	defer opts.DB.Close()

	if err := opts.DB.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIndexStore, err)
	}

	if err := o.setupServices(opts.DB); err != nil {
		return fmt.Errorf("failed to set up services: %w", err)
	}
	idx, err := o.resolveIndexStore(ctx)
	if err != nil {
		return err
	}

	fullRescan, err := o.reconcileHashComponents(ctx, idx, opts.Mask)
	if err != nil {
		return err
	}
	fullRescan = fullRescan || opts.FullScan

	metadata.OnBirthTimeUnavailable(func() {
		o.log.Warn("creation time is not available on this platform; ctime will be recorded as 0")
	})

	o.log.Info("scanning", "root", opts.Root, "workers", opts.Workers, "mask", opts.Mask.String())
	scanResult, err := scan.Run(ctx, idx, scan.Options{
		Root:        opts.Root,
		Workers:     opts.Workers,
		Mask:        opts.Mask,
		Incremental: true,
		FullRescan:  fullRescan,
		Sink:        opts.Sink,
	})
	if err != nil {
		return o.abort(err)
	}
	o.log.Info("scan complete", "scanned", scanResult.Scanned, "updated", scanResult.Updated,
		"skipped_unchanged", scanResult.SkippedUnchanged, "skipped_error", scanResult.SkippedError)

	if opts.Mask.Has(hashing.Content) {
		o.log.Info("hashing content for duplicate-size buckets")
		hashResult, err := scan.HashContent(ctx, idx, opts.Mask, opts.Workers, opts.Sink)
		if err != nil {
			return o.abort(err)
		}
		o.log.Info("content hashing complete", "hashed", hashResult.HashedContent)
	}

	det := detector.New(idx)
	var groups <-chan detector.Result
	if opts.SizeOnly {
		o.log.Info("detecting duplicates by size only (diagnostic mode)")
		groups = det.BySize(ctx)
	} else {
		groups = det.ByHash(ctx)
	}

	quit := false
	if opts.Consumer != nil {
		quit, err = opts.Consumer.Consume(ctx, groups)
		if err != nil {
			return o.abort(err)
		}
	} else {
		for range groups {
		}
	}
	_ = quit // the only effect of user-quit is skipping the rest of INTERACT; SWEEP always runs

	removed, err := idx.Sweep(ctx, retainedGenerations)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIndexStore, err)
	}
	o.log.Info("sweep complete", "removed", removed)

	return nil
}

// reconcileHashComponents compares the persisted hash_components config
// against mask. A mismatch forces a full rescan for this run without
// erasing existing data; the scan phase naturally rewrites every record
// it touches. The new mask is always persisted, including on first run.
func (o *Orchestrator) reconcileHashComponents(ctx context.Context, idx store.IndexStore, mask hashing.Components) (forceFullRescan bool, err error) {
	const key = "hash_components"

	prev, ok, err := idx.Config(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: %v", errs.ErrIndexStore, err)
	}

	if ok {
		prevMask, err := hashing.Parse(prev)
		if err == nil && prevMask != mask {
			o.log.Debug(errs.ErrConfigMismatch.Error(),
				"previous", prevMask.String(), "current", mask.String())
			forceFullRescan = true
		}
	}

	if err := idx.SetConfig(ctx, key, mask.String()); err != nil {
		return forceFullRescan, fmt.Errorf("%w: %v", errs.ErrIndexStore, err)
	}
	return forceFullRescan, nil
}

func (o *Orchestrator) abort(cause error) error {
	o.log.Error("run aborted", "error", cause)
	return cause
}

// NowScanID derives the scan generation marker from wall-clock seconds at
// run start, per the "scan generation as epoch" convention: two runs
// beginning within the same second share an id, which is harmless because
// their effect on the index is compositionally identical.
func NowScanID() int64 {
	return time.Now().UTC().Unix()
}
