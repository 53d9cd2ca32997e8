package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"dupfind/internal/errs"
)

// enumerate performs a single-goroutine breadth-first walk of root,
// enqueuing child directories for later traversal and yielding each file
// path onto paths. For every directory, its files are yielded and its
// child directories are then appended to the FIFO queue, so siblings at
// the current depth exhaust before any grandchild is visited.
//
// Access errors on a directory are reported and that directory is
// skipped; its siblings continue. The channel is always closed on return,
// including on cancellation.
func enumerate(ctx context.Context, root string, paths chan<- string, sink ProgressSink) {
	defer close(paths)

	queue := []string{root}
	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return
		default:
		}

		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			sink.ReportError(dir, classifyDirErr(err))
			continue
		}

		var subdirs []string
		for _, e := range entries {
			full := filepath.Join(dir, e.Name())
			if e.IsDir() {
				subdirs = append(subdirs, full)
				continue
			}
			// Symlinks are treated as ordinary paths, not resolved or
			// deduplicated against their target: only other non-regular
			// entries (sockets, devices, named pipes) are skipped.
			if mode := e.Type(); !mode.IsRegular() && mode&os.ModeSymlink == 0 {
				continue
			}
			select {
			case paths <- full:
			case <-ctx.Done():
				return
			}
		}
		queue = append(queue, subdirs...)
	}
}

func classifyDirErr(err error) error {
	if os.IsPermission(err) {
		return fmt.Errorf("%w: %v", errs.ErrAccessDenied, err)
	}
	return fmt.Errorf("%w: %v", errs.ErrIO, err)
}
