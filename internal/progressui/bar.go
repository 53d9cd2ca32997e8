// Package progressui renders scan.ProgressSink reports to a terminal
// progress bar and prints per-path errors beneath it.
package progressui

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"dupfind/internal/scan"
)

// Bar is a scan.ProgressSink backed by an indeterminate spinner-style
// progress bar, since the total file count isn't known ahead of a walk.
type Bar struct {
	quiet bool
	bar   *progressbar.ProgressBar
}

var _ scan.ProgressSink = (*Bar)(nil)

// New creates a Bar. When quiet is true, Report and ReportError are
// no-ops beyond writing errors to stderr.
func New(quiet bool) *Bar {
	b := &Bar{quiet: quiet}
	if !quiet {
		b.bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("scanning"),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionThrottle(65),
			progressbar.OptionShowCount(),
			progressbar.OptionFullWidth(),
		)
	}
	return b
}

func (b *Bar) Report(s scan.Snapshot) {
	if b.quiet || b.bar == nil {
		return
	}
	b.bar.Describe(fmt.Sprintf(
		"scanned %s, updated %s, unchanged %s, hashed %s, errors %s",
		humanize.Comma(s.Scanned), humanize.Comma(s.Updated), humanize.Comma(s.SkippedUnchanged),
		humanize.Comma(s.HashedContent), humanize.Comma(s.SkippedError),
	))
	_ = b.bar.Add(1)
}

func (b *Bar) ReportError(path string, err error) {
	if b.bar != nil {
		_ = b.bar.Clear()
	}
	if path == "" {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "warning: %s: %v\n", path, err)
	}
}

// Finish marks the bar complete.
func (b *Bar) Finish() {
	if b.bar != nil {
		_ = b.bar.Finish()
	}
}
