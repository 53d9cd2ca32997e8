//go:build !linux && !darwin && !windows

package metadata

import "os"

// birthTime has no portable fallback; the probe substitutes zero and
// warns once.
func birthTime(_ string, _ os.FileInfo) (int64, bool) {
	return 0, false
}
