//go:build darwin

package metadata

import (
	"os"
	"syscall"
)

// birthTime reads Birthtimespec from the raw syscall.Stat_t darwin
// exposes through os.FileInfo.Sys().
func birthTime(_ string, fi os.FileInfo) (int64, bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return st.Birthtimespec.Sec, true
}
