//go:build linux

package metadata

import (
	"os"

	"golang.org/x/sys/unix"
)

// birthTime uses statx(2) with STATX_BTIME where the filesystem supports
// it. Most Linux filesystems (ext4 without extended attrs, older kernels)
// do not report it; ok is false and the caller substitutes zero.
func birthTime(path string, _ os.FileInfo) (int64, bool) {
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_BTIME, &stx); err != nil {
		return 0, false
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		return 0, false
	}
	return stx.Btime.Sec, true
}
