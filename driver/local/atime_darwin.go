//go:build darwin

package local

import (
	"os"
	"syscall"
	"time"
)

// accessTime extracts the access time from the stat result on macOS.
func accessTime(info os.FileInfo) time.Time {
	sys := info.Sys()
	if sys == nil {
		return time.Time{}
	}

	stat, ok := sys.(*syscall.Stat_t)
	if !ok {
		return time.Time{}
	}

	return time.Unix(stat.Atimespec.Sec, stat.Atimespec.Nsec)
}
