//go:build windows

package local

import (
	"os"
	"syscall"
	"time"
)

// accessTime extracts the last access time from the stat result on Windows.
func accessTime(info os.FileInfo) time.Time {
	sys := info.Sys()
	if sys == nil {
		return time.Time{}
	}

	data, ok := sys.(*syscall.Win32FileAttributeData)
	if !ok {
		return time.Time{}
	}

	return time.Unix(0, data.LastAccessTime.Nanoseconds())
}
