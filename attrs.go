package relayfs

import (
	"io/fs"
	"strings"
)

// HostAttributes is the attribute view a host consumer expects: flags the
// remote backend's POSIX-style model does not represent natively, derived
// from permission bits and naming conventions.
type HostAttributes struct {
	Hidden   bool
	ReadOnly bool
	System   bool
	Archive  bool
}

// AdaptAttributes derives host-convention flags from a backend-native
// attribute snapshot. It is a pure transformation, applied whenever
// attributes are read through the routing provider so callers see a
// consistent model regardless of backend origin.
//
//   - Hidden: dotfile naming convention.
//   - ReadOnly: no write bit set for anyone.
//   - System: special file types (devices, pipes, sockets).
//   - Archive: regular files carry the archive flag by host default.
func AdaptAttributes(info *FileInfo) HostAttributes {
	if info == nil {
		return HostAttributes{}
	}
	return HostAttributes{
		Hidden:   strings.HasPrefix(info.Name, "."),
		ReadOnly: info.Mode&0o222 == 0,
		System:   info.Mode&(fs.ModeDevice|fs.ModeNamedPipe|fs.ModeSocket|fs.ModeCharDevice) != 0,
		Archive:  !info.IsDir && info.Mode&fs.ModeType == 0,
	}
}
