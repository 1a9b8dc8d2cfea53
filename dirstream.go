package relayfs

import (
	"context"
	"io"
	"strings"
)

// DirEntry is one adapted directory-listing entry. The remote-form name is
// preserved exactly; the coordinate's local form carries the sanitized name.
type DirEntry struct {
	// RemoteName is the entry name exactly as the remote backend reported it.
	RemoteName string
	// Coord is the entry's dual-form path, local form built from the
	// sanitized name, with the attribute snapshot attached.
	Coord *Coordinate
	// Info is the backend-native attribute snapshot (Path rewritten to the
	// local form).
	Info FileInfo
	// Host is the host-convention attribute view derived from Info.
	Host HostAttributes
}

// DirectoryStream iterates a remote directory listing in adapted form.
// A stream is owned by a single caller; it is not safe for concurrent use.
type DirectoryStream struct {
	fsys    *Filesystem
	dir     *Coordinate
	entries []FileInfo
	idx     int
	cur     *DirEntry
	closed  bool
}

// Next returns the next adapted entry, or io.EOF when the listing is
// exhausted.
func (s *DirectoryStream) Next() (*DirEntry, error) {
	if s.closed {
		return nil, &PathError{Op: "list", Path: s.dir.LocalPath(), Err: ErrClosed}
	}
	if s.idx >= len(s.entries) {
		s.cur = nil
		return nil, io.EOF
	}
	info := s.entries[s.idx]
	s.idx++

	remoteName := info.Name
	coord := newAdaptedCoordinate(s.fsys.conv, s.fsys.id,
		joinSlash(s.dir.RemotePath(), remoteName),
		joinSlash(s.dir.RemotePath(), SanitizeName(remoteName)))

	adapted := info
	adapted.Name = SanitizeName(remoteName)
	adapted.Path = coord.LocalPath()

	s.cur = &DirEntry{
		RemoteName: remoteName,
		Coord:      coord.WithAttributes(&adapted),
		Info:       adapted,
		Host:       AdaptAttributes(&info),
	}
	return s.cur, nil
}

// Remove deletes the most recently returned entry, forwarding to the
// underlying remote backend.
func (s *DirectoryStream) Remove(ctx context.Context) error {
	if s.closed {
		return &PathError{Op: "list", Path: s.dir.LocalPath(), Err: ErrClosed}
	}
	if s.cur == nil {
		return &PathError{Op: "list", Path: s.dir.LocalPath(), Err: ErrInvalidPath}
	}
	rel := joinSlash(s.dir.RemotePath(), s.cur.RemoteName)
	if s.cur.Info.IsDir {
		return s.fsys.remote.DeleteDir(ctx, rel)
	}
	return s.fsys.remote.Delete(ctx, rel)
}

// Close releases the stream. Further calls fail with ErrClosed.
func (s *DirectoryStream) Close() error {
	s.closed = true
	s.cur = nil
	return nil
}

// illegalLocalChars are characters a mount-form path segment cannot contain
// under host path syntax.
const illegalLocalChars = `<>:"/\|?*`

// SanitizeName rewrites a remote entry name into a host-path-safe name:
// characters illegal in local path syntax (and control characters) are
// replaced with '_'. The remote-form name is never altered.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(illegalLocalChars, r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// joinSlash joins a slash-path base and an entry name.
func joinSlash(base, name string) string {
	if base == "" || base == "/" {
		return "/" + name
	}
	return strings.TrimSuffix(base, "/") + "/" + name
}
