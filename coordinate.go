package relayfs

import (
	"fmt"
	"strings"
)

// Convention describes the two path syntaxes under which a remote system is
// addressed: a URI form (scheme://authority/<system-id>/...) and a mount form
// by which the host filesystem exposes the same tree (\\<tag>\<system-id>\...).
type Convention struct {
	// Scheme is the URI scheme of the remote form, e.g. "rexec".
	Scheme string
	// Authority is the fixed URI authority, e.g. "systems".
	Authority string
	// MountTag is the reserved root component of the mount form, matched
	// case-insensitively, e.g. "remote$".
	MountTag string
}

// DefaultConvention is used when no configuration overrides it.
var DefaultConvention = Convention{
	Scheme:    "rexec",
	Authority: "systems",
	MountTag:  "remote$",
}

// URI formats the remote form for a system-relative path.
func (c Convention) URI(id SystemID, rel string) string {
	return fmt.Sprintf("%s://%s/%s%s", c.Scheme, c.Authority, id, ensureLeadingSlash(rel))
}

// LocalForm formats the canonical mount form for a system-relative path.
// The canonical form uses backslash separators, matching the host convention
// the mount prefix comes from.
func (c Convention) LocalForm(id SystemID, rel string) string {
	rel = ensureLeadingSlash(rel)
	p := `\\` + c.MountTag + `\` + string(id) + strings.ReplaceAll(rel, "/", `\`)
	return strings.TrimSuffix(p, `\`)
}

// IsMountForm reports whether p looks like a mount-form path, regardless of
// whether its id segment names a known system.
func (c Convention) IsMountForm(p string) bool {
	_, _, ok := c.SplitMount(p)
	return ok
}

// SplitMount parses a mount-form path into its raw id segment and the
// system-relative remainder. Both backslash and forward-slash separators are
// accepted; the tag is matched case-insensitively. Returns ok=false when p is
// not a mount-form path at all.
func (c Convention) SplitMount(p string) (idSegment, rel string, ok bool) {
	s := strings.ReplaceAll(p, `\`, "/")
	if !strings.HasPrefix(s, "//") {
		return "", "", false
	}
	s = s[2:]
	parts := strings.SplitN(s, "/", 3)
	if len(parts) < 2 || !strings.EqualFold(parts[0], c.MountTag) || parts[1] == "" {
		return "", "", false
	}
	rel = "/"
	if len(parts) == 3 && parts[2] != "" {
		rel = "/" + strings.Trim(parts[2], "/")
	}
	return parts[1], rel, true
}

// ParseURI parses a remote-form URI into its raw id segment and the
// system-relative remainder. Returns ErrInvalidURI on scheme or authority
// mismatch and on a missing id segment.
func (c Convention) ParseURI(uri string) (idSegment, rel string, err error) {
	prefix := c.Scheme + "://"
	if !strings.HasPrefix(uri, prefix) {
		return "", "", fmt.Errorf("%w: scheme mismatch in %q", ErrInvalidURI, uri)
	}
	s := strings.TrimPrefix(uri, prefix)
	parts := strings.SplitN(s, "/", 3)
	if parts[0] != c.Authority {
		return "", "", fmt.Errorf("%w: authority mismatch in %q", ErrInvalidURI, uri)
	}
	if len(parts) < 2 || parts[1] == "" {
		return "", "", fmt.Errorf("%w: missing system id in %q", ErrInvalidURI, uri)
	}
	rel = "/"
	if len(parts) == 3 && parts[2] != "" {
		rel = "/" + strings.Trim(parts[2], "/")
	}
	return parts[1], rel, nil
}

// EqualLocal compares two mount-form or host paths under host path-equality
// rules: separators are interchangeable and comparison is case-insensitive.
func EqualLocal(a, b string) bool {
	na := strings.ReplaceAll(a, `\`, "/")
	nb := strings.ReplaceAll(b, `\`, "/")
	na = strings.TrimSuffix(na, "/")
	nb = strings.TrimSuffix(nb, "/")
	return strings.EqualFold(na, nb)
}

func ensureLeadingSlash(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// Coordinate is an immutable dual-representation path value: one logical path
// held in both coordinate systems, plus an optional cached attribute
// snapshot. Both forms are computed at construction; a Coordinate never
// re-translates lazily.
//
// Identity is defined on the remote form, avoiding false negatives caused by
// local-path normalization (case folding, separator variance).
type Coordinate struct {
	id    SystemID
	uri   string
	rel   string
	local string
	attrs *FileInfo
}

// NewCoordinate builds a coordinate for a system-relative path under id,
// deriving both forms from conv.
func NewCoordinate(conv Convention, id SystemID, rel string) *Coordinate {
	rel = ensureLeadingSlash(rel)
	return &Coordinate{
		id:    id,
		uri:   conv.URI(id, rel),
		rel:   rel,
		local: conv.LocalForm(id, rel),
	}
}

// newAdaptedCoordinate builds a coordinate whose local form uses a sanitized
// relative path while the remote form keeps the exact backend-reported one.
func newAdaptedCoordinate(conv Convention, id SystemID, remoteRel, localRel string) *Coordinate {
	remoteRel = ensureLeadingSlash(remoteRel)
	return &Coordinate{
		id:    id,
		uri:   conv.URI(id, remoteRel),
		rel:   remoteRel,
		local: conv.LocalForm(id, ensureLeadingSlash(localRel)),
	}
}

// System returns the id of the remote system owning the path.
func (p *Coordinate) System() SystemID { return p.id }

// URI returns the full remote form.
func (p *Coordinate) URI() string { return p.uri }

// RemotePath returns the system-relative slash path the remote backend
// operates on.
func (p *Coordinate) RemotePath() string { return p.rel }

// LocalPath returns the canonical mount form.
func (p *Coordinate) LocalPath() string { return p.local }

// Attributes returns the cached attribute snapshot, if one was attached.
func (p *Coordinate) Attributes() (*FileInfo, bool) {
	return p.attrs, p.attrs != nil
}

// WithAttributes returns a copy of the coordinate carrying the snapshot.
func (p *Coordinate) WithAttributes(info *FileInfo) *Coordinate {
	c := *p
	c.attrs = info
	return &c
}

// Equal reports whether two coordinates name the same logical path.
// Comparison is on the remote form.
func (p *Coordinate) Equal(other *Coordinate) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.uri == other.uri
}

// String implements fmt.Stringer.
func (p *Coordinate) String() string { return p.uri }
