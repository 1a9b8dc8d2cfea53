// Package memory provides an in-memory implementation of relayfs.FileSystem.
// Useful for testing: it can stand in both for a remote execution system and
// for the host view, and implements the full optional capability set the
// routing provider probes for.
package memory

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/relayfs/relayfs"
)

// memoryFile represents a file stored in memory. Hard links share the same
// *memoryFile value.
type memoryFile struct {
	content     []byte
	contentType string
	metadata    map[string]string
	mode        fs.FileMode
	modTime     time.Time
	accessTime  time.Time
}

// memoryDir represents a directory in memory
type memoryDir struct {
	modTime time.Time
}

// Adapter provides an in-memory implementation of relayfs.FileSystem
type Adapter struct {
	mu       sync.RWMutex
	files    map[string]*memoryFile
	dirs     map[string]*memoryDir
	symlinks map[string]string // link path -> target (stored as-is)
}

// New creates a new in-memory filesystem adapter
func New() *Adapter {
	a := &Adapter{
		files:    make(map[string]*memoryFile),
		dirs:     make(map[string]*memoryDir),
		symlinks: make(map[string]string),
	}
	a.dirs["/"] = &memoryDir{modTime: time.Now()}
	return a
}

// normalizePath maps any accepted spelling of a path to its canonical key.
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// resolve follows symlinks to the canonical target path.
// Must be called with at least a read lock held.
func (a *Adapter) resolve(p string) string {
	for range 16 {
		target, ok := a.symlinks[p]
		if !ok {
			return p
		}
		if !strings.HasPrefix(target, "/") {
			target = path.Join(path.Dir(p), target)
		}
		p = normalizePath(target)
	}
	return p
}

// lookupFold finds the canonical key for p, retrying case-insensitively when
// the exact spelling is absent. Models a case-insensitive host view.
func (a *Adapter) lookupFold(p string) (string, bool) {
	if _, ok := a.files[p]; ok {
		return p, true
	}
	if _, ok := a.dirs[p]; ok {
		return p, true
	}
	if _, ok := a.symlinks[p]; ok {
		return p, true
	}
	for key := range a.files {
		if strings.EqualFold(key, p) {
			return key, true
		}
	}
	for key := range a.dirs {
		if strings.EqualFold(key, p) {
			return key, true
		}
	}
	for key := range a.symlinks {
		if strings.EqualFold(key, p) {
			return key, true
		}
	}
	return p, false
}

func (a *Adapter) createParents(p string) {
	dir := path.Dir(p)
	for dir != "/" && dir != "." {
		if _, ok := a.dirs[dir]; !ok {
			a.dirs[dir] = &memoryDir{modTime: time.Now()}
		}
		dir = path.Dir(dir)
	}
}

// Write implements relayfs.FileWriter
func (a *Adapter) Write(ctx context.Context, p string, content io.Reader, options ...relayfs.Option) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p = normalizePath(p)

	data, err := io.ReadAll(content)
	if err != nil {
		return &relayfs.PathError{Op: "write", Path: p, Err: err}
	}

	opts := relayfs.ApplyOptions(options...)

	a.mu.Lock()
	defer a.mu.Unlock()

	target := a.resolve(p)
	if _, exists := a.files[target]; exists && !opts.Overwrite {
		return &relayfs.PathError{Op: "write", Path: p, Err: relayfs.ErrExist}
	}
	if _, isDir := a.dirs[target]; isDir {
		return &relayfs.PathError{Op: "write", Path: p, Err: relayfs.ErrIsDir}
	}

	a.createParents(target)
	f := &memoryFile{
		content:     data,
		contentType: opts.ContentType,
		mode:        0o644,
		modTime:     time.Now(),
		accessTime:  time.Now(),
	}
	if len(opts.Metadata) > 0 {
		f.metadata = make(map[string]string, len(opts.Metadata))
		for k, v := range opts.Metadata {
			f.metadata[k] = v
		}
	}
	a.files[target] = f
	return nil
}

// Read implements relayfs.FileReader
func (a *Adapter) Read(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	target := a.resolve(p)
	f, ok := a.files[target]
	if !ok {
		if _, isDir := a.dirs[target]; isDir {
			return nil, &relayfs.PathError{Op: "read", Path: p, Err: relayfs.ErrIsDir}
		}
		return nil, &relayfs.PathError{Op: "read", Path: p, Err: relayfs.ErrNotExist}
	}
	return io.NopCloser(bytes.NewReader(f.content)), nil
}

// ReadAll implements relayfs.FileReader
func (a *Adapter) ReadAll(ctx context.Context, p string) ([]byte, error) {
	rc, err := a.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Delete implements relayfs.FileWriter
func (a *Adapter) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p = normalizePath(p)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.symlinks[p]; ok {
		delete(a.symlinks, p)
		return nil
	}
	if _, ok := a.files[p]; ok {
		delete(a.files, p)
		return nil
	}
	if _, ok := a.dirs[p]; ok {
		return &relayfs.PathError{Op: "delete", Path: p, Err: relayfs.ErrIsDir}
	}
	return &relayfs.PathError{Op: "delete", Path: p, Err: relayfs.ErrNotExist}
}

// CreateDir implements relayfs.FileWriter
func (a *Adapter) CreateDir(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p = normalizePath(p)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.files[p]; ok {
		return &relayfs.PathError{Op: "createdir", Path: p, Err: relayfs.ErrExist}
	}
	a.createParents(p)
	if _, ok := a.dirs[p]; !ok {
		a.dirs[p] = &memoryDir{modTime: time.Now()}
	}
	return nil
}

// DeleteDir implements relayfs.FileWriter
func (a *Adapter) DeleteDir(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p = normalizePath(p)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.dirs[p]; !ok {
		return &relayfs.PathError{Op: "deletedir", Path: p, Err: relayfs.ErrNotExist}
	}

	prefix := p + "/"
	if p == "/" {
		prefix = "/"
	}
	for key := range a.files {
		if strings.HasPrefix(key, prefix) {
			delete(a.files, key)
		}
	}
	for key := range a.symlinks {
		if strings.HasPrefix(key, prefix) {
			delete(a.symlinks, key)
		}
	}
	for key := range a.dirs {
		if strings.HasPrefix(key, prefix) {
			delete(a.dirs, key)
		}
	}
	if p != "/" {
		delete(a.dirs, p)
	}
	return nil
}

// FileExists implements relayfs.FileReader
func (a *Adapter) FileExists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	_, ok := a.files[a.resolve(p)]
	return ok, nil
}

// DirExists implements relayfs.FileReader
func (a *Adapter) DirExists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	_, ok := a.dirs[a.resolve(p)]
	return ok, nil
}

// Stat implements relayfs.FileReader. Symlinks are followed; listing shows
// them unresolved.
func (a *Adapter) Stat(ctx context.Context, p string) (*relayfs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	target := a.resolve(p)
	if f, ok := a.files[target]; ok {
		return a.fileInfo(target, f), nil
	}
	if d, ok := a.dirs[target]; ok {
		return &relayfs.FileInfo{
			Name:    path.Base(target),
			Path:    target,
			Mode:    fs.ModeDir | 0o755,
			ModTime: d.modTime,
			IsDir:   true,
		}, nil
	}
	return nil, &relayfs.PathError{Op: "stat", Path: p, Err: relayfs.ErrNotExist}
}

func (a *Adapter) fileInfo(p string, f *memoryFile) *relayfs.FileInfo {
	info := &relayfs.FileInfo{
		Name:        path.Base(p),
		Path:        p,
		Size:        int64(len(f.content)),
		Mode:        f.mode,
		ModTime:     f.modTime,
		AccessTime:  f.accessTime,
		ContentType: f.contentType,
	}
	if len(f.metadata) > 0 {
		info.Metadata = make(map[string]string, len(f.metadata))
		for k, v := range f.metadata {
			info.Metadata[k] = v
		}
	}
	return info
}

// ListContents implements relayfs.FileReader
func (a *Adapter) ListContents(ctx context.Context, p string, recursive bool) ([]relayfs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	dir := a.resolve(p)
	if _, ok := a.dirs[dir]; !ok {
		if _, isFile := a.files[dir]; isFile {
			return nil, &relayfs.PathError{Op: "list", Path: p, Err: relayfs.ErrNotDir}
		}
		return nil, &relayfs.PathError{Op: "list", Path: p, Err: relayfs.ErrNotExist}
	}

	prefix := dir + "/"
	if dir == "/" {
		prefix = "/"
	}

	include := func(key string) bool {
		if !strings.HasPrefix(key, prefix) || key == dir {
			return false
		}
		if recursive {
			return true
		}
		return !strings.Contains(strings.TrimPrefix(key, prefix), "/")
	}

	var infos []relayfs.FileInfo
	for key, f := range a.files {
		if include(key) {
			infos = append(infos, *a.fileInfo(key, f))
		}
	}
	for key, d := range a.dirs {
		if include(key) {
			infos = append(infos, relayfs.FileInfo{
				Name:    path.Base(key),
				Path:    key,
				Mode:    fs.ModeDir | 0o755,
				ModTime: d.modTime,
				IsDir:   true,
			})
		}
	}
	for key, target := range a.symlinks {
		if include(key) {
			infos = append(infos, relayfs.FileInfo{
				Name:     path.Base(key),
				Path:     key,
				Mode:     fs.ModeSymlink | 0o777,
				Metadata: map[string]string{"target": target},
			})
		}
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos, nil
}

// Copy implements relayfs.CanCopy with a full content duplicate.
func (a *Adapter) Copy(ctx context.Context, src, dst string, opts ...relayfs.Option) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src = normalizePath(src)
	dst = normalizePath(dst)

	a.mu.Lock()
	defer a.mu.Unlock()

	f, ok := a.files[a.resolve(src)]
	if !ok {
		return &relayfs.PathError{Op: "copy", Path: src, Err: relayfs.ErrNotExist}
	}
	a.createParents(dst)
	clone := *f
	clone.content = append([]byte(nil), f.content...)
	a.files[dst] = &clone
	return nil
}

// Move implements relayfs.CanMove by rekeying files, symlinks, and
// directories under src.
func (a *Adapter) Move(ctx context.Context, src, dst string, opts ...relayfs.Option) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src = normalizePath(src)
	dst = normalizePath(dst)

	a.mu.Lock()
	defer a.mu.Unlock()

	if f, ok := a.files[src]; ok {
		a.createParents(dst)
		a.files[dst] = f
		delete(a.files, src)
		return nil
	}
	if _, ok := a.dirs[src]; !ok {
		return &relayfs.PathError{Op: "move", Path: src, Err: relayfs.ErrNotExist}
	}

	a.createParents(dst)
	rekey := func(key string) (string, bool) {
		if key == src {
			return dst, true
		}
		if strings.HasPrefix(key, src+"/") {
			return dst + strings.TrimPrefix(key, src), true
		}
		return "", false
	}
	for key, f := range a.files {
		if next, ok := rekey(key); ok {
			a.files[next] = f
			delete(a.files, key)
		}
	}
	for key, target := range a.symlinks {
		if next, ok := rekey(key); ok {
			a.symlinks[next] = target
			delete(a.symlinks, key)
		}
	}
	for key, d := range a.dirs {
		if next, ok := rekey(key); ok {
			a.dirs[next] = d
			delete(a.dirs, key)
		}
	}
	return nil
}

// Symlink implements relayfs.CanSymlink
func (a *Adapter) Symlink(ctx context.Context, target, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	link = normalizePath(link)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.symlinks[link]; ok {
		return &relayfs.PathError{Op: "symlink", Path: link, Err: relayfs.ErrExist}
	}
	if _, ok := a.files[link]; ok {
		return &relayfs.PathError{Op: "symlink", Path: link, Err: relayfs.ErrExist}
	}
	a.createParents(link)
	a.symlinks[link] = target
	return nil
}

// Readlink implements relayfs.CanSymlink
func (a *Adapter) Readlink(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	target, ok := a.symlinks[p]
	if !ok {
		return "", &relayfs.PathError{Op: "readlink", Path: p, Err: relayfs.ErrInvalidPath}
	}
	return target, nil
}

// Link implements relayfs.CanLink: both paths share the same underlying file.
func (a *Adapter) Link(ctx context.Context, existing, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	existing = normalizePath(existing)
	link = normalizePath(link)

	a.mu.Lock()
	defer a.mu.Unlock()

	f, ok := a.files[a.resolve(existing)]
	if !ok {
		return &relayfs.PathError{Op: "link", Path: existing, Err: relayfs.ErrNotExist}
	}
	if _, exists := a.files[link]; exists {
		return &relayfs.PathError{Op: "link", Path: link, Err: relayfs.ErrExist}
	}
	a.createParents(link)
	a.files[link] = f
	return nil
}

// SetTimes implements relayfs.CanSetTimes. Zero values preserve the
// existing timestamp.
func (a *Adapter) SetTimes(ctx context.Context, p string, atime, mtime time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p = normalizePath(p)

	a.mu.Lock()
	defer a.mu.Unlock()

	if f, ok := a.files[a.resolve(p)]; ok {
		if !atime.IsZero() {
			f.accessTime = atime
		}
		if !mtime.IsZero() {
			f.modTime = mtime
		}
		return nil
	}
	if d, ok := a.dirs[a.resolve(p)]; ok {
		if !mtime.IsZero() {
			d.modTime = mtime
		}
		return nil
	}
	return &relayfs.PathError{Op: "settimes", Path: p, Err: relayfs.ErrNotExist}
}

// SameFile implements relayfs.CanSameFile: true when both paths resolve
// (following symlinks, folding case like a host view) to the same
// underlying file or directory.
func (a *Adapter) SameFile(ctx context.Context, p1, p2 string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	k1, ok1 := a.lookupFold(normalizePath(p1))
	k2, ok2 := a.lookupFold(normalizePath(p2))
	if !ok1 || !ok2 {
		return false, nil
	}
	k1 = a.resolve(k1)
	k2 = a.resolve(k2)

	if f1, ok := a.files[k1]; ok {
		f2, ok := a.files[k2]
		return ok && f1 == f2, nil
	}
	if d1, ok := a.dirs[k1]; ok {
		d2, ok := a.dirs[k2]
		return ok && d1 == d2, nil
	}
	return false, nil
}

// RealPath implements relayfs.CanRealPath, following symlinks.
func (a *Adapter) RealPath(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.resolve(p), nil
}

// Access implements relayfs.CanAccess
func (a *Adapter) Access(ctx context.Context, p string, mode relayfs.AccessMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	target := a.resolve(p)
	if f, ok := a.files[target]; ok {
		if mode&relayfs.AccessWrite != 0 && f.mode&0o222 == 0 {
			return &relayfs.PathError{Op: "access", Path: p, Err: relayfs.ErrPermission}
		}
		return nil
	}
	if _, ok := a.dirs[target]; ok {
		return nil
	}
	return &relayfs.PathError{Op: "access", Path: p, Err: relayfs.ErrNotExist}
}

// IsHidden implements relayfs.CanHide using the dotfile convention.
func (a *Adapter) IsHidden(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return strings.HasPrefix(path.Base(normalizePath(p)), "."), nil
}

// Chmod sets the permission bits of a file, for shaping test fixtures.
func (a *Adapter) Chmod(ctx context.Context, p string, mode fs.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p = normalizePath(p)

	a.mu.Lock()
	defer a.mu.Unlock()

	f, ok := a.files[a.resolve(p)]
	if !ok {
		return &relayfs.PathError{Op: "chmod", Path: p, Err: relayfs.ErrNotExist}
	}
	f.mode = mode
	return nil
}

// Ensure Adapter implements the capability surface the provider probes for.
var (
	_ relayfs.FileSystem  = (*Adapter)(nil)
	_ relayfs.CanCopy     = (*Adapter)(nil)
	_ relayfs.CanMove     = (*Adapter)(nil)
	_ relayfs.CanSymlink  = (*Adapter)(nil)
	_ relayfs.CanLink     = (*Adapter)(nil)
	_ relayfs.CanSetTimes = (*Adapter)(nil)
	_ relayfs.CanSameFile = (*Adapter)(nil)
	_ relayfs.CanRealPath = (*Adapter)(nil)
	_ relayfs.CanAccess   = (*Adapter)(nil)
	_ relayfs.CanHide     = (*Adapter)(nil)
)
