// Package local provides an OS-backed implementation of relayfs.FileSystem
// rooted at a directory. It is the usual host-view backend: mount-form paths
// handed down by the routing provider are normalized and confined under the
// root.
package local

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/relayfs/relayfs"
)

// Adapter provides a local filesystem implementation of relayfs.FileSystem
type Adapter struct {
	root string
}

// New creates a new local filesystem adapter rooted at root
func New(root string) (*Adapter, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, err
	}

	return &Adapter{
		root: absRoot,
	}, nil
}

// Root returns the absolute root directory of the adapter
func (a *Adapter) Root() string {
	return a.root
}

// fullPath maps an incoming path, in either separator style, to an absolute
// path under the root.
func (a *Adapter) fullPath(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	path = strings.TrimLeft(path, "/")
	return filepath.Join(a.root, filepath.Clean("/"+path))
}

// isPathUnderRoot checks that a resolved path did not escape the root
func isPathUnderRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

// Write implements relayfs.FileWriter
func (a *Adapter) Write(ctx context.Context, path string, content io.Reader, options ...relayfs.Option) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)
	if !isPathUnderRoot(a.root, fullPath) {
		return &relayfs.PathError{Op: "write", Path: path, Err: relayfs.ErrNotAllowed}
	}

	opts := relayfs.ApplyOptions(options...)
	if !opts.Overwrite {
		if _, err := os.Lstat(fullPath); err == nil {
			return &relayfs.PathError{Op: "write", Path: path, Err: relayfs.ErrExist}
		}
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return &relayfs.PathError{Op: "write", Path: path, Err: err}
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return &relayfs.PathError{Op: "write", Path: path, Err: err}
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		return &relayfs.PathError{Op: "write", Path: path, Err: err}
	}

	return nil
}

// Read implements relayfs.FileReader
func (a *Adapter) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)
	if !isPathUnderRoot(a.root, fullPath) {
		return nil, &relayfs.PathError{Op: "read", Path: path, Err: relayfs.ErrNotAllowed}
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &relayfs.PathError{Op: "read", Path: path, Err: relayfs.ErrNotExist}
		}
		return nil, &relayfs.PathError{Op: "read", Path: path, Err: err}
	}

	return f, nil
}

// ReadAll implements relayfs.FileReader
func (a *Adapter) ReadAll(ctx context.Context, path string) ([]byte, error) {
	rc, err := a.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// Delete implements relayfs.FileWriter
func (a *Adapter) Delete(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)
	if !isPathUnderRoot(a.root, fullPath) {
		return &relayfs.PathError{Op: "delete", Path: path, Err: relayfs.ErrNotAllowed}
	}

	info, err := os.Lstat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &relayfs.PathError{Op: "delete", Path: path, Err: relayfs.ErrNotExist}
		}
		return &relayfs.PathError{Op: "delete", Path: path, Err: err}
	}
	if info.IsDir() {
		return &relayfs.PathError{Op: "delete", Path: path, Err: relayfs.ErrIsDir}
	}

	if err := os.Remove(fullPath); err != nil {
		return &relayfs.PathError{Op: "delete", Path: path, Err: err}
	}

	return nil
}

// CreateDir implements relayfs.FileWriter
func (a *Adapter) CreateDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)
	if !isPathUnderRoot(a.root, fullPath) {
		return &relayfs.PathError{Op: "createdir", Path: path, Err: relayfs.ErrNotAllowed}
	}

	if err := os.MkdirAll(fullPath, 0755); err != nil {
		return &relayfs.PathError{Op: "createdir", Path: path, Err: err}
	}

	return nil
}

// DeleteDir implements relayfs.FileWriter
func (a *Adapter) DeleteDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)
	if !isPathUnderRoot(a.root, fullPath) {
		return &relayfs.PathError{Op: "deletedir", Path: path, Err: relayfs.ErrNotAllowed}
	}

	info, err := os.Lstat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &relayfs.PathError{Op: "deletedir", Path: path, Err: relayfs.ErrNotExist}
		}
		return &relayfs.PathError{Op: "deletedir", Path: path, Err: err}
	}
	if !info.IsDir() {
		return &relayfs.PathError{Op: "deletedir", Path: path, Err: relayfs.ErrNotDir}
	}

	if err := os.RemoveAll(fullPath); err != nil {
		return &relayfs.PathError{Op: "deletedir", Path: path, Err: err}
	}

	return nil
}

// FileExists implements relayfs.FileReader
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)
	if !isPathUnderRoot(a.root, fullPath) {
		return false, &relayfs.PathError{Op: "fileexists", Path: path, Err: relayfs.ErrNotAllowed}
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &relayfs.PathError{Op: "fileexists", Path: path, Err: err}
	}

	return !info.IsDir(), nil
}

// DirExists implements relayfs.FileReader
func (a *Adapter) DirExists(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)
	if !isPathUnderRoot(a.root, fullPath) {
		return false, &relayfs.PathError{Op: "direxists", Path: path, Err: relayfs.ErrNotAllowed}
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &relayfs.PathError{Op: "direxists", Path: path, Err: err}
	}

	return info.IsDir(), nil
}

// Stat implements relayfs.FileReader
func (a *Adapter) Stat(ctx context.Context, path string) (*relayfs.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)
	if !isPathUnderRoot(a.root, fullPath) {
		return nil, &relayfs.PathError{Op: "stat", Path: path, Err: relayfs.ErrNotAllowed}
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &relayfs.PathError{Op: "stat", Path: path, Err: relayfs.ErrNotExist}
		}
		return nil, &relayfs.PathError{Op: "stat", Path: path, Err: err}
	}

	return a.fileInfo(path, info), nil
}

func (a *Adapter) fileInfo(path string, info os.FileInfo) *relayfs.FileInfo {
	fi := &relayfs.FileInfo{
		Name:       info.Name(),
		Path:       path,
		Size:       info.Size(),
		Mode:       info.Mode(),
		ModTime:    info.ModTime(),
		AccessTime: accessTime(info),
		IsDir:      info.IsDir(),
	}
	if !info.IsDir() {
		fi.ContentType = mime.TypeByExtension(filepath.Ext(info.Name()))
	}
	return fi
}

// ListContents implements relayfs.FileReader
func (a *Adapter) ListContents(ctx context.Context, path string, recursive bool) ([]relayfs.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)
	if !isPathUnderRoot(a.root, fullPath) {
		return nil, &relayfs.PathError{Op: "list", Path: path, Err: relayfs.ErrNotAllowed}
	}

	var infos []relayfs.FileInfo
	if recursive {
		err := filepath.Walk(fullPath, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if p == fullPath {
				return nil
			}
			rel, err := filepath.Rel(fullPath, p)
			if err != nil {
				return err
			}
			entry := joinEntryPath(path, filepath.ToSlash(rel))
			infos = append(infos, *a.fileInfo(entry, info))
			return nil
		})
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &relayfs.PathError{Op: "list", Path: path, Err: relayfs.ErrNotExist}
			}
			return nil, &relayfs.PathError{Op: "list", Path: path, Err: err}
		}
	} else {
		entries, err := os.ReadDir(fullPath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &relayfs.PathError{Op: "list", Path: path, Err: relayfs.ErrNotExist}
			}
			return nil, &relayfs.PathError{Op: "list", Path: path, Err: err}
		}
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil {
				continue
			}
			infos = append(infos, *a.fileInfo(joinEntryPath(path, entry.Name()), info))
		}
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos, nil
}

// joinEntryPath extends the listed path with a child name, keeping the
// caller's separator style.
func joinEntryPath(base, name string) string {
	if strings.Contains(base, `\`) {
		name = strings.ReplaceAll(name, "/", `\`)
		return strings.TrimRight(base, `\`) + `\` + name
	}
	if base == "" || base == "/" {
		return "/" + name
	}
	return strings.TrimRight(base, "/") + "/" + name
}

// Copy implements relayfs.CanCopy with a byte copy of a single file.
func (a *Adapter) Copy(ctx context.Context, src, dst string, opts ...relayfs.Option) error {
	rc, err := a.Read(ctx, src)
	if err != nil {
		return err
	}
	defer rc.Close()

	return a.Write(ctx, dst, rc, append(opts, relayfs.WithOverwrite(true))...)
}

// Move implements relayfs.CanMove with an atomic rename.
func (a *Adapter) Move(ctx context.Context, src, dst string, opts ...relayfs.Option) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	srcPath := a.fullPath(src)
	dstPath := a.fullPath(dst)
	if !isPathUnderRoot(a.root, srcPath) || !isPathUnderRoot(a.root, dstPath) {
		return &relayfs.PathError{Op: "move", Path: src, Err: relayfs.ErrNotAllowed}
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return &relayfs.PathError{Op: "move", Path: dst, Err: err}
	}

	if err := os.Rename(srcPath, dstPath); err != nil {
		if os.IsNotExist(err) {
			return &relayfs.PathError{Op: "move", Path: src, Err: relayfs.ErrNotExist}
		}
		return &relayfs.PathError{Op: "move", Path: src, Err: err}
	}

	return nil
}

// Symlink implements relayfs.CanSymlink
func (a *Adapter) Symlink(ctx context.Context, target, link string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	linkPath := a.fullPath(link)
	if !isPathUnderRoot(a.root, linkPath) {
		return &relayfs.PathError{Op: "symlink", Path: link, Err: relayfs.ErrNotAllowed}
	}

	if err := os.MkdirAll(filepath.Dir(linkPath), 0755); err != nil {
		return &relayfs.PathError{Op: "symlink", Path: link, Err: err}
	}

	if err := os.Symlink(target, linkPath); err != nil {
		if os.IsExist(err) {
			return &relayfs.PathError{Op: "symlink", Path: link, Err: relayfs.ErrExist}
		}
		return &relayfs.PathError{Op: "symlink", Path: link, Err: err}
	}

	return nil
}

// Readlink implements relayfs.CanSymlink
func (a *Adapter) Readlink(ctx context.Context, path string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)
	if !isPathUnderRoot(a.root, fullPath) {
		return "", &relayfs.PathError{Op: "readlink", Path: path, Err: relayfs.ErrNotAllowed}
	}

	target, err := os.Readlink(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &relayfs.PathError{Op: "readlink", Path: path, Err: relayfs.ErrNotExist}
		}
		return "", &relayfs.PathError{Op: "readlink", Path: path, Err: err}
	}

	return target, nil
}

// Link implements relayfs.CanLink
func (a *Adapter) Link(ctx context.Context, existing, link string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	existingPath := a.fullPath(existing)
	linkPath := a.fullPath(link)
	if !isPathUnderRoot(a.root, existingPath) || !isPathUnderRoot(a.root, linkPath) {
		return &relayfs.PathError{Op: "link", Path: link, Err: relayfs.ErrNotAllowed}
	}

	if err := os.MkdirAll(filepath.Dir(linkPath), 0755); err != nil {
		return &relayfs.PathError{Op: "link", Path: link, Err: err}
	}

	if err := os.Link(existingPath, linkPath); err != nil {
		if os.IsNotExist(err) {
			return &relayfs.PathError{Op: "link", Path: existing, Err: relayfs.ErrNotExist}
		}
		if os.IsExist(err) {
			return &relayfs.PathError{Op: "link", Path: link, Err: relayfs.ErrExist}
		}
		return &relayfs.PathError{Op: "link", Path: link, Err: err}
	}

	return nil
}

// SetTimes implements relayfs.CanSetTimes. Zero values preserve the
// existing timestamp.
func (a *Adapter) SetTimes(ctx context.Context, path string, atime, mtime time.Time) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)
	if !isPathUnderRoot(a.root, fullPath) {
		return &relayfs.PathError{Op: "settimes", Path: path, Err: relayfs.ErrNotAllowed}
	}

	if atime.IsZero() || mtime.IsZero() {
		info, err := os.Stat(fullPath)
		if err != nil {
			if os.IsNotExist(err) {
				return &relayfs.PathError{Op: "settimes", Path: path, Err: relayfs.ErrNotExist}
			}
			return &relayfs.PathError{Op: "settimes", Path: path, Err: err}
		}
		if mtime.IsZero() {
			mtime = info.ModTime()
		}
		if atime.IsZero() {
			atime = accessTime(info)
		}
	}

	if err := os.Chtimes(fullPath, atime, mtime); err != nil {
		if os.IsNotExist(err) {
			return &relayfs.PathError{Op: "settimes", Path: path, Err: relayfs.ErrNotExist}
		}
		return &relayfs.PathError{Op: "settimes", Path: path, Err: err}
	}

	return nil
}

// SameFile implements relayfs.CanSameFile using the OS file identity.
func (a *Adapter) SameFile(ctx context.Context, p1, p2 string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	f1 := a.fullPath(p1)
	f2 := a.fullPath(p2)
	if !isPathUnderRoot(a.root, f1) || !isPathUnderRoot(a.root, f2) {
		return false, &relayfs.PathError{Op: "samefile", Path: p1, Err: relayfs.ErrNotAllowed}
	}

	i1, err := os.Stat(f1)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &relayfs.PathError{Op: "samefile", Path: p1, Err: err}
	}
	i2, err := os.Stat(f2)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &relayfs.PathError{Op: "samefile", Path: p2, Err: err}
	}

	return os.SameFile(i1, i2), nil
}

// RealPath implements relayfs.CanRealPath, resolving symlinks to a
// root-relative canonical path.
func (a *Adapter) RealPath(ctx context.Context, path string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)
	if !isPathUnderRoot(a.root, fullPath) {
		return "", &relayfs.PathError{Op: "realpath", Path: path, Err: relayfs.ErrNotAllowed}
	}

	resolved, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &relayfs.PathError{Op: "realpath", Path: path, Err: relayfs.ErrNotExist}
		}
		return "", &relayfs.PathError{Op: "realpath", Path: path, Err: err}
	}

	rel, err := filepath.Rel(a.root, resolved)
	if err != nil {
		return "", &relayfs.PathError{Op: "realpath", Path: path, Err: err}
	}
	if rel == "." {
		return "/", nil
	}
	return "/" + filepath.ToSlash(rel), nil
}

// Access implements relayfs.CanAccess with a permission-bit check against
// the stat result.
func (a *Adapter) Access(ctx context.Context, path string, mode relayfs.AccessMode) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)
	if !isPathUnderRoot(a.root, fullPath) {
		return &relayfs.PathError{Op: "access", Path: path, Err: relayfs.ErrNotAllowed}
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &relayfs.PathError{Op: "access", Path: path, Err: relayfs.ErrNotExist}
		}
		return &relayfs.PathError{Op: "access", Path: path, Err: err}
	}

	perm := info.Mode().Perm()
	if mode&relayfs.AccessRead != 0 && perm&0444 == 0 {
		return &relayfs.PathError{Op: "access", Path: path, Err: relayfs.ErrPermission}
	}
	if mode&relayfs.AccessWrite != 0 && perm&0222 == 0 {
		return &relayfs.PathError{Op: "access", Path: path, Err: relayfs.ErrPermission}
	}
	if mode&relayfs.AccessExecute != 0 && perm&0111 == 0 {
		return &relayfs.PathError{Op: "access", Path: path, Err: relayfs.ErrPermission}
	}

	return nil
}

// IsHidden implements relayfs.CanHide using the dotfile convention.
func (a *Adapter) IsHidden(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	base := filepath.Base(filepath.FromSlash(strings.ReplaceAll(path, `\`, "/")))
	return strings.HasPrefix(base, "."), nil
}

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
