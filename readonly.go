package relayfs

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrReadOnly is returned when a write operation is attempted on a read-only filesystem.
var ErrReadOnly = errors.New("filesystem is read-only")

// ReadOnlyFileSystem wraps a FileSystem to prevent all write operations.
// The provider applies it to remote backends when a system is mounted
// read-only; reads, listings, and capability probes pass through untouched.
type ReadOnlyFileSystem struct {
	fs FileSystem
}

// NewReadOnlyFileSystem creates a read-only view over fs.
func NewReadOnlyFileSystem(fs FileSystem) *ReadOnlyFileSystem {
	return &ReadOnlyFileSystem{fs: fs}
}

// Unwrap returns the wrapped filesystem.
func (r *ReadOnlyFileSystem) Unwrap() FileSystem { return r.fs }

func (r *ReadOnlyFileSystem) reject(op, path string) error {
	return &PathError{Op: op, Path: path, Err: ErrReadOnly}
}

// Read passes through to the wrapped filesystem.
func (r *ReadOnlyFileSystem) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	return r.fs.Read(ctx, path)
}

// ReadAll passes through to the wrapped filesystem.
func (r *ReadOnlyFileSystem) ReadAll(ctx context.Context, path string) ([]byte, error) {
	return r.fs.ReadAll(ctx, path)
}

// FileExists passes through to the wrapped filesystem.
func (r *ReadOnlyFileSystem) FileExists(ctx context.Context, path string) (bool, error) {
	return r.fs.FileExists(ctx, path)
}

// DirExists passes through to the wrapped filesystem.
func (r *ReadOnlyFileSystem) DirExists(ctx context.Context, path string) (bool, error) {
	return r.fs.DirExists(ctx, path)
}

// Stat passes through to the wrapped filesystem.
func (r *ReadOnlyFileSystem) Stat(ctx context.Context, path string) (*FileInfo, error) {
	return r.fs.Stat(ctx, path)
}

// ListContents passes through to the wrapped filesystem.
func (r *ReadOnlyFileSystem) ListContents(ctx context.Context, path string, recursive bool) ([]FileInfo, error) {
	return r.fs.ListContents(ctx, path, recursive)
}

// Write is rejected with ErrReadOnly.
func (r *ReadOnlyFileSystem) Write(ctx context.Context, path string, reader io.Reader, opts ...Option) error {
	return r.reject("write", path)
}

// Delete is rejected with ErrReadOnly.
func (r *ReadOnlyFileSystem) Delete(ctx context.Context, path string) error {
	return r.reject("delete", path)
}

// CreateDir is rejected with ErrReadOnly.
func (r *ReadOnlyFileSystem) CreateDir(ctx context.Context, path string) error {
	return r.reject("createdir", path)
}

// DeleteDir is rejected with ErrReadOnly.
func (r *ReadOnlyFileSystem) DeleteDir(ctx context.Context, path string) error {
	return r.reject("deletedir", path)
}

// Symlink is rejected with ErrReadOnly.
func (r *ReadOnlyFileSystem) Symlink(ctx context.Context, target, link string) error {
	return r.reject("symlink", link)
}

// Readlink passes through when the wrapped filesystem supports symlinks.
func (r *ReadOnlyFileSystem) Readlink(ctx context.Context, path string) (string, error) {
	if sl, ok := r.fs.(CanSymlink); ok {
		return sl.Readlink(ctx, path)
	}
	return "", &PathError{Op: "readlink", Path: path, Err: ErrNotSupported}
}

// SetTimes is rejected with ErrReadOnly.
func (r *ReadOnlyFileSystem) SetTimes(ctx context.Context, path string, atime, mtime time.Time) error {
	return r.reject("settimes", path)
}

// Access passes through when supported.
func (r *ReadOnlyFileSystem) Access(ctx context.Context, path string, mode AccessMode) error {
	if mode&AccessWrite != 0 {
		return r.reject("access", path)
	}
	if checker, ok := r.fs.(CanAccess); ok {
		return checker.Access(ctx, path, mode)
	}
	_, err := r.fs.Stat(ctx, path)
	return err
}

// RealPath passes through when supported.
func (r *ReadOnlyFileSystem) RealPath(ctx context.Context, path string) (string, error) {
	if rp, ok := r.fs.(CanRealPath); ok {
		return rp.RealPath(ctx, path)
	}
	return "", &PathError{Op: "realpath", Path: path, Err: ErrNotSupported}
}

// SameFile passes through when supported.
func (r *ReadOnlyFileSystem) SameFile(ctx context.Context, p1, p2 string) (bool, error) {
	if sf, ok := r.fs.(CanSameFile); ok {
		return sf.SameFile(ctx, p1, p2)
	}
	return false, &PathError{Op: "samefile", Path: p1, Err: ErrNotSupported}
}

// Checksum passes through when supported.
func (r *ReadOnlyFileSystem) Checksum(ctx context.Context, path string, algorithm ChecksumAlgorithm) (string, error) {
	if cs, ok := r.fs.(CanChecksum); ok {
		return cs.Checksum(ctx, path, algorithm)
	}
	return "", &PathError{Op: "checksum", Path: path, Err: ErrNotSupported}
}

// Checksums passes through when supported.
func (r *ReadOnlyFileSystem) Checksums(ctx context.Context, path string, algorithms []ChecksumAlgorithm) (map[ChecksumAlgorithm]string, error) {
	if cs, ok := r.fs.(CanChecksum); ok {
		return cs.Checksums(ctx, path, algorithms)
	}
	return nil, &PathError{Op: "checksums", Path: path, Err: ErrNotSupported}
}

var (
	_ FileSystem  = (*ReadOnlyFileSystem)(nil)
	_ CanSymlink  = (*ReadOnlyFileSystem)(nil)
	_ CanSetTimes = (*ReadOnlyFileSystem)(nil)
	_ CanAccess   = (*ReadOnlyFileSystem)(nil)
)
