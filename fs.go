package relayfs

import (
	"context"
	"io"
	"io/fs"
	"time"
)

// FileInfo represents file/directory metadata
type FileInfo struct {
	Name        string
	Path        string
	Size        int64
	Mode        fs.FileMode
	ModTime     time.Time
	AccessTime  time.Time
	IsDir       bool
	ContentType string
	Metadata    map[string]string
}

// AccessMode describes the kind of access checked by CanAccess backends.
type AccessMode int

const (
	// AccessExists checks for bare existence.
	AccessExists AccessMode = 0
	// AccessRead checks read permission.
	AccessRead AccessMode = 1 << iota
	// AccessWrite checks write permission.
	AccessWrite
	// AccessExecute checks execute permission.
	AccessExecute
)

// ============================================================================
// Core Interfaces (Interface Segregation)
// ============================================================================

// FileReader provides read-only filesystem access.
// Use this type in function signatures to enforce read-only at compile time.
type FileReader interface {
	// Read returns a stream for reading file content.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// ReadAll reads entire file into memory. Use for small files only.
	ReadAll(ctx context.Context, path string) ([]byte, error)

	// FileExists checks if a file exists at path.
	FileExists(ctx context.Context, path string) (bool, error)

	// DirExists checks if a directory exists at path.
	DirExists(ctx context.Context, path string) (bool, error)

	// Stat returns file/directory metadata.
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// ListContents lists directory contents.
	// If recursive is true, includes all descendants.
	ListContents(ctx context.Context, path string, recursive bool) ([]FileInfo, error)
}

// FileWriter provides write filesystem operations.
type FileWriter interface {
	// Write writes content from reader to path.
	// Use bytes.NewReader(data) for []byte, os.Open() for local files.
	Write(ctx context.Context, path string, r io.Reader, opts ...Option) error

	// Delete removes a file.
	Delete(ctx context.Context, path string) error

	// CreateDir creates a directory (and parents if needed).
	CreateDir(ctx context.Context, path string) error

	// DeleteDir removes a directory and all contents.
	DeleteDir(ctx context.Context, path string) error
}

// FileSystem provides full read-write filesystem access.
type FileSystem interface {
	FileReader
	FileWriter
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================
// These interfaces allow backends to expose optional capabilities.
// Use type assertion to check if a backend supports a capability:
//
//	if copier, ok := fs.(CanCopy); ok {
//	    copier.Copy(ctx, src, dst)
//	}
//
// The routing provider's dispatch table (route.go) defines which operations
// degrade to a local-backend fallback when the remote backend lacks the
// capability, and which fail with ErrNotSupported.

// CanCopy indicates the filesystem supports native copy operations.
// Native copy is more efficient than read+write for same-backend operations.
type CanCopy interface {
	Copy(ctx context.Context, src, dst string, opts ...Option) error
}

// CanMove indicates the filesystem supports native move/rename operations.
// Native move is more efficient than copy+delete for same-backend operations.
type CanMove interface {
	Move(ctx context.Context, src, dst string, opts ...Option) error
}

// CanSymlink indicates the filesystem supports symbolic links.
type CanSymlink interface {
	// Symlink creates a symbolic link at link pointing to target.
	// The target is stored as-is; broken links are valid.
	Symlink(ctx context.Context, target, link string) error

	// Readlink returns the destination of the named symbolic link.
	Readlink(ctx context.Context, path string) (string, error)
}

// CanLink indicates the filesystem supports hard links.
// The remote execution backend does not implement this; the provider routes
// hard-link creation to the local backend instead.
type CanLink interface {
	Link(ctx context.Context, existing, link string) error
}

// CanAccess indicates the filesystem supports explicit access checks.
type CanAccess interface {
	// Access verifies the caller may access path with the given mode.
	// Returns nil on success, an error wrapping ErrPermission or ErrNotExist
	// otherwise.
	Access(ctx context.Context, path string, mode AccessMode) error
}

// CanSetTimes indicates the filesystem supports updating file timestamps.
// Used by the cross-backend transfer when attribute preservation is requested.
type CanSetTimes interface {
	// SetTimes sets access and modification times.
	// A zero time value preserves the existing value.
	SetTimes(ctx context.Context, path string, atime, mtime time.Time) error
}

// CanSameFile indicates the filesystem can decide whether two of its own
// paths refer to the same underlying file (case folding, symlinks, links).
type CanSameFile interface {
	SameFile(ctx context.Context, p1, p2 string) (bool, error)
}

// CanRealPath indicates the filesystem can resolve a path to its canonical
// form, following symbolic links.
type CanRealPath interface {
	RealPath(ctx context.Context, path string) (string, error)
}

// CanHide indicates the filesystem understands a hidden-file convention.
// Hidden-ness is a host-view concept; the remote backend's native model does
// not represent it.
type CanHide interface {
	IsHidden(ctx context.Context, path string) (bool, error)
}

// ============================================================================
// Checksum Interface
// ============================================================================

// ChecksumAlgorithm represents a supported checksum algorithm
type ChecksumAlgorithm string

const (
	// ChecksumMD5 is the MD5 hash algorithm (128-bit, fast but not cryptographically secure)
	ChecksumMD5 ChecksumAlgorithm = "md5"
	// ChecksumSHA1 is the SHA-1 hash algorithm (160-bit, legacy)
	ChecksumSHA1 ChecksumAlgorithm = "sha1"
	// ChecksumSHA256 is the SHA-256 hash algorithm (256-bit, recommended)
	ChecksumSHA256 ChecksumAlgorithm = "sha256"
	// ChecksumSHA512 is the SHA-512 hash algorithm (512-bit, most secure)
	ChecksumSHA512 ChecksumAlgorithm = "sha512"
	// ChecksumCRC32 is the CRC32 checksum (32-bit, fastest, for integrity only)
	ChecksumCRC32 ChecksumAlgorithm = "crc32"
	// ChecksumXXHash is the xxHash algorithm (64-bit, extremely fast)
	ChecksumXXHash ChecksumAlgorithm = "xxhash"
)

// CanChecksum indicates the filesystem supports integrity verification.
// The cross-backend transfer uses it (when available) to verify copied
// entries when verification is requested.
type CanChecksum interface {
	// Checksum calculates the checksum of a file using the specified algorithm.
	// Returns the checksum as a hex-encoded string.
	Checksum(ctx context.Context, path string, algorithm ChecksumAlgorithm) (string, error)

	// Checksums calculates multiple checksums in a single read pass.
	// Returns a map of algorithm to hex-encoded checksum.
	Checksums(ctx context.Context, path string, algorithms []ChecksumAlgorithm) (map[ChecksumAlgorithm]string, error)
}
