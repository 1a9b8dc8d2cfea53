package relayfs

import (
	"errors"
	"fmt"
)

// Common filesystem errors
var (
	ErrNotExist      = errors.New("file does not exist")
	ErrExist         = errors.New("file already exists")
	ErrPermission    = errors.New("permission denied")
	ErrClosed        = errors.New("stream already closed")
	ErrNotDir        = errors.New("not a directory")
	ErrIsDir         = errors.New("is a directory")
	ErrNotSupported  = errors.New("operation not supported")
	ErrNotAllowed    = errors.New("operation not allowed")
	ErrInvalidPath   = errors.New("invalid path")
	ErrInvalidURI    = errors.New("invalid remote uri")
	ErrUnknownSystem = errors.New("no known system matches path root")
	// ErrAmbiguousSystem is defensive: system ids are case-distinct, so more
	// than one case-insensitive match should be unreachable.
	ErrAmbiguousSystem = errors.New("more than one known system matches path root")
)

// PathError records an error and the operation and file path that caused it
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *PathError) Unwrap() error {
	return e.Err
}

// IsNotExist reports whether an error indicates that a file or directory
// does not exist
func IsNotExist(err error) bool {
	return errors.Is(err, ErrNotExist)
}

// IsExist reports whether an error indicates that a file or directory
// already exists
func IsExist(err error) bool {
	return errors.Is(err, ErrExist)
}

// IsUnknownSystem reports whether an error indicates that a mount-style path
// did not resolve to any known remote system
func IsUnknownSystem(err error) bool {
	return errors.Is(err, ErrUnknownSystem)
}

// IsNotSupported reports whether an error indicates an operation the backend
// does not implement and for which no fallback is defined
func IsNotSupported(err error) bool {
	return errors.Is(err, ErrNotSupported)
}
