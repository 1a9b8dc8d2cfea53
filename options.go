package relayfs

// Option represents a configuration option for write and transfer operations
type Option func(*Options)

// Options contains all possible options for file operations
type Options struct {
	// ContentType specifies the MIME type of the file
	ContentType string

	// Metadata contains additional metadata for the file
	Metadata map[string]string

	// Overwrite determines whether to overwrite existing files
	Overwrite bool

	// CopyAttributes requests that copy/move preserve source timestamps and
	// metadata on the destination. Without it, attributes follow
	// destination-backend defaults.
	CopyAttributes bool

	// Filter is a glob pattern restricting which entries a tree transfer
	// copies. Empty means all entries.
	Filter string

	// Verify names a checksum algorithm used to verify each transferred
	// entry after it is written. Empty disables verification.
	Verify ChecksumAlgorithm
}

// ApplyOptions collects a set of Option funcs into an Options struct.
// Backends and the transfer routine use it to read caller intent.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithContentType sets the content type of the file
func WithContentType(contentType string) Option {
	return func(o *Options) {
		o.ContentType = contentType
	}
}

// WithMetadata sets additional metadata for the file
func WithMetadata(metadata map[string]string) Option {
	return func(o *Options) {
		o.Metadata = metadata
	}
}

// WithOverwrite enables or disables overwriting existing files
func WithOverwrite(overwrite bool) Option {
	return func(o *Options) {
		o.Overwrite = overwrite
	}
}

// WithCopyAttributes requests attribute preservation during copy/move
func WithCopyAttributes(copy bool) Option {
	return func(o *Options) {
		o.CopyAttributes = copy
	}
}

// WithFilter restricts a tree transfer to entries whose names match the
// given glob pattern
func WithFilter(pattern string) Option {
	return func(o *Options) {
		o.Filter = pattern
	}
}

// WithVerify enables per-entry checksum verification during transfer
func WithVerify(algorithm ChecksumAlgorithm) Option {
	return func(o *Options) {
		o.Verify = algorithm
	}
}
