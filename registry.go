package relayfs

import (
	"sync"
)

// Filesystem binds one remote system's backend to the shared local backend.
// Instances are created lazily and owned exclusively by FilesystemRegistry;
// callers holding an evicted instance can keep using it with no further
// effect on the registry.
type Filesystem struct {
	id     SystemID
	conv   Convention
	remote FileSystem
	local  FileSystem
}

// ID returns the owning system id.
func (f *Filesystem) ID() SystemID { return f.id }

// Remote returns the remote backend rooted at the system's filesystem root.
func (f *Filesystem) Remote() FileSystem { return f.remote }

// Local returns the shared local (host) backend.
func (f *Filesystem) Local() FileSystem { return f.local }

// Coordinate builds a dual-form coordinate for a system-relative path,
// bound to this filesystem's system.
func (f *Filesystem) Coordinate(rel string) *Coordinate {
	return NewCoordinate(f.conv, f.id, rel)
}

// FilesystemRegistry memoizes one live Filesystem per system id.
//
// GetOrCreate is an atomic compute-if-absent: concurrent first accesses for
// the same id observe exactly one constructed instance, never a torn or
// duplicate one. Construction (which may dial a remote system) runs outside
// the registry lock; losers of the race block on the winner's result.
type FilesystemRegistry struct {
	mu      sync.Mutex
	entries map[SystemID]*registryEntry
	build   func(SystemID) (*Filesystem, error)
}

type registryEntry struct {
	once sync.Once
	fs   *Filesystem
	err  error
}

// NewFilesystemRegistry creates a registry constructing instances with build.
func NewFilesystemRegistry(build func(SystemID) (*Filesystem, error)) *FilesystemRegistry {
	return &FilesystemRegistry{
		entries: make(map[SystemID]*registryEntry),
		build:   build,
	}
}

// GetOrCreate returns the memoized Filesystem for id, constructing it on
// first access. A failed construction is not memoized; the next call retries.
func (r *FilesystemRegistry) GetOrCreate(id SystemID) (*Filesystem, error) {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if !ok {
		entry = &registryEntry{}
		r.entries[id] = entry
	}
	r.mu.Unlock()

	entry.once.Do(func() {
		entry.fs, entry.err = r.build(id)
	})

	if entry.err != nil {
		r.mu.Lock()
		if r.entries[id] == entry {
			delete(r.entries, id)
		}
		r.mu.Unlock()
		return nil, entry.err
	}
	return entry.fs, nil
}

// Remove evicts the cached instance for id. A subsequent GetOrCreate builds
// a fresh instance; old references held by callers stay usable but detached.
func (r *FilesystemRegistry) Remove(id SystemID) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

// Len reports the number of live entries, for diagnostics.
func (r *FilesystemRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
