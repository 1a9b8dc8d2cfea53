package relayfs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// KnownSystems holds a process-wide, lock-free snapshot of valid remote
// system ids. The snapshot is an immutable slice replaced wholesale on every
// registry add/remove event; readers never observe a torn set.
//
// Initialization is lazy: the first lookup enumerates the registry and
// subscribes once for the lifetime of the component. Listener delivery is
// asynchronous relative to registry mutation, so readers may briefly observe
// a stale snapshot.
type KnownSystems struct {
	reg SystemRegistry

	once   sync.Once
	snap   atomic.Pointer[[]SystemID]
	mu     sync.Mutex // serializes snapshot recomputation
	cancel func()

	// priming is true while the initial enumeration is in flight; events seen
	// in that window are buffered and replayed over the enumeration result.
	priming bool
	pending []SystemEvent
}

// NewKnownSystems creates the id-set component over the given registry.
func NewKnownSystems(reg SystemRegistry) *KnownSystems {
	k := &KnownSystems{reg: reg}
	empty := []SystemID{}
	k.snap.Store(&empty)
	return k
}

// init subscribes for changes and enumerates the registry. Runs once.
// Subscription comes first so no event can fall between the two; events
// delivered while the enumeration is in flight are replayed over its result.
func (k *KnownSystems) init(ctx context.Context) {
	k.once.Do(func() {
		k.mu.Lock()
		k.priming = true
		k.mu.Unlock()

		k.cancel = k.reg.Subscribe(k.apply)

		ids, err := k.reg.Systems(ctx)

		k.mu.Lock()
		defer k.mu.Unlock()
		k.priming = false
		if err != nil {
			// Keep whatever the buffered events built; retrying the
			// enumeration would need a fresh component.
			k.pending = nil
			return
		}
		next := append([]SystemID(nil), ids...)
		for _, ev := range k.pending {
			next = applyEvent(next, ev)
		}
		k.pending = nil
		k.snap.Store(&next)
	})
}

// apply computes a new snapshot from an add/remove event and swaps it in.
func (k *KnownSystems) apply(ev SystemEvent) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.priming {
		k.pending = append(k.pending, ev)
	}
	next := applyEvent(*k.snap.Load(), ev)
	k.snap.Store(&next)
}

// applyEvent returns ids with ev applied. Add after remove keeps the result
// free of duplicates.
func applyEvent(ids []SystemID, ev SystemEvent) []SystemID {
	next := make([]SystemID, 0, len(ids)+1)
	for _, id := range ids {
		if id != ev.ID {
			next = append(next, id)
		}
	}
	if ev.Kind == SystemAdded {
		next = append(next, ev.ID)
	}
	return next
}

// Snapshot returns the current id set. The returned slice must not be
// modified.
func (k *KnownSystems) Snapshot(ctx context.Context) []SystemID {
	k.init(ctx)
	return *k.snap.Load()
}

// Match resolves a raw path-root segment against the known set,
// case-insensitively. Exactly one id must match: zero matches yield
// ErrUnknownSystem, more than one yields ErrAmbiguousSystem.
func (k *KnownSystems) Match(ctx context.Context, segment string) (SystemID, error) {
	var found SystemID
	matches := 0
	for _, id := range k.Snapshot(ctx) {
		if id.EqualFold(segment) {
			found = id
			matches++
		}
	}
	switch matches {
	case 0:
		return "", fmt.Errorf("%w: %q", ErrUnknownSystem, segment)
	case 1:
		return found, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrAmbiguousSystem, segment)
	}
}

// Close unsubscribes from the registry. Further reads see the last snapshot.
func (k *KnownSystems) Close() {
	if k.cancel != nil {
		k.cancel()
		k.cancel = nil
	}
}

// Resolver extracts and validates a system id from a mount-form path root.
type Resolver struct {
	conv  Convention
	known *KnownSystems
}

// NewResolver creates a resolver for the given convention and id set.
func NewResolver(conv Convention, known *KnownSystems) *Resolver {
	return &Resolver{conv: conv, known: known}
}

// Resolve parses a mount-form path, validates its id segment against the
// known set, and returns the full dual-form coordinate. Resolution failures
// are detected before any backend call is attempted.
func (r *Resolver) Resolve(ctx context.Context, localForm string) (*Coordinate, error) {
	segment, rel, ok := r.conv.SplitMount(localForm)
	if !ok {
		return nil, &PathError{Op: "resolve", Path: localForm, Err: ErrInvalidPath}
	}
	id, err := r.known.Match(ctx, segment)
	if err != nil {
		return nil, &PathError{Op: "resolve", Path: localForm, Err: err}
	}
	return NewCoordinate(r.conv, id, rel), nil
}

// ResolveURI parses a remote-form URI and validates its id segment.
func (r *Resolver) ResolveURI(ctx context.Context, uri string) (*Coordinate, error) {
	segment, rel, err := r.conv.ParseURI(uri)
	if err != nil {
		return nil, &PathError{Op: "resolve", Path: uri, Err: err}
	}
	id, err := r.known.Match(ctx, segment)
	if err != nil {
		return nil, &PathError{Op: "resolve", Path: uri, Err: err}
	}
	return NewCoordinate(r.conv, id, rel), nil
}

// IsRemotePath reports whether localForm is written in the mount convention,
// without validating the id against the known set.
func (r *Resolver) IsRemotePath(localForm string) bool {
	return r.conv.IsMountForm(localForm)
}
