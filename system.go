package relayfs

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// SystemID names one remote-system instance. Ids are case-distinct but are
// matched case-insensitively against path roots.
type SystemID string

// EqualFold reports whether segment names this id under case-insensitive
// comparison.
func (id SystemID) EqualFold(segment string) bool {
	return strings.EqualFold(string(id), segment)
}

// SystemEventKind discriminates registry change notifications.
type SystemEventKind int

const (
	// SystemAdded signals a newly registered remote system.
	SystemAdded SystemEventKind = iota
	// SystemRemoved signals a remote system that was torn down.
	SystemRemoved
)

// SystemEvent is one add/remove notification from a SystemRegistry.
type SystemEvent struct {
	Kind SystemEventKind
	ID   SystemID
}

// SystemRegistry enumerates the known remote systems and notifies about
// membership changes. Implementations deliver events to every subscriber;
// delivery order relative to Systems() snapshots is not guaranteed.
type SystemRegistry interface {
	// Systems returns the current enumeration of known system ids.
	Systems(ctx context.Context) ([]SystemID, error)

	// Subscribe registers fn for add/remove events.
	// The returned cancel func unregisters it.
	Subscribe(fn func(SystemEvent)) (cancel func())
}

// StaticRegistry is a SystemRegistry backed by an explicit id list. Add and
// Remove mutate the set and notify subscribers synchronously. Useful for
// tests and for deployments with a fixed system inventory.
type StaticRegistry struct {
	mu      sync.Mutex
	ids     []SystemID
	subs    map[int]func(SystemEvent)
	nextSub int
}

// NewStaticRegistry creates a registry seeded with the given ids.
func NewStaticRegistry(ids ...SystemID) *StaticRegistry {
	r := &StaticRegistry{
		ids:  append([]SystemID(nil), ids...),
		subs: make(map[int]func(SystemEvent)),
	}
	sort.Slice(r.ids, func(i, j int) bool { return r.ids[i] < r.ids[j] })
	return r
}

// Systems implements SystemRegistry.
func (r *StaticRegistry) Systems(ctx context.Context) ([]SystemID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SystemID(nil), r.ids...), nil
}

// Subscribe implements SystemRegistry.
func (r *StaticRegistry) Subscribe(fn func(SystemEvent)) (cancel func()) {
	r.mu.Lock()
	key := r.nextSub
	r.nextSub++
	r.subs[key] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, key)
		r.mu.Unlock()
	}
}

// Add registers a new system id and notifies subscribers.
// Adding an already-present id is a no-op.
func (r *StaticRegistry) Add(id SystemID) {
	r.mu.Lock()
	for _, existing := range r.ids {
		if existing == id {
			r.mu.Unlock()
			return
		}
	}
	r.ids = append(r.ids, id)
	subs := r.snapshotSubs()
	r.mu.Unlock()

	for _, fn := range subs {
		fn(SystemEvent{Kind: SystemAdded, ID: id})
	}
}

// Remove unregisters a system id and notifies subscribers.
// Removing an absent id is a no-op.
func (r *StaticRegistry) Remove(id SystemID) {
	r.mu.Lock()
	found := false
	for i, existing := range r.ids {
		if existing == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		r.mu.Unlock()
		return
	}
	subs := r.snapshotSubs()
	r.mu.Unlock()

	for _, fn := range subs {
		fn(SystemEvent{Kind: SystemRemoved, ID: id})
	}
}

// snapshotSubs copies subscriber funcs. Must be called with lock held.
func (r *StaticRegistry) snapshotSubs() []func(SystemEvent) {
	subs := make([]func(SystemEvent), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	return subs
}
