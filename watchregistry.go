package relayfs

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// MountWatchRegistry is a SystemRegistry backed by a directory on the host:
// every subdirectory of the watched root is one known remote system, named
// by the directory. Systems appearing or disappearing under the root are
// reported as add/remove events via fsnotify.
type MountWatchRegistry struct {
	root    string
	watcher *fsnotify.Watcher
	log     *slog.Logger

	mu      sync.Mutex
	ids     map[SystemID]struct{}
	subs    map[int]func(SystemEvent)
	nextSub int

	done      chan struct{}
	closeOnce sync.Once
}

// NewMountWatchRegistry starts watching root for system directories.
func NewMountWatchRegistry(root string, log *slog.Logger) (*MountWatchRegistry, error) {
	if log == nil {
		log = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(root); err != nil {
		watcher.Close()
		return nil, err
	}

	r := &MountWatchRegistry{
		root:    root,
		watcher: watcher,
		log:     log,
		ids:     make(map[SystemID]struct{}),
		subs:    make(map[int]func(SystemEvent)),
		done:    make(chan struct{}),
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			r.ids[SystemID(entry.Name())] = struct{}{}
		}
	}

	go r.watch()
	return r, nil
}

// Systems implements SystemRegistry.
func (r *MountWatchRegistry) Systems(ctx context.Context) ([]SystemID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]SystemID, 0, len(r.ids))
	for id := range r.ids {
		ids = append(ids, id)
	}
	return ids, nil
}

// Subscribe implements SystemRegistry.
func (r *MountWatchRegistry) Subscribe(fn func(SystemEvent)) (cancel func()) {
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

// Close stops watching. Subscribers receive no further events. Safe to call
// more than once.
func (r *MountWatchRegistry) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		err = r.watcher.Close()
	})
	return err
}

// watch forwards fsnotify events as system add/remove notifications.
// Delivery is asynchronous relative to the filesystem mutation.
func (r *MountWatchRegistry) watch() {
	for {
		select {
		case <-r.done:
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if filepath.Dir(event.Name) != r.root {
				continue
			}
			id := SystemID(filepath.Base(event.Name))
			switch {
			case event.Op.Has(fsnotify.Create):
				if info, err := os.Stat(event.Name); err != nil || !info.IsDir() {
					continue
				}
				r.emit(SystemEvent{Kind: SystemAdded, ID: id})
			case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
				r.emit(SystemEvent{Kind: SystemRemoved, ID: id})
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.log.Error("mount watch error", "root", r.root, "error", err)
		}
	}
}

func (r *MountWatchRegistry) emit(ev SystemEvent) {
	r.mu.Lock()
	if ev.Kind == SystemAdded {
		if _, exists := r.ids[ev.ID]; exists {
			r.mu.Unlock()
			return
		}
		r.ids[ev.ID] = struct{}{}
	} else {
		if _, exists := r.ids[ev.ID]; !exists {
			r.mu.Unlock()
			return
		}
		delete(r.ids, ev.ID)
	}
	subs := make([]func(SystemEvent), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

var _ SystemRegistry = (*MountWatchRegistry)(nil)
