package relayfs

import (
	"fmt"
	"sync"
)

// BackendFactory creates a backend filesystem from the config. For remote
// backends the system id selects the instance; the local backend is created
// with an empty id.
type BackendFactory func(cfg *Config, id SystemID) (FileSystem, error)

var (
	backendFactories = make(map[string]BackendFactory)
	factoryMutex     sync.RWMutex
)

// RegisterBackend registers a backend factory function. Driver packages call
// this from init(); import them for side effect to make a backend available.
func RegisterBackend(name string, factory BackendFactory) {
	factoryMutex.Lock()
	defer factoryMutex.Unlock()
	backendFactories[name] = factory
}

// CreateBackend creates a backend instance by registered name.
func CreateBackend(name string, cfg *Config, id SystemID) (FileSystem, error) {
	factoryMutex.RLock()
	factory, exists := backendFactories[name]
	factoryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("backend %s not registered", name)
	}

	return factory(cfg, id)
}
