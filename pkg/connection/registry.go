package connection

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a keyed store of connection configurations.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]Config
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{configs: make(map[string]Config)}
}

// Register adds cfg under name and fails if the name is taken.
func (r *Registry) Register(name string, cfg Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configs[name]; ok {
		return fmt.Errorf("%w: %s", ErrConnectionExists, name)
	}
	r.configs[name] = cfg
	return nil
}

// Set stores cfg under name, replacing any previous entry.
func (r *Registry) Set(name string, cfg Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[name] = cfg
}

// Get returns the configuration registered under name.
func (r *Registry) Get(name string) (Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[name]
	return cfg, ok
}

// Remove deletes name. Removing an unknown name is a no-op.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.configs, name)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered configurations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.configs)
}
