package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/grove/pkg/domain"
)

// Registry manages named definitions. Names are unique: registering a name twice
// fails with domain.ErrDuplicateSharedDefinition.
type Registry[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// New creates a new empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		items: make(map[string]T),
	}
}

// Register adds a definition to the registry.
func (r *Registry[T]) Register(name string, def T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[name]; exists {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateSharedDefinition, name)
	}
	r.items[name] = def
	return nil
}

// Lookup returns the definition registered under name.
// Returns domain.ErrUnknownSharedDefinition if it is not found.
func (r *Registry[T]) Lookup(name string) (T, error) {
	r.mu.RLock()
	def, ok := r.items[name]
	r.mu.RUnlock()

	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q", domain.ErrUnknownSharedDefinition, name)
	}
	return def, nil
}

// Names returns the registered names in lexical order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
