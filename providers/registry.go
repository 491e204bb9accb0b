package providers

import (
	"errors"
	"sort"
	"sync"
)

var (
	// ErrNotRegistered is returned when no adapter is registered for a
	// provider name.
	ErrNotRegistered = errors.New("provider not registered")

	// ErrAlreadyRegistered is returned when registering a duplicate
	// provider.
	ErrAlreadyRegistered = errors.New("provider already registered")
)

// Registry holds the constructed adapters for the closed provider set.
// Adapters are built once, at wiring time, with their credentials
// injected; the registry only hands them out.
type Registry struct {
	mu       sync.RWMutex
	adapters map[Name]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[Name]Adapter),
	}
}

// Register adds an adapter under its own name.
func (r *Registry) Register(adapter Adapter) error {
	if adapter == nil {
		return errors.New("adapter cannot be nil")
	}

	name := adapter.Name()
	if !name.Valid() {
		return errors.New("adapter name outside the supported provider set")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[name]; exists {
		return ErrAlreadyRegistered
	}
	r.adapters[name] = adapter

	return nil
}

// Get retrieves the adapter for a provider name.
func (r *Registry) Get(name Name) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, exists := r.adapters[name]
	if !exists {
		return nil, ErrNotRegistered
	}

	return adapter, nil
}

// Names returns the registered provider names in stable order.
func (r *Registry) Names() []Name {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]Name, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.adapters)
}
