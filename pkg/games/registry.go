package games

import (
	"fmt"
	"sync"

	"github.com/fadedpez/sentenza/internal/types"
	"github.com/fadedpez/sentenza/pkg/entities"
)

// Registry manages the adapters available to the engine
type Registry struct {
	adapters map[entities.GameKind]Adapter
	mu       sync.RWMutex
}

// NewRegistry creates a new adapter registry
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[entities.GameKind]Adapter),
	}
}

// Register registers an adapter for its kind
func (r *Registry) Register(adapter Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kind := adapter.Kind()
	if _, exists := r.adapters[kind]; exists {
		return types.NewCoreError(types.ErrInternalError, fmt.Sprintf("adapter for %s is already registered", kind))
	}

	r.adapters[kind] = adapter
	return nil
}

// Get returns the adapter for a given kind
func (r *Registry) Get(kind entities.GameKind) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, exists := r.adapters[kind]
	if !exists {
		return nil, types.NewCoreError(types.ErrGameNotFound, fmt.Sprintf("no adapter registered for kind %s", kind))
	}

	return adapter, nil
}

// Kinds returns the registered game kinds
func (r *Registry) Kinds() []entities.GameKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]entities.GameKind, 0, len(r.adapters))
	for kind := range r.adapters {
		kinds = append(kinds, kind)
	}
	return kinds
}
