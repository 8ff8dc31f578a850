package marketplace

import (
	"fmt"
	"sync"

	"github.com/vendaflow/backend/internal/domain/marketplace"
)

// Registry resolves platform adapters by code
type Registry struct {
	mu       sync.RWMutex
	adapters map[marketplace.PlatformCode]marketplace.Platform
}

// NewRegistry creates a registry with the given adapters
func NewRegistry(adapters ...marketplace.Platform) *Registry {
	r := &Registry{adapters: make(map[marketplace.PlatformCode]marketplace.Platform)}
	for _, a := range adapters {
		r.adapters[a.PlatformCode()] = a
	}
	return r
}

// Register adds an adapter, replacing any previous one for the same code
func (r *Registry) Register(adapter marketplace.Platform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.PlatformCode()] = adapter
}

// GetPlatform returns the adapter for a code
func (r *Registry) GetPlatform(code marketplace.PlatformCode) (marketplace.Platform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if adapter, ok := r.adapters[code]; ok {
		return adapter, nil
	}
	return nil, fmt.Errorf("%w: no adapter registered for %s", marketplace.ErrPlatformRequestFailed, code)
}

var _ marketplace.PlatformRegistry = (*Registry)(nil)
