// Package adapterregistry implements ports.AdapterRegistry: a keyed
// dispatch table standing in for the dynamic polymorphism the source
// language would use (spec §9 design notes).
package adapterregistry

import (
	"sync"

	"github.com/cryptoganster/content-pipeline/internal/ports"
)

// Registry is a concurrency-safe map of sourceType -> SourceAdapter.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]ports.SourceAdapter
}

func New() *Registry {
	return &Registry{adapters: make(map[string]ports.SourceAdapter)}
}

// Register binds an adapter to a sourceType key. A second call for the same
// key overwrites the first, per spec §6.
func (r *Registry) Register(sourceType string, adapter ports.SourceAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[sourceType] = adapter
}

func (r *Registry) Resolve(sourceType string) (ports.SourceAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[sourceType]
	return a, ok
}
