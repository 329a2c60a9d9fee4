package history

import (
	"log/slog"
	"sync"
)

// Registry hands out the single Store owning each session key.
type Registry struct {
	mu        sync.Mutex
	stores    map[string]*Store
	persister Persister
	logger    *slog.Logger
}

// NewRegistry creates an empty registry backed by the given persister.
func NewRegistry(persister Persister, logger *slog.Logger) *Registry {
	return &Registry{
		stores:    make(map[string]*Store),
		persister: persister,
		logger:    logger,
	}
}

// ForKey returns the store for key, creating and loading it on first
// use.
func (r *Registry) ForKey(key string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, ok := r.stores[key]
	if !ok {
		store = newStore(key, r.persister, r.logger)
		r.stores[key] = store
	}
	return store
}
