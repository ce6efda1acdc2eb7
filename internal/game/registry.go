package game

import (
	"sync"

	"github.com/google/uuid"
)

// Registry holds one engine per player. Engines are created lazily on first
// access and live for the life of the process (one per connected player).
// The factory receives the owning player's id so callers can attach
// per-player observers to a freshly built engine.
type Registry struct {
	mu      sync.RWMutex
	engines map[uuid.UUID]*Engine
	factory func(playerID uuid.UUID) *Engine
}

// NewRegistry creates a registry backed by the given engine factory.
func NewRegistry(factory func(playerID uuid.UUID) *Engine) *Registry {
	return &Registry{
		engines: make(map[uuid.UUID]*Engine),
		factory: factory,
	}
}

// Get returns the engine for a player, creating one if absent.
func (r *Registry) Get(playerID uuid.UUID) *Engine {
	r.mu.RLock()
	engine, ok := r.engines[playerID]
	r.mu.RUnlock()
	if ok {
		return engine
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if engine, ok := r.engines[playerID]; ok {
		return engine
	}
	engine = r.factory(playerID)
	r.engines[playerID] = engine
	return engine
}

// Remove drops a player's engine.
func (r *Registry) Remove(playerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.engines, playerID)
}
