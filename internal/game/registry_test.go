package game

import (
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreatesEnginePerPlayer(t *testing.T) {
	var built []uuid.UUID
	registry := NewRegistry(func(playerID uuid.UUID) *Engine {
		built = append(built, playerID)
		return NewEngine(nil, nil, Config{}, zerolog.New(io.Discard))
	})

	alice := uuid.New()
	bob := uuid.New()

	first := registry.Get(alice)
	second := registry.Get(alice)
	other := registry.Get(bob)

	assert.Same(t, first, second, "repeat lookups must reuse the engine")
	assert.NotSame(t, first, other)
	require.Equal(t, []uuid.UUID{alice, bob}, built, "factory receives the owning player id")
}

func TestRegistryRemoveDropsEngine(t *testing.T) {
	registry := NewRegistry(func(uuid.UUID) *Engine {
		return NewEngine(nil, nil, Config{}, zerolog.New(io.Discard))
	})

	playerID := uuid.New()
	engine := registry.Get(playerID)
	registry.Remove(playerID)

	assert.NotSame(t, engine, registry.Get(playerID), "removed player gets a fresh engine")
}
