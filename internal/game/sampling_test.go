package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampleIndexesDistinct(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 50; trial++ {
		got := sampleIndexes(rng, 10, 3)
		assert.Len(t, got, 3)
		seen := map[int]bool{}
		for _, idx := range got {
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, 10)
			assert.False(t, seen[idx], "index %d drawn twice", idx)
			seen[idx] = true
		}
	}
}

func TestSampleIndexesCapsAtPoolSize(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	got := sampleIndexes(rng, 2, 5)
	assert.Len(t, got, 2)

	assert.Nil(t, sampleIndexes(rng, 0, 3))
	assert.Nil(t, sampleIndexes(rng, 3, 0))
}

func TestBuildOptionsDeduplicatesPairs(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	current := Destination{ID: "d1", City: "Paris", Country: "France"}
	pool := []Destination{
		current,
		{ID: "d2", City: "Paris", Country: "France"}, // duplicate pair under a different id
		{ID: "d3", City: "Rome", Country: "Italy"},
		{ID: "d4", City: "Rome", Country: "Italy"},
		{ID: "d5", City: "Oslo", Country: "Norway"},
	}

	opts := buildOptions(rng, current, pool, 4)

	seen := map[Option]int{}
	for _, opt := range opts {
		seen[opt]++
	}
	for opt, count := range seen {
		assert.Equal(t, 1, count, "pair %v repeated", opt)
	}
	assert.Equal(t, 1, seen[Option{City: "Paris", Country: "France"}])
	assert.Len(t, opts, 3, "only two distinct distractor pairs exist")
}

func TestBuildOptionsAlwaysIncludesAnswer(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	pool := testDestinations()

	for trial := 0; trial < 30; trial++ {
		current := pool[rng.Intn(len(pool))]
		opts := buildOptions(rng, current, pool, 4)
		assert.Len(t, opts, 4)

		found := 0
		for _, opt := range opts {
			if opt.Matches(current) {
				found++
			}
		}
		assert.Equal(t, 1, found)
	}
}
