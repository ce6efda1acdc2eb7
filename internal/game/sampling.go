package game

import "math/rand"

// sampleIndexes draws k distinct indexes uniformly from [0, n) without
// replacement using a partial Fisher-Yates shuffle. When k > n every index is
// returned in random order, so callers degrade to the available pool size
// instead of failing.
func sampleIndexes(rng *rand.Rand, n, k int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}
	if k > n {
		k = n
	}
	indexes := make([]int, n)
	for i := range indexes {
		indexes[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		indexes[i], indexes[j] = indexes[j], indexes[i]
	}
	return indexes[:k]
}

// buildOptions assembles the option set for a round: up to size-1 distractors
// drawn from the pool plus the correct answer, shuffled. The correct
// (city, country) pair appears exactly once and all pairs are distinct. A pool
// with fewer eligible distractors yields a smaller option set.
func buildOptions(rng *rand.Rand, current Destination, pool []Destination, size int) []Option {
	correct := Option{City: current.City, Country: current.Country}

	seen := map[Option]bool{correct: true}
	candidates := make([]Option, 0, len(pool))
	for _, d := range pool {
		if d.ID == current.ID {
			continue
		}
		opt := Option{City: d.City, Country: d.Country}
		if seen[opt] {
			continue
		}
		seen[opt] = true
		candidates = append(candidates, opt)
	}

	options := make([]Option, 0, size)
	for _, idx := range sampleIndexes(rng, len(candidates), size-1) {
		options = append(options, candidates[idx])
	}
	options = append(options, correct)

	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}
