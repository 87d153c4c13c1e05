package engine

import "math/rand"

// RNG wraps math/rand.Rand behind the few draws the game needs. All
// randomness flows through one seeded source so identical command scripts
// replay identically.
type RNG struct {
	seed int64
	src  *rand.Rand
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all positive values. Mining loot rolls
// use this.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := r.src.Intn(total)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Chance returns true with probability p in [0, 1].
func (r *RNG) Chance(p float64) bool {
	return r.src.Float64() < p
}

// Pick returns a random index in [0, n). Hinter's prophecies use this to
// choose among the incomplete quests.
func (r *RNG) Pick(n int) int {
	return r.src.Intn(n)
}
