package sim

import (
	"math/rand/v2"
)

// Rand is the source of randomness injected into the simulation.
// All apparent nondeterminism in the core flows through this interface,
// so a fixed-seed source reproduces a run exactly.
type Rand interface {
	// IntN returns a uniform random int in [0, n). n must be > 0.
	IntN(n int) int
	// Shuffle pseudo-randomizes the order of n elements via swap.
	Shuffle(n int, swap func(i, j int))
}

// RNG is a thin deterministic wrapper around math/rand/v2.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// IntN returns a uniform random int in [0, n).
func (r *RNG) IntN(n int) int { return r.r.IntN(n) }

// Shuffle pseudo-randomizes the order of n elements.
func (r *RNG) Shuffle(n int, swap func(i, j int)) { r.r.Shuffle(n, swap) }
