// Package entropy provides the simulation's randomness source.
// Every stochastic decision in the core draws from an injected *Source so a
// fixed seed reproduces an entire run.
package entropy

import (
	"math/rand"
	"sync"
)

// Source wraps a seeded PRNG behind a mutex so the environment tick and
// concurrent observers can share one stream safely.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource creates a Source seeded with the given value.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Float64 returns a random float64 in [0, 1).
func (s *Source) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// IntN returns a random int in [0, n). n must be positive.
func (s *Source) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// IntBetween returns a random int in [lo, hi], inclusive on both ends.
func (s *Source) IntBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Intn(hi-lo+1)
}

// Range returns a random float64 in [lo, hi).
func (s *Source) Range(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Float64()*(hi-lo)
}

// Chance returns true with probability p.
func (s *Source) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.Float64() < p
}

// Shuffle randomizes the order of n elements using the provided swap function.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(n, swap)
}
