// Package rng provides the deterministic PRNG stream consumed by seeding
// (spec §4.6, §9's resolution of the "PRNG is not seeded" open question:
// a caller-provided seed is required for reproducibility).
package rng

import "math/rand"

// Stream is a single, caller-seeded uniform real number stream. Unlike
// the teacher's use of the math/rand global functions, every Stream is
// independent so two simulations seeded alike reproduce identical
// particle placement.
type Stream struct {
	r *rand.Rand
}

// New returns a Stream seeded with the given value.
func New(seed int64) *Stream {
	return &Stream{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform value in [0, 1).
func (s *Stream) Float64() float64 {
	return s.r.Float64()
}

// Uniform returns a uniform value in [lo, hi).
func (s *Stream) Uniform(lo, hi float64) float64 {
	return lo + s.Float64()*(hi-lo)
}
