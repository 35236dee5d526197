package core

import "math/rand/v2"

// Source is the uniform random source the simulation draws from for
// duration sampling and crash rolls. A single Source is shared by a
// Network and its strategy; two runs constructed with the same seed
// produce identical traces (spec.md §5).
type Source struct {
	r *rand.Rand
}

// NewSource builds a deterministic Source from an integer seed.
func NewSource(seed int64) *Source {
	s := uint64(seed)
	return &Source{r: rand.New(rand.NewPCG(s, s^0x9E3779B97F4A7C15))}
}

// UniformInt returns a uniformly distributed integer in [min, max].
// If max <= min, min is returned.
func (s *Source) UniformInt(min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + int64(s.r.Int64N(max-min+1))
}

// Chance reports whether a Bernoulli trial with the given probability
// (clamped to [0,1]) succeeds.
func (s *Source) Chance(probability float64) bool {
	if probability <= 0 {
		return false
	}
	if probability >= 1 {
		return true
	}
	return s.r.Float64() < probability
}
