// Package rng provides the seedable pseudo-random source shared by every
// generation stage. Nothing in the pipeline reads global randomness.
package rng

// Numerical Recipes constants, modulus 2^32.
const (
	multiplier = 1664525
	increment  = 1013904223
)

// LCG is a 32-bit linear congruential generator. It is not safe for
// concurrent use; derive one generator per goroutine instead.
type LCG struct {
	state uint32
}

// New returns a generator positioned at seed.
func New(seed uint32) *LCG {
	return &LCG{state: seed}
}

// Seed resets the generator.
func (r *LCG) Seed(seed uint32) {
	r.state = seed
}

// State reports the current internal state.
func (r *LCG) State() uint32 {
	return r.state
}

// Uint32 advances the generator and returns the new state.
func (r *LCG) Uint32() uint32 {
	r.state = r.state*multiplier + increment
	return r.state
}

// Float64 returns a value in [0, 1).
func (r *LCG) Float64() float64 {
	return float64(r.Uint32()) / (1 << 32)
}

// Range returns a value in [lo, hi). When hi <= lo it returns lo without
// advancing the generator.
func (r *LCG) Range(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + (hi-lo)*r.Float64()
}

// Intn returns a value in [0, n). n <= 0 yields 0.
func (r *LCG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	// Use the high bits; the low bits of an LCG have short periods.
	return int((uint64(r.Uint32()) * uint64(n)) >> 32)
}

// IntRange returns a value in [lo, hi], inclusive on both ends.
func (r *LCG) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Derive returns an independent generator for the stream identified by
// index. The parent is not advanced, so derived streams only depend on the
// parent's current state and the index.
func (r *LCG) Derive(index int) *LCG {
	return New(Mix(r.state, uint32(index)))
}

// ForRegion returns the generator used for the region at index under seed.
func ForRegion(seed uint32, index int) *LCG {
	return New(Mix(seed, uint32(index)+1))
}

// Mix combines two words into a well distributed seed (murmur3 finalizer).
func Mix(a, b uint32) uint32 {
	h := a ^ (b * 0x9e3779b9)
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}
