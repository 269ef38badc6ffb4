package rainbowsmoke

import "math/rand/v2"

// Random is a uniform integer source over [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	IntN(n int) int
}

// NewRandom returns a seeded PCG generator. Equal seeds give equal sequences.
func NewRandom(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
