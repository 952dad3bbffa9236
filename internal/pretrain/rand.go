package pretrain

import (
	"math/rand"
	"time"
)

// Rand is the source of randomness for split positions, segment order,
// word selection, and MLM corruption. *math/rand.Rand satisfies it; tests
// inject scripted implementations to assert exact outcomes.
type Rand interface {
	// Intn returns a uniform int in [0, n). Panics if n <= 0.
	Intn(n int) int

	// Float64 returns a uniform float64 in [0, 1).
	Float64() float64

	// Shuffle pseudo-randomizes the order of n elements via swap.
	Shuffle(n int, swap func(i, j int))
}

// newDefaultRand returns a time-seeded source. Each collator owns its own
// source, so ranks draw independent split and order decisions.
func newDefaultRand() Rand {
	//nolint:gosec // G404: math/rand is intentional for data augmentation randomness.
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
