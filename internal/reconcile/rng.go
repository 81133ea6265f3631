package reconcile

import (
	"math/rand"
	"time"
)

// Rand is the randomness capability the engine depends on. Callers inject a
// seeded source in tests so discount and demo-multiplier draws are exact.
type Rand interface {
	// Uniform draws a float64 uniformly in [lo, hi).
	Uniform(lo, hi float64) float64
	// IntBetween draws an int uniformly in [lo, hi], bounds inclusive.
	IntBetween(lo, hi int) int
}

type stdRand struct {
	r *rand.Rand
}

// NewRand returns a Rand backed by math/rand with the given seed.
func NewRand(seed int64) Rand {
	return &stdRand{r: rand.New(rand.NewSource(seed))}
}

// NewTimeSeededRand is the production default.
func NewTimeSeededRand() Rand {
	return NewRand(time.Now().UnixNano())
}

func (s *stdRand) Uniform(lo, hi float64) float64 {
	return lo + s.r.Float64()*(hi-lo)
}

func (s *stdRand) IntBetween(lo, hi int) int {
	return lo + s.r.Intn(hi-lo+1)
}
