package sampler

import (
	"math/rand/v2"
	"time"
)

// Source supplies the random deltas consumed by Tick.
type Source interface {
	// Uniform returns a value in [lo, hi).
	Uniform(lo, hi float64) float64
}

type randSource struct {
	r *rand.Rand
}

// NewSource returns a PCG-backed Source. A zero seed picks one from the clock.
func NewSource(seed uint64) Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return randSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s randSource) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.r.Float64()
}
