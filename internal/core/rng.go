package core

import (
	"math/rand/v2"
	"sync"
	"time"
)

// NewRand returns a deterministic PCG-backed generator for seed.
// A zero seed is replaced by the current time.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// LockedRand is a generator that may be shared by concurrent goroutines.
// Draw order, and therefore the sequence each caller sees, depends on
// scheduling unless a single goroutine uses it.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewLockedRand wraps NewRand(seed) in a mutex.
func NewLockedRand(seed int64) *LockedRand {
	return &LockedRand{r: NewRand(seed)}
}

// Float64 returns a value in [0.0, 1.0).
func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// IntN returns a value in [0, n). n must be positive.
func (l *LockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
