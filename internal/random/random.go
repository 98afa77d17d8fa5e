package random

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the randomness used for word draws and option shuffles
type Source interface {
	Intn(n int) int
}

// Locked is a Source safe for concurrent use by update handlers
type Locked struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Locked source seeded with seed
func New(seed int64) *Locked {
	return &Locked{rnd: rand.New(rand.NewSource(seed))}
}

// NewTimeSeeded returns a Locked source seeded from the clock
func NewTimeSeeded() *Locked {
	return New(time.Now().UnixNano())
}

func (l *Locked) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.Intn(n)
}

// Shuffle performs a Fisher-Yates shuffle of n elements using src
func Shuffle(src Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		swap(i, j)
	}
}
