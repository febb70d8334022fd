package problemgen

import (
	"math/rand/v2"
	"time"
)

// Source is the random source every rule draws from. *rand.Rand satisfies
// it. A Source is owned by one session and is not safe for concurrent use.
type Source interface {
	IntN(n int) int
}

// NewSource returns a seeded PCG source. Equal seeds yield equal draws.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewTimeSource returns a source seeded from the wall clock.
func NewTimeSource() *rand.Rand {
	return NewSource(uint64(time.Now().UnixNano()))
}

// between returns a uniform integer in [lo, hi].
func between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo+1)
}

// pick returns a uniform element of items. items must not be empty.
func pick[T any](src Source, items []T) T {
	return items[src.IntN(len(items))]
}

// shuffle permutes items in place (Fisher-Yates).
func shuffle[T any](src Source, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
