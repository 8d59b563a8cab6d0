// Package random defines the pseudo-random source used for question and
// challenge selection so callers can substitute a seeded generator.
package random

import "math/rand/v2"

// Source yields uniform integers in [0, n). n must be > 0.
type Source interface {
	IntN(n int) int
}

// New returns a deterministic source for seed.
func New(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// System returns a source seeded from the runtime's entropy.
func System() Source {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Between returns a uniform integer in [lo, hi]. If hi < lo it returns lo.
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo+1)
}

// Pick returns k distinct indices from [0, n) using a partial Fisher-Yates
// shuffle. k is capped at n.
func Pick(src Source, n, k int) []int {
	if k > n {
		k = n
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + src.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}
