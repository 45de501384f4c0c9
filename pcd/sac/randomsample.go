package sac

import (
	"fmt"
	"math/rand"
	"sort"
)

type randomSampler struct {
	rng *rand.Rand
}

// NewRandomSampler returns a Sampler drawing from the given generator.
// The sampler owns rng; it must not be shared with other goroutines.
func NewRandomSampler(rng *rand.Rand) Sampler {
	return &randomSampler{rng: rng}
}

// Sample draws k distinct indices from [0, n) uniformly without replacement
// and returns them in ascending order.
func (s *randomSampler) Sample(n, k int) []int {
	if n < 0 || k < 0 || k > n {
		panic(fmt.Sprintf("sac: invalid sample size %d of %d", k, n))
	}
	out := make([]int, 0, k)
	if k == 0 {
		return out
	}
	// Floyd's algorithm
	selected := make(map[int]struct{}, k)
	for j := n - k; j < n; j++ {
		i := s.rng.Intn(j + 1)
		if _, ok := selected[i]; ok {
			i = j
		}
		selected[i] = struct{}{}
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
