package genetic

import "sort"

// CascadeSum holds the running sum of a weight sequence and draws indices
// with probability proportional to each weight. The weights must already sum
// to 1; CascadeSum does not renormalize.
type CascadeSum struct {
	sums []float64
}

// NewCascadeSum computes the prefix sums of weights in one pass.
func NewCascadeSum(weights []float64) *CascadeSum {
	sums := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		total += w
		sums[i] = total
	}
	return &CascadeSum{sums: sums}
}

// Len returns the number of buckets.
func (c *CascadeSum) Len() int {
	return len(c.sums)
}

// Sums returns a copy of the prefix sums.
func (c *CascadeSum) Sums() []float64 {
	out := make([]float64, len(c.sums))
	copy(out, c.sums)
	return out
}

// Draw returns the smallest index whose prefix sum exceeds a uniform value
// in [0, 1). If rounding leaves the total short of the drawn value, the last
// index is returned. The boolean is false only for an empty CascadeSum.
func (c *CascadeSum) Draw(rng Rand) (int, bool) {
	if len(c.sums) == 0 {
		return 0, false
	}
	p := rng.Float64()
	i := sort.Search(len(c.sums), func(i int) bool { return c.sums[i] > p })
	if i == len(c.sums) {
		i = len(c.sums) - 1
	}
	return i, true
}

// Frequencies draws n indices and returns how often each bucket was hit,
// as a fraction of n.
func (c *CascadeSum) Frequencies(n int, rng Rand) []float64 {
	hits := make([]float64, len(c.sums))
	if n <= 0 || len(c.sums) == 0 {
		return hits
	}
	for k := 0; k < n; k++ {
		i, _ := c.Draw(rng)
		hits[i]++
	}
	for i := range hits {
		hits[i] /= float64(n)
	}
	return hits
}
