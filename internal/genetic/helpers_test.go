package genetic

import "math"

// stubRand replays scripted draws.
type stubRand struct {
	floats    []float64
	ints      []int
	intBounds []int
}

func (s *stubRand) Float64() float64 {
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *stubRand) Intn(n int) int {
	s.intBounds = append(s.intBounds, n)
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v
}

func (s *stubRand) Int63n(n int64) int64 {
	return int64(s.Intn(int(n)))
}

func (s *stubRand) BernoulliBool(p float64) bool {
	return s.Float64() < p
}

// linearFitness scores sum(coefficients[i] * genes[i]) - target.
func linearFitness(coefficients []int64, target int64) FitnessFunc[int64] {
	return func(c Chromosome[int64]) int64 {
		n := min(len(coefficients), c.Len())
		sum := int64(0)
		for i := 0; i < n; i++ {
			sum += coefficients[i] * c.Gene(i)
		}
		return sum - target
	}
}

// neverIdeal scores 1 + sum of squared genes and never reports an ideal.
type neverIdeal struct{}

func (neverIdeal) Score(c Chromosome[int64]) int64 {
	score := int64(1)
	for _, g := range c.Genes() {
		score += g * g
	}
	return score
}

func (neverIdeal) IsIdeal(int64) bool { return false }

// constantFitness always returns the same score.
type constantFitness struct {
	score float64
	ideal bool
}

func (f constantFitness) Score(Chromosome[float64]) float64 { return f.score }
func (f constantFitness) IsIdeal(float64) bool              { return f.ideal }

func absInt(v int64) int64 {
	return int64(math.Abs(float64(v)))
}
