package genetic

import (
	"fmt"
	"math"
)

// Fitness scores chromosomes. Smaller scores are closer to the ideal; the
// ideal predicate itself is caller-defined.
type Fitness[T Gene] interface {
	// Score returns the fitness value of a chromosome
	Score(c Chromosome[T]) T
	// IsIdeal reports whether a score solves the problem
	IsIdeal(score T) bool
}

// FitnessFunc adapts a scoring function to Fitness. A score of exactly zero
// is ideal.
type FitnessFunc[T Gene] func(c Chromosome[T]) T

func (f FitnessFunc[T]) Score(c Chromosome[T]) T {
	return f(c)
}

func (f FitnessFunc[T]) IsIdeal(score T) bool {
	return score == 0
}

// Selector resamples a population and recognizes ideal chromosomes.
type Selector[T Gene] interface {
	// Select returns a new population of the same size drawn from population
	Select(population []Chromosome[T], rng Rand) ([]Chromosome[T], error)
	// IsIdeal reports whether the chromosome solves the problem
	IsIdeal(c Chromosome[T]) bool
	// Name returns the name of the selection strategy
	Name() string
}

// FitnessSelector implements fitness-proportionate (roulette-wheel) selection
// with replacement. Each chromosome's weight is its inverted score,
// normalized so all weights sum to 1.
//
// Scores of exactly zero cannot be inverted; callers must check for ideal
// chromosomes before calling Select.
type FitnessSelector[T Gene] struct {
	fitness Fitness[T]
}

// NewFitnessSelector creates a roulette-wheel selector over f.
func NewFitnessSelector[T Gene](f Fitness[T]) *FitnessSelector[T] {
	return &FitnessSelector[T]{fitness: f}
}

func (s *FitnessSelector[T]) Name() string {
	return "roulette"
}

func (s *FitnessSelector[T]) IsIdeal(c Chromosome[T]) bool {
	return s.fitness.IsIdeal(s.fitness.Score(c))
}

func (s *FitnessSelector[T]) Select(population []Chromosome[T], rng Rand) ([]Chromosome[T], error) {
	if len(population) == 0 {
		return nil, ErrEmptyPopulation
	}

	scores := make([]float64, len(population))
	for i, c := range population {
		score := float64(s.fitness.Score(c))
		if score == 0 {
			return nil, fmt.Errorf("%w: chromosome %d scored zero", ErrDegenerateFitness, i)
		}
		scores[i] = score
	}

	weights, err := invertNormalize(scores)
	if err != nil {
		return nil, err
	}
	absoluteWeights(weights)

	sampler := NewCascadeSum(weights)
	selected := make([]Chromosome[T], 0, len(population))
	for len(selected) < len(population) {
		i, ok := sampler.Draw(rng)
		if !ok {
			return nil, ErrEmptyPopulation
		}
		selected = append(selected, population[i])
	}
	return selected, nil
}

// invertNormalize maps every value to 1/value and scales the results so they
// sum to 1. Mixed-sign inverses may cancel to a zero sum; they are returned
// unscaled and absoluteWeights rescales them.
func invertNormalize(values []float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no scores", ErrDegenerateFitness)
	}
	inverted := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		inverted[i] = 1 / v
		sum += inverted[i]
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, fmt.Errorf("%w: inverted scores sum to %v", ErrDegenerateFitness, sum)
	}
	if sum == 0 {
		return inverted, nil
	}
	for i := range inverted {
		inverted[i] /= sum
	}
	return inverted, nil
}

// absoluteWeights replaces every weight by its absolute value. Negative
// weights only arise from mixed-sign scores, in which case the absolute
// values no longer sum to 1 and are rescaled.
func absoluteWeights(weights []float64) {
	negative := false
	total := 0.0
	for i, w := range weights {
		if w < 0 {
			negative = true
			weights[i] = -w
		}
		total += weights[i]
	}
	if !negative {
		return
	}
	for i := range weights {
		weights[i] /= total
	}
}
