package genetic

import (
	"fmt"
	"slices"
)

// Simulator runs a blocking genetic search.
type Simulator[T Gene] interface {
	// Simulate evolves initial until an ideal chromosome appears. The boolean
	// is false when the search ends without one.
	Simulate(initial []Chromosome[T], selector Selector[T], rng Rand) (Chromosome[T], bool, error)
}

// ProgressReporter is called after every generation with its 1-based number.
type ProgressReporter[T Gene] func(iteration int, population []Chromosome[T])

// DefaultSimulator repeats, at most iterationLimit times:
//  1. return the first ideal chromosome of the current population, if any
//  2. select a new population
//  3. pair and recombine it at random points
//  4. mutate every child
type DefaultSimulator[T Gene] struct {
	mutation       Mutation[T]
	iterationLimit int
	progress       ProgressReporter[T]
}

// NewDefaultSimulator creates a blocking simulator. deltas holds one delta
// per gene position; a single delta applies to every gene.
func NewDefaultSimulator[T Gene](deltas []Delta[T], chance float64, iterationLimit int) *DefaultSimulator[T] {
	return &DefaultSimulator[T]{
		mutation:       Mutation[T]{Deltas: slices.Clone(deltas), Chance: chance},
		iterationLimit: iterationLimit,
	}
}

// WithProgressReporter sets a callback invoked after every generation
func (s *DefaultSimulator[T]) WithProgressReporter(fn ProgressReporter[T]) *DefaultSimulator[T] {
	s.progress = fn
	return s
}

// IterationLimit returns the maximum number of generations Simulate runs.
func (s *DefaultSimulator[T]) IterationLimit() int {
	return s.iterationLimit
}

func (s *DefaultSimulator[T]) Simulate(initial []Chromosome[T], selector Selector[T], rng Rand) (Chromosome[T], bool, error) {
	if len(initial) == 0 {
		return Chromosome[T]{}, false, ErrEmptyPopulation
	}

	population := initial
	for i := 0; i < s.iterationLimit; i++ {
		if ideal, ok := findIdeal(population, selector); ok {
			return ideal, true, nil
		}

		next, err := nextGeneration(population, selector, s.mutation, rng)
		if err != nil {
			return Chromosome[T]{}, false, fmt.Errorf("generation %d: %w", i+1, err)
		}
		population = next

		if s.progress != nil {
			s.progress(i+1, population)
		}
	}
	return Chromosome[T]{}, false, nil
}

func findIdeal[T Gene](population []Chromosome[T], selector Selector[T]) (Chromosome[T], bool) {
	for _, c := range population {
		if selector.IsIdeal(c) {
			return c, true
		}
	}
	return Chromosome[T]{}, false
}

// nextGeneration is the selection, recombination and mutation transition
// shared by both drivers. The ideal check must run before it: selection
// cannot weigh an ideal (zero) score.
func nextGeneration[T Gene](population []Chromosome[T], selector Selector[T], m Mutation[T], rng Rand) ([]Chromosome[T], error) {
	selected, err := selector.Select(population, rng)
	if err != nil {
		return nil, fmt.Errorf("select (%s): %w", selector.Name(), err)
	}

	children := PairAndTransform[Chromosome[T]](selected, recombinePair[T], rng)
	for i, c := range children {
		children[i] = c.Mutate(m, rng)
	}
	return children, nil
}
