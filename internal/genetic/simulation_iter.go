package genetic

import (
	"iter"
	"slices"
)

// SimulationIter is the lazy form of DefaultSimulator: every Next call runs
// one generation and returns the resulting population. Once a population
// contains an ideal chromosome, Next returns a one-element population holding
// it and the iterator is exhausted. There is no generation limit; stop
// calling Next to stop the search.
type SimulationIter[T Gene] struct {
	mutation   Mutation[T]
	population []Chromosome[T]
	selector   Selector[T]
	rng        Rand
	generation int
	exhausted  bool
	err        error
}

// NewSimulationIter creates a lazy simulation over initial.
func NewSimulationIter[T Gene](deltas []Delta[T], chance float64, initial []Chromosome[T], selector Selector[T], rng Rand) *SimulationIter[T] {
	return &SimulationIter[T]{
		mutation:   Mutation[T]{Deltas: slices.Clone(deltas), Chance: chance},
		population: slices.Clone(initial),
		selector:   selector,
		rng:        rng,
	}
}

// Next advances one generation. It returns false once the iterator is
// exhausted, either after emitting an ideal chromosome or after an error
// (see Err).
func (s *SimulationIter[T]) Next() ([]Chromosome[T], bool) {
	if s.exhausted {
		return nil, false
	}

	if ideal, ok := findIdeal(s.population, s.selector); ok {
		s.exhausted = true
		s.population = []Chromosome[T]{ideal}
		return []Chromosome[T]{ideal}, true
	}

	next, err := nextGeneration(s.population, s.selector, s.mutation, s.rng)
	if err != nil {
		s.exhausted = true
		s.err = err
		return nil, false
	}
	s.population = next
	s.generation++
	return slices.Clone(next), true
}

// All returns the remaining generations as a sequence.
func (s *SimulationIter[T]) All() iter.Seq[[]Chromosome[T]] {
	return func(yield func([]Chromosome[T]) bool) {
		for {
			generation, ok := s.Next()
			if !ok || !yield(generation) {
				return
			}
		}
	}
}

// Exhausted reports whether Next will produce no further generations.
func (s *SimulationIter[T]) Exhausted() bool {
	return s.exhausted
}

// Solved reports whether the iterator stopped on an ideal chromosome.
func (s *SimulationIter[T]) Solved() bool {
	return s.exhausted && s.err == nil
}

// Generation returns the number of generations produced by selection so far.
func (s *SimulationIter[T]) Generation() int {
	return s.generation
}

// Err returns the error that exhausted the iterator, if any.
func (s *SimulationIter[T]) Err() error {
	return s.err
}
