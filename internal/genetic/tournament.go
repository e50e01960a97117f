package genetic

import "math"

// TournamentSelector fills every slot of the new population with the best of
// size entrants drawn uniformly with replacement. "Best" is the smallest
// absolute score.
type TournamentSelector[T Gene] struct {
	fitness Fitness[T]
	size    int
}

// NewTournamentSelector creates a tournament selector. Sizes below 1 default to 2.
func NewTournamentSelector[T Gene](f Fitness[T], size int) *TournamentSelector[T] {
	if size < 1 {
		size = 2
	}
	return &TournamentSelector[T]{fitness: f, size: size}
}

func (s *TournamentSelector[T]) Name() string {
	return "tournament"
}

// Size returns the number of entrants per tournament.
func (s *TournamentSelector[T]) Size() int {
	return s.size
}

func (s *TournamentSelector[T]) IsIdeal(c Chromosome[T]) bool {
	return s.fitness.IsIdeal(s.fitness.Score(c))
}

func (s *TournamentSelector[T]) Select(population []Chromosome[T], rng Rand) ([]Chromosome[T], error) {
	if len(population) == 0 {
		return nil, ErrEmptyPopulation
	}

	distance := make([]float64, len(population))
	for i, c := range population {
		distance[i] = math.Abs(float64(s.fitness.Score(c)))
	}

	selected := make([]Chromosome[T], 0, len(population))
	for len(selected) < len(population) {
		winner := rng.Intn(len(population))
		for k := 1; k < s.size; k++ {
			if entrant := rng.Intn(len(population)); distance[entrant] < distance[winner] {
				winner = entrant
			}
		}
		selected = append(selected, population[winner])
	}
	return selected, nil
}
