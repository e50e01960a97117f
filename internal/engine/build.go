package engine

import (
	"fmt"

	"github.com/GoSim-25-26J-441/evolution-core/internal/genetic"
	"github.com/GoSim-25-26J-441/evolution-core/pkg/config"
)

// BuildDeltas converts the configured mutation deltas. Per-gene deltas take
// precedence over the single shared delta.
func BuildDeltas(m config.Mutation) ([]genetic.Delta[int64], error) {
	specs := m.Deltas
	if len(specs) == 0 {
		specs = []config.DeltaSpec{m.Delta}
	}

	deltas := make([]genetic.Delta[int64], 0, len(specs))
	for i, s := range specs {
		switch {
		case s.IsRange():
			if s.Low == nil || s.High == nil {
				return nil, fmt.Errorf("delta %d: incomplete range", i)
			}
			deltas = append(deltas, genetic.RangeDelta(*s.Low, *s.High))
		case s.Value != nil:
			deltas = append(deltas, genetic.FixedDelta(*s.Value))
		default:
			return nil, fmt.Errorf("delta %d: no value or range", i)
		}
	}
	return deltas, nil
}

// NewSelector returns the selector named by the selection config
func NewSelector(s config.Selection, fitness genetic.Fitness[int64]) (genetic.Selector[int64], error) {
	switch s.Strategy {
	case config.StrategyRoulette, "":
		return genetic.NewFitnessSelector(fitness), nil
	case config.StrategyTournament:
		return genetic.NewTournamentSelector(fitness, s.TournamentSize), nil
	default:
		return nil, fmt.Errorf("unknown selection strategy: %s", s.Strategy)
	}
}

// NewPopulation draws size random chromosomes of the given length
func NewPopulation(size, length int, p config.GeneRange, rng genetic.Rand) []genetic.Chromosome[int64] {
	r := genetic.Range[int64]{Low: p.Low, High: p.High}
	population := make([]genetic.Chromosome[int64], size)
	for i := range population {
		population[i] = genetic.NewRandom(length, r, rng)
	}
	return population
}

// closest returns the chromosome with the smallest absolute score
func closest(population []genetic.Chromosome[int64], fitness genetic.Fitness[int64]) (genetic.Chromosome[int64], int64, bool) {
	if len(population) == 0 {
		return genetic.Chromosome[int64]{}, 0, false
	}
	best := population[0]
	bestScore := fitness.Score(best)
	for _, c := range population[1:] {
		if s := fitness.Score(c); abs(s) < abs(bestScore) {
			best, bestScore = c, s
		}
	}
	return best, bestScore, true
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
