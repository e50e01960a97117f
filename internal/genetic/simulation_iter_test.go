package genetic

import (
	"testing"

	"github.com/GoSim-25-26J-441/evolution-core/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulationIterEmitsIdealThenStops(t *testing.T) {
	fitness := linearFitness([]int64{1, 1}, 3)
	ideal := NewChromosome([]int64{2, 1})
	it := NewSimulationIter(unitDelta(), 0.5,
		[]Chromosome[int64]{NewChromosome([]int64{4, 4}), ideal},
		NewFitnessSelector[int64](fitness), utils.NewRandSource(1))

	generation, ok := it.Next()
	require.True(t, ok)
	require.Len(t, generation, 1)
	assert.True(t, generation[0].Equal(ideal))
	assert.True(t, it.Exhausted())
	assert.True(t, it.Solved())

	_, ok = it.Next()
	assert.False(t, ok)
	_, ok = it.Next()
	assert.False(t, ok)
	assert.NoError(t, it.Err())
}

func TestSimulationIterKeepsPopulationSize(t *testing.T) {
	rng := utils.NewRandSource(5)
	it := NewSimulationIter(unitDelta(), 0.1,
		randomPopulation(7, 3, Range[int64]{Low: 0, High: 10}, rng),
		NewFitnessSelector[int64](neverIdeal{}), rng)

	for i := 0; i < 30; i++ {
		generation, ok := it.Next()
		require.True(t, ok)
		assert.Len(t, generation, 7)
	}
	assert.Equal(t, 30, it.Generation())
	assert.False(t, it.Exhausted())
}

func TestSimulationIterMatchesBlockingDriver(t *testing.T) {
	const generations = 20

	rng := utils.NewRandSource(2024)
	initial := randomPopulation(5, 4, Range[int64]{Low: 0, High: 10}, rng)
	var blocking [][]Chromosome[int64]
	_, _, err := NewDefaultSimulator(unitDelta(), 0.25, generations).
		WithProgressReporter(func(_ int, generation []Chromosome[int64]) {
			blocking = append(blocking, generation)
		}).
		Simulate(initial, NewFitnessSelector[int64](neverIdeal{}), rng)
	require.NoError(t, err)

	rng = utils.NewRandSource(2024)
	initial = randomPopulation(5, 4, Range[int64]{Low: 0, High: 10}, rng)
	it := NewSimulationIter(unitDelta(), 0.25, initial, NewFitnessSelector[int64](neverIdeal{}), rng)

	var lazy [][]Chromosome[int64]
	for generation := range it.All() {
		lazy = append(lazy, generation)
		if len(lazy) == generations {
			break
		}
	}

	assert.Equal(t, blocking, lazy)
	assert.False(t, it.Exhausted(), "breaking out of All must not exhaust the iterator")
}

func TestSimulationIterEmptyPopulation(t *testing.T) {
	it := NewSimulationIter(unitDelta(), 0.5, nil, NewFitnessSelector[int64](neverIdeal{}), utils.NewRandSource(1))

	_, ok := it.Next()
	assert.False(t, ok)
	assert.True(t, it.Exhausted())
	assert.False(t, it.Solved())
	assert.ErrorIs(t, it.Err(), ErrEmptyPopulation)
}

func TestSimulationIterDoesNotAliasInitialPopulation(t *testing.T) {
	initial := []Chromosome[int64]{NewChromosome([]int64{3, 3}), NewChromosome([]int64{4, 4})}
	it := NewSimulationIter(unitDelta(), 1, initial, NewFitnessSelector[int64](neverIdeal{}), utils.NewRandSource(1))

	_, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, []int64{3, 3}, initial[0].Genes())
	assert.Equal(t, []int64{4, 4}, initial[1].Genes())
}

func TestSimulationIterSolvesLinearEquation(t *testing.T) {
	const maxGenerations = 20000
	fitness := linearFitness(diophantine, 2)

	solved := 0
	for seed := int64(1); seed <= 5; seed++ {
		rng := utils.NewRandSource(seed)
		it := NewSimulationIter(unitDelta(), 0.09,
			randomPopulation(2, len(diophantine), Range[int64]{Low: 0, High: 10}, rng),
			NewFitnessSelector[int64](fitness), rng)

		var last []Chromosome[int64]
		for generation := range it.All() {
			last = generation
			if it.Generation() >= maxGenerations {
				break
			}
		}
		require.NoError(t, it.Err())
		if !it.Solved() {
			continue
		}
		solved++
		require.Len(t, last, 1)
		assert.Equal(t, int64(0), fitness.Score(last[0]))
	}
	assert.Positive(t, solved, "no seed solved the equation")
}
