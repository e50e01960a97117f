// Package genetic provides a generic, domain-agnostic genetic algorithm engine.
//
// Candidate solutions are fixed-length chromosomes of numeric genes. A caller
// supplies the gene type, a Fitness that scores chromosomes (smaller is closer
// to ideal) and a random source; the package supplies crossover, mutation,
// fitness-proportionate selection, random pairing and two simulation drivers.
//
// Main Types:
//   - Chromosome: ordered gene sequence with crossover and mutation operators
//   - CascadeSum: prefix-sum structure for weighted random index draws
//   - FitnessSelector: roulette-wheel selection over inverted fitness scores
//   - TournamentSelector: alternate selection strategy
//   - DefaultSimulator: blocking driver bounded by an iteration limit
//   - SimulationIter: lazy driver producing one generation per Next call
//
// Every stochastic operation takes the random source explicitly, so identical
// inputs and an identically seeded source reproduce identical generations.
//
// Usage:
//
//	rng := utils.NewRandSource(42)
//	population := []genetic.Chromosome[int64]{
//	    genetic.NewRandom(4, genetic.Range[int64]{Low: 0, High: 10}, rng),
//	    genetic.NewRandom(4, genetic.Range[int64]{Low: 0, High: 10}, rng),
//	}
//	selector := genetic.NewFitnessSelector[int64](equation)
//	sim := genetic.NewDefaultSimulator([]genetic.Delta[int64]{genetic.FixedDelta[int64](1)}, 0.09, 10000)
//	best, found, err := sim.Simulate(population, selector, rng)
package genetic
