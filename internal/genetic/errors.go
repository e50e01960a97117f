package genetic

import "errors"

var (
	// ErrEmptyPopulation is returned when an operation needs at least one chromosome.
	ErrEmptyPopulation = errors.New("empty population")
	// ErrDegenerateFitness is returned when fitness scores cannot be turned into
	// selection probabilities (a zero score, or inverted scores summing to zero,
	// NaN or infinity).
	ErrDegenerateFitness = errors.New("degenerate fitness")
)
