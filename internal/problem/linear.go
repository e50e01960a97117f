// Package problem holds concrete fitness functions for the genetic engine.
package problem

import (
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/evolution-core/internal/genetic"
)

// LinearEquation scores a chromosome against sum(c[i] * x[i]) = target.
// The score is the signed residual; a residual of zero is ideal. Only the
// first min(len(coefficients), len(genes)) terms are summed.
type LinearEquation[T genetic.Gene] struct {
	coefficients []T
	target       T
}

// NewLinearEquation creates a linear equation fitness.
func NewLinearEquation[T genetic.Gene](coefficients []T, target T) (*LinearEquation[T], error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("linear equation needs at least one coefficient")
	}
	c := make([]T, len(coefficients))
	copy(c, coefficients)
	return &LinearEquation[T]{coefficients: c, target: target}, nil
}

// Arity returns the number of unknowns, which is the chromosome length the
// equation expects.
func (e *LinearEquation[T]) Arity() int {
	return len(e.coefficients)
}

func (e *LinearEquation[T]) Score(c genetic.Chromosome[T]) T {
	n := min(len(e.coefficients), c.Len())
	var sum T
	for i := 0; i < n; i++ {
		sum += e.coefficients[i] * c.Gene(i)
	}
	return sum - e.target
}

func (e *LinearEquation[T]) IsIdeal(score T) bool {
	return score == 0
}

// String renders the equation, e.g. "2*x0 + 23*x1 = 2".
func (e *LinearEquation[T]) String() string {
	var b strings.Builder
	for i, c := range e.coefficients {
		if i > 0 {
			b.WriteString(" + ")
		}
		fmt.Fprintf(&b, "%v*x%d", c, i)
	}
	fmt.Fprintf(&b, " = %v", e.target)
	return b.String()
}
