package genetic

import (
	"fmt"
	"slices"
	"strings"
)

// Chromosome is an ordered, fixed-length sequence of genes. Operators never
// modify a chromosome; they return new ones.
type Chromosome[T Gene] struct {
	genes []T
}

// NewChromosome creates a chromosome holding a copy of genes.
func NewChromosome[T Gene](genes []T) Chromosome[T] {
	return Chromosome[T]{genes: slices.Clone(genes)}
}

// NewRandom creates a chromosome of the given length with every gene drawn
// uniformly from r.
func NewRandom[T Gene](length int, r Range[T], rng Rand) Chromosome[T] {
	if length < 0 {
		length = 0
	}
	genes := make([]T, length)
	for i := range genes {
		genes[i] = r.Draw(rng)
	}
	return Chromosome[T]{genes: genes}
}

// Len returns the number of genes.
func (c Chromosome[T]) Len() int {
	return len(c.genes)
}

// Gene returns the gene at index i.
func (c Chromosome[T]) Gene(i int) T {
	return c.genes[i]
}

// Genes returns a copy of the genes.
func (c Chromosome[T]) Genes() []T {
	return slices.Clone(c.genes)
}

// Equal reports whether both chromosomes hold the same genes in the same order.
func (c Chromosome[T]) Equal(other Chromosome[T]) bool {
	return slices.Equal(c.genes, other.genes)
}

// RecombineAt performs single-point crossover. The first child takes c's
// genes before point and other's genes from point on; the second child takes
// the opposite halves. A point outside either parent leaves both parents
// unchanged.
func (c Chromosome[T]) RecombineAt(other Chromosome[T], point int) (Chromosome[T], Chromosome[T]) {
	if point < 0 || point >= len(c.genes) || point >= len(other.genes) {
		return c, other
	}

	a := make([]T, 0, len(other.genes))
	a = append(a, c.genes[:point]...)
	a = append(a, other.genes[point:]...)

	b := make([]T, 0, len(c.genes))
	b = append(b, other.genes[:point]...)
	b = append(b, c.genes[point:]...)

	return Chromosome[T]{genes: a}, Chromosome[T]{genes: b}
}

// RecombineAtRandom performs single-point crossover at a point drawn
// uniformly from [0, min(len)-1). The point is 0 when that range is empty.
func (c Chromosome[T]) RecombineAtRandom(other Chromosome[T], rng Rand) (Chromosome[T], Chromosome[T]) {
	point := 0
	if bound := min(len(c.genes), len(other.genes)) - 1; bound > 0 {
		point = rng.Intn(bound)
	}
	return c.RecombineAt(other, point)
}

// Mutate returns a copy in which every gene, independently with probability
// m.Chance, has its delta added or subtracted on a fair coin flip.
func (c Chromosome[T]) Mutate(m Mutation[T], rng Rand) Chromosome[T] {
	genes := slices.Clone(c.genes)
	for i := range genes {
		if !rng.BernoulliBool(m.Chance) {
			continue
		}
		d, ok := m.deltaAt(i)
		if !ok {
			continue
		}
		delta := d.Resolve(rng)
		if rng.BernoulliBool(0.5) {
			genes[i] += delta
		} else {
			genes[i] -= delta
		}
	}
	return Chromosome[T]{genes: genes}
}

// String renders the chromosome as "Chromosome { g0, g1, ..., gn }".
func (c Chromosome[T]) String() string {
	if len(c.genes) == 0 {
		return "Chromosome { }"
	}
	var b strings.Builder
	b.WriteString("Chromosome { ")
	for i, g := range c.genes {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprint(&b, g)
	}
	b.WriteString(" }")
	return b.String()
}
