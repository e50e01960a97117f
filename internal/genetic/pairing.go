package genetic

import "slices"

// PairAndTransform shuffles a copy of items uniformly, then replaces each
// neighbouring pair (0,1), (2,3), ... with pair's outputs. An odd final item
// passes through untouched; inputs of size 0 or 1 are returned unchanged.
func PairAndTransform[E any](items []E, pair func(a, b E, rng Rand) (E, E), rng Rand) []E {
	result := slices.Clone(items)
	if len(result) < 2 {
		return result
	}

	shuffle(result, rng)
	for i := 0; i+1 < len(result); i += 2 {
		result[i], result[i+1] = pair(result[i], result[i+1], rng)
	}
	return result
}

// shuffle is a Fisher-Yates shuffle driven by rng.
func shuffle[E any](items []E, rng Rand) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

func recombinePair[T Gene](a, b Chromosome[T], rng Rand) (Chromosome[T], Chromosome[T]) {
	return a.RecombineAtRandom(b, rng)
}
