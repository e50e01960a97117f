package genetic

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// Gene is the set of types a chromosome can carry. Every member supports
// addition, subtraction and conversion to float64.
type Gene interface {
	constraints.Integer | constraints.Float
}

// Rand is the random source consumed by every stochastic operation.
type Rand interface {
	// Float64 returns a uniform value in [0, 1)
	Float64() float64
	// Intn returns a uniform int in [0, n)
	Intn(n int) int
	// Int63n returns a uniform int64 in [0, n)
	Int63n(n int64) int64
	// BernoulliBool returns true with probability p
	BernoulliBool(p float64) bool
}

func isFloat[T Gene]() bool {
	half := 0.5
	return T(half) != 0
}

// Range is a half-open interval [Low, High) of gene values.
type Range[T Gene] struct {
	Low  T
	High T
}

// Draw returns a uniformly distributed value from the range.
// An empty range yields Low.
func (r Range[T]) Draw(rng Rand) T {
	if r.High <= r.Low {
		return r.Low
	}
	if isFloat[T]() {
		v := T(lerp(float64(r.Low), float64(r.High), rng.Float64()))
		if v >= r.High {
			return r.Low
		}
		return v
	}
	return offset(r.Low, uniformUpTo(rng, span(r.Low, r.High)-1))
}

// span is high-low for integer genes computed modulo 2^64, exact for any
// high >= low of any integer width.
func span[T Gene](low, high T) uint64 {
	return uint64(high) - uint64(low)
}

// offset returns low+d with the same wrap-around as span.
func offset[T Gene](low T, d uint64) T {
	return T(uint64(low) + d)
}

// lerp interpolates without forming high-low, which may overflow to Inf.
func lerp(low, high, u float64) float64 {
	return low*(1-u) + high*u
}

// uniformUpTo returns a uniform value in [0, max].
func uniformUpTo(rng Rand, max uint64) uint64 {
	if max < math.MaxInt64 {
		return uint64(rng.Int63n(int64(max) + 1))
	}
	for {
		v := uint64(rng.Int63n(1<<32))<<32 | uint64(rng.Int63n(1<<32))
		if v <= max {
			return v
		}
	}
}

func (r Range[T]) String() string {
	return fmt.Sprintf("[%v, %v)", r.Low, r.High)
}

type deltaKind uint8

const (
	deltaFixed deltaKind = iota
	deltaRandomRange
)

// Delta is the amount a mutation adds to or subtracts from a gene: either a
// fixed value or a closed range resolved to a concrete value at mutation time.
type Delta[T Gene] struct {
	kind  deltaKind
	value T
	low   T
	high  T
}

// FixedDelta returns a delta that always resolves to v.
func FixedDelta[T Gene](v T) Delta[T] {
	return Delta[T]{kind: deltaFixed, value: v}
}

// RangeDelta returns a delta resolved uniformly from [low, high].
func RangeDelta[T Gene](low, high T) Delta[T] {
	if high < low {
		low, high = high, low
	}
	return Delta[T]{kind: deltaRandomRange, low: low, high: high}
}

// IsRange reports whether the delta is resolved from a range.
func (d Delta[T]) IsRange() bool {
	return d.kind == deltaRandomRange
}

// Resolve returns the concrete delta for one mutation.
func (d Delta[T]) Resolve(rng Rand) T {
	if d.kind == deltaFixed {
		return d.value
	}
	if d.high == d.low {
		return d.low
	}
	if isFloat[T]() {
		return T(lerp(float64(d.low), float64(d.high), rng.Float64()))
	}
	return offset(d.low, uniformUpTo(rng, span(d.low, d.high)))
}

func (d Delta[T]) String() string {
	if d.kind == deltaFixed {
		return fmt.Sprintf("%v", d.value)
	}
	return fmt.Sprintf("[%v..%v]", d.low, d.high)
}

// Mutation holds the per-gene deltas and the per-gene mutation probability.
// Deltas[i] applies to gene i; genes past the end of Deltas reuse the last
// entry, so a single delta covers the whole chromosome.
type Mutation[T Gene] struct {
	Deltas []Delta[T]
	Chance float64
}

func (m Mutation[T]) deltaAt(i int) (Delta[T], bool) {
	if len(m.Deltas) == 0 {
		return Delta[T]{}, false
	}
	if i < len(m.Deltas) {
		return m.Deltas[i], true
	}
	return m.Deltas[len(m.Deltas)-1], true
}
