// Package quantgen generates float64 streams of a known length with a known
// quantile point: a stream of num values where the value at quantile q is
// exactly x, following rank(x) = QuantileToRank(q, num). It exists to feed
// quantile implementations with data whose true answer is controlled, both
// in tests and in the benchmark harness.
package quantgen

import (
	"fmt"
	"math/rand"

	"github.com/axiomhq/gksummary"
)

// Generator is a finite stream of float64 values.
type Generator interface {
	// Next returns the next value, or false when the stream is exhausted.
	Next() (float64, bool)
	// Len returns the number of values not yet produced.
	Len() int
}

// Drain collects all remaining values of a generator into a slice.
func Drain(g Generator) []float64 {
	out := make([]float64, 0, g.Len())
	for {
		v, ok := g.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

// Random produces num values drawn from (value-1, value+1) in random order,
// with the target value placed exactly at the requested quantile. The same
// seed always produces the same stream.
type Random struct {
	remainingLesser int
	remaining       int // excluding the target value
	value           float64
	published       bool
	rng             *rand.Rand
}

// NewRandom returns a random generator. num must be positive and quantile in
// [0, 1]; violations are programming errors and panic.
func NewRandom(quantile, value float64, num int, seed int64) *Random {
	if num <= 0 {
		panic(fmt.Sprintf("quantgen: num must be positive, got %d", num))
	}
	if quantile < 0 || quantile > 1 {
		panic(fmt.Sprintf("quantgen: quantile must be in [0, 1], got %v", quantile))
	}
	return &Random{
		remainingLesser: int(gksummary.QuantileToRank(quantile, uint64(num))) - 1,
		remaining:       num - 1,
		value:           value,
		rng:             rand.New(rand.NewSource(seed)),
	}
}

// Next implements Generator. At each step it randomly decides between the
// target value, a lesser value and a greater one, weighted by the number of
// remaining draws of each kind so the target lands at its promised rank.
func (g *Random) Next() (float64, bool) {
	if g.remaining == 0 && g.published {
		return 0, false
	}

	if !g.published {
		if g.rng.Float64() < 1/float64(g.remaining+1) {
			g.published = true
			return g.value, true
		}
	}

	ratio := float64(g.remainingLesser) / float64(g.remaining)
	g.remaining--
	if g.rng.Float64() >= ratio {
		// Greater or equal.
		return g.value + g.rng.Float64(), true
	}
	g.remainingLesser--
	return g.value - g.nonZero(), true
}

// Len implements Generator.
func (g *Random) Len() int {
	n := g.remaining
	if !g.published {
		n++
	}
	return n
}

func (g *Random) nonZero() float64 {
	r := g.rng.Float64()
	for r == 0 {
		r = g.rng.Float64()
	}
	return r
}

// Order is the direction of a Sequential generator.
type Order int

const (
	Ascending Order = iota
	Descending
)

// Sequential produces num evenly spaced values in sorted or reverse-sorted
// order, with the target value at the requested quantile. The target is kept
// separate from the offset arithmetic so it is emitted exactly, without
// float rounding.
type Sequential struct {
	value     float64
	position  int
	num       int
	direction float64
	offset    float64
}

// NewSequential returns a sequential generator. num must be positive and
// quantile in [0, 1]; violations are programming errors and panic.
func NewSequential(quantile, value float64, num int, order Order) *Sequential {
	if num <= 0 {
		panic(fmt.Sprintf("quantgen: num must be positive, got %d", num))
	}
	if quantile < 0 || quantile > 1 {
		panic(fmt.Sprintf("quantgen: quantile must be in [0, 1], got %v", quantile))
	}

	rank := int(gksummary.QuantileToRank(quantile, uint64(num)))
	direction, offset := 1.0, float64(-rank+1)
	if order == Descending {
		direction, offset = -1.0, float64(num-rank)
	}
	return &Sequential{
		value:     value,
		num:       num,
		direction: direction,
		offset:    offset,
	}
}

// Next implements Generator.
func (g *Sequential) Next() (float64, bool) {
	if g.position == g.num {
		return 0, false
	}
	r := g.value + g.direction*float64(g.position) + g.offset
	g.position++
	return r, true
}

// Len implements Generator.
func (g *Sequential) Len() int {
	return g.num - g.position
}
