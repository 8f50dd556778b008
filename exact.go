package gksummary

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// Exact is the brute-force baseline: it retains every observation and sorts
// lazily on query. It answers with zero error at the cost of linear memory,
// and exists so summaries can be measured against the truth in tests and
// benchmarks.
type Exact[V cmp.Ordered] struct {
	values []V
	sorted bool
}

// NewExact returns an empty exact baseline.
func NewExact[V cmp.Ordered]() *Exact[V] {
	return &Exact[V]{}
}

// Insert records one observation.
func (e *Exact[V]) Insert(value V) error {
	if value != value {
		return fmt.Errorf("%w: %v", ErrInvalidValue, value)
	}
	e.sorted = len(e.values) == 0 || e.sorted && value >= e.values[len(e.values)-1]
	e.values = append(e.values, value)
	return nil
}

// Merge appends all of other's observations, consuming other.
func (e *Exact[V]) Merge(other *Exact[V]) {
	e.values = append(e.values, other.values...)
	e.sorted = len(other.values) == 0 && e.sorted
	other.values = nil
}

// Quantile returns the exact value at rank QuantileToRank(phi, n).
func (e *Exact[V]) Quantile(phi float64) (V, error) {
	var zero V
	if math.IsNaN(phi) || phi < 0 || phi > 1 {
		return zero, fmt.Errorf("%w, got %v", ErrQuantileOutOfRange, phi)
	}
	if len(e.values) == 0 {
		return zero, ErrNoData
	}
	e.sort()
	return e.values[QuantileToRank(phi, uint64(len(e.values)))-1], nil
}

// Count returns the number of recorded observations.
func (e *Exact[V]) Count() uint64 {
	return uint64(len(e.values))
}

// Sorted returns the observations in ascending order. The slice is owned by
// the baseline and must not be modified.
func (e *Exact[V]) Sorted() []V {
	e.sort()
	return e.values
}

func (e *Exact[V]) sort() {
	if !e.sorted {
		slices.Sort(e.values)
		e.sorted = true
	}
}
