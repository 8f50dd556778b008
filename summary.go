// Package gksummary computes approximate quantiles over large or streaming
// datasets in sublinear memory, with a configurable maximum rank error.
//
// A Summary retains a compressed, sorted subset of the observations seen so
// far, after Greenwald and Khanna, "Space-Efficient Online Computation of
// Quantile Summaries". Two compaction strategies are provided: the classical
// banding scheme of the paper, and a modified local rule whose invariant is
// preserved by a purely local combination step, which makes merging
// independently built summaries cheap. Summaries built on disjoint shards of
// an input can therefore be combined in any association order while keeping
// the configured error bound.
package gksummary

import (
	"cmp"
	"fmt"
	"math"
	"sort"
)

// Strategy selects the compaction scheme fixed at construction time.
type Strategy int

const (
	// Modified compacts with a single-pass local rule and supports cheap,
	// order-insensitive merging. This is the default.
	Modified Strategy = iota
	// Classic is the banding scheme from the original paper, kept as a
	// comparison baseline. Its merge needs a full compaction pass.
	Classic
)

func (st Strategy) String() string {
	switch st {
	case Modified:
		return "modified"
	case Classic:
		return "classic"
	default:
		return fmt.Sprintf("strategy(%d)", int(st))
	}
}

// compactor is the per-strategy engine behind a Summary. Implementations
// own the three operations whose mechanics differ between the variants; the
// query path is shared since it only reads the invariant.
type compactor[V cmp.Ordered] interface {
	insert(s *Summary[V], value V)
	compress(s *Summary[V])
	merge(s, other *Summary[V])
}

// Summary is a mergeable quantile summary with error tolerance epsilon: for
// any phi in [0, 1], the rank of Quantile(phi) differs from phi*n by at most
// epsilon*n. A Summary is not safe for concurrent use; build one per
// goroutine and combine them with Merge.
type Summary[V cmp.Ordered] struct {
	entries  []Entry[V]
	n        uint64
	epsilon  float64
	strategy Strategy
	comp     compactor[V]

	// modified: entry count that triggers a full compaction pass.
	maxEntries int
	// classic: inserts between periodic compaction passes.
	compressEvery uint64
}

// New returns an empty Summary with the given error tolerance, using the
// Modified compaction strategy.
func New[V cmp.Ordered](epsilon float64) (*Summary[V], error) {
	return NewWithStrategy[V](epsilon, Modified)
}

// NewWithStrategy returns an empty Summary with an explicit choice of
// compaction strategy. epsilon must be in (0, 1); strategies outside the
// declared set fail with ErrUnknownStrategy.
func NewWithStrategy[V cmp.Ordered](epsilon float64, strategy Strategy) (*Summary[V], error) {
	if math.IsNaN(epsilon) || epsilon <= 0 || epsilon >= 1 {
		return nil, fmt.Errorf("%w, got %v", ErrEpsilonOutOfRange, epsilon)
	}

	s := &Summary[V]{
		epsilon:  epsilon,
		strategy: strategy,
		// In the worst case (a sorted stream) the structure accumulates all
		// of the first 1/eps entries, half of the next batch and so on, so a
		// small multiple of 1/eps keeps full compaction passes rare.
		maxEntries:    5 * int(math.Ceil(1/epsilon)),
		compressEvery: uint64(math.Ceil(1 / (2 * epsilon))),
	}
	switch strategy {
	case Modified:
		s.comp = modifiedCompactor[V]{}
	case Classic:
		s.comp = classicCompactor[V]{}
	default:
		return nil, fmt.Errorf("%w %d", ErrUnknownStrategy, int(strategy))
	}
	return s, nil
}

// Insert adds one observation. Values that do not order against themselves
// (NaN) are rejected with ErrInvalidValue and the summary is left unchanged.
func (s *Summary[V]) Insert(value V) error {
	if value != value {
		return fmt.Errorf("%w: %v", ErrInvalidValue, value)
	}
	s.comp.insert(s, value)
	return nil
}

// Compress shrinks the summary in place while preserving the error
// invariant. Insert and Merge already compact as needed; an explicit call is
// only useful to minimize memory before long retention. Compress is
// idempotent.
func (s *Summary[V]) Compress() {
	s.comp.compress(s)
}

// Merge absorbs other into s, consuming other. The result covers n_s + n_o
// observations with epsilon = max of the two tolerances, so shards intended
// for merging should be built with the same epsilon. Merging summaries built
// with different strategies fails with ErrIncompatibleMerge.
func (s *Summary[V]) Merge(other *Summary[V]) error {
	if other.strategy != s.strategy {
		return fmt.Errorf("%w: cannot merge %v into %v", ErrIncompatibleMerge, other.strategy, s.strategy)
	}
	s.comp.merge(s, other)
	other.entries = nil
	other.n = 0
	return nil
}

// Quantile returns a value whose rank is within epsilon*n of phi*n.
// Quantile(0) is the exact minimum and Quantile(1) the exact maximum.
func (s *Summary[V]) Quantile(phi float64) (V, error) {
	value, _, err := s.QuantileWithError(phi)
	return value, err
}

// QuantileWithError additionally reports the worst-case rank error of the
// answer as a fraction of n. Among all admissible entries the one with the
// least worst-case error is returned, so the realized error is often well
// under epsilon.
func (s *Summary[V]) QuantileWithError(phi float64) (V, float64, error) {
	var zero V
	if math.IsNaN(phi) || phi < 0 || phi > 1 {
		return zero, 0, fmt.Errorf("%w, got %v", ErrQuantileOutOfRange, phi)
	}
	if s.n == 0 {
		return zero, 0, ErrNoData
	}

	target := QuantileToRank(phi, s.n)
	var (
		minRank uint64
		best    int
		bestErr = uint64(math.MaxUint64)
	)
	for i, e := range s.entries {
		// This entry's rank is in [minRank, maxRank], both inclusive. In the
		// worst case the true target sits at the far end of that interval.
		minRank += e.G
		maxRank := minRank + e.Delta
		midRank := (minRank + maxRank) / 2

		var rankErr uint64
		if target > midRank {
			rankErr = target - minRank
		} else {
			rankErr = maxRank - target
		}
		if rankErr < bestErr {
			best, bestErr = i, rankErr
		}
	}
	return s.entries[best].Value, float64(bestErr) / float64(s.n), nil
}

// Count returns the number of observations absorbed, across inserts and
// merges.
func (s *Summary[V]) Count() uint64 {
	return s.n
}

// Epsilon returns the configured error tolerance.
func (s *Summary[V]) Epsilon() float64 {
	return s.epsilon
}

// Len returns the number of retained entries.
func (s *Summary[V]) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the retained entries in ascending value order.
func (s *Summary[V]) Entries() []Entry[V] {
	out := make([]Entry[V], len(s.entries))
	copy(out, s.entries)
	return out
}

// maxGap is the current bound on g+delta for interior entries:
// floor(2*epsilon*n).
func (s *Summary[V]) maxGap() uint64 {
	return uint64(2 * s.epsilon * float64(s.n))
}

// searchAbove returns the first index whose value is strictly greater than
// value, or len(entries) if there is none.
func (s *Summary[V]) searchAbove(value V) int {
	return sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].Value > value
	})
}
