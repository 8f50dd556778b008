package gksummary_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/axiomhq/gksummary"
	"github.com/axiomhq/gksummary/quantgen"
)

// consumeGenerator distributes a generator round-robin over the given
// summaries and returns every produced value in ascending order.
func consumeGenerator(t *testing.T, gen quantgen.Generator, summaries []*gksummary.Summary[float64]) []float64 {
	t.Helper()

	values := make([]float64, 0, gen.Len())
	for i := 0; ; i++ {
		v, ok := gen.Next()
		if !ok {
			break
		}
		values = append(values, v)
		if err := summaries[i%len(summaries)].Insert(v); err != nil {
			t.Fatal(err)
		}
	}
	sort.Float64s(values)
	return values
}

// checkAllRanks queries every rank and verifies the answer's true rank is
// within epsilon*n of the requested one, and that the extremes are exact.
func checkAllRanks(t *testing.T, s *gksummary.Summary[float64], values []float64, epsilon float64) {
	t.Helper()
	assert := assert.New(t)

	n := s.Count()
	if !assert.Equal(uint64(len(values)), n) {
		return
	}

	for rank := uint64(1); rank <= n; rank++ {
		queried, err := s.Quantile(gksummary.RankToQuantile(rank, n))
		if err != nil {
			t.Fatal(err)
		}
		pos := sort.SearchFloat64s(values, queried)
		if pos == len(values) || values[pos] != queried {
			t.Fatalf("rank %d: answer %v is not one of the inserted values", rank, queried)
		}
		gotRank := uint64(pos) + 1

		var diff uint64
		if gotRank > rank {
			diff = gotRank - rank
		} else {
			diff = rank - gotRank
		}
		assert.LessOrEqual(float64(diff)/float64(n), epsilon, "rank %d answered %v at rank %d", rank, queried, gotRank)
	}

	min, err := s.Quantile(0)
	assert.NoError(err)
	assert.Equal(values[0], min)

	max, err := s.Quantile(1)
	assert.NoError(err)
	assert.Equal(values[len(values)-1], max)
}

func newSummaries(t *testing.T, epsilon float64, strategy gksummary.Strategy, k int) []*gksummary.Summary[float64] {
	t.Helper()
	out := make([]*gksummary.Summary[float64], k)
	for i := range out {
		s, err := gksummary.NewWithStrategy[float64](epsilon, strategy)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = s
	}
	return out
}

func TestErrorBoundSingle(t *testing.T) {
	for _, strategy := range []gksummary.Strategy{gksummary.Modified, gksummary.Classic} {
		for _, epsilon := range []float64{0.1, 0.2, 0.01} {
			for _, num := range []int{10, 100, 1000} {
				ss := newSummaries(t, epsilon, strategy, 1)
				values := consumeGenerator(t, quantgen.NewRandom(0.5, 17, num, 17), ss)
				checkAllRanks(t, ss[0], values, epsilon)
			}
		}
	}
}

func TestErrorBoundPairMerge(t *testing.T) {
	const epsilon = 0.1

	ss := newSummaries(t, epsilon, gksummary.Modified, 2)
	values := consumeGenerator(t, quantgen.NewRandom(0.5, 17, 10_000, 17), ss)

	if err := ss[0].Merge(ss[1]); err != nil {
		t.Fatal(err)
	}
	checkAllRanks(t, ss[0], values, epsilon)
}

func TestErrorBoundTreeMerge(t *testing.T) {
	const epsilon = 0.1

	ss := newSummaries(t, epsilon, gksummary.Modified, 8)
	values := consumeGenerator(t, quantgen.NewRandom(0.5, 17, 10_000, 17), ss)

	for _, pair := range [][2]int{{0, 1}, {2, 3}, {4, 5}, {6, 7}, {0, 2}, {4, 6}, {0, 4}} {
		if err := ss[pair[0]].Merge(ss[pair[1]]); err != nil {
			t.Fatal(err)
		}
	}
	checkAllRanks(t, ss[0], values, epsilon)
}

func TestErrorBoundListMerge(t *testing.T) {
	const epsilon = 0.1

	ss := newSummaries(t, epsilon, gksummary.Modified, 8)
	values := consumeGenerator(t, quantgen.NewRandom(0.5, 17, 10_000, 17), ss)

	for i := 1; i < len(ss); i++ {
		if err := ss[0].Merge(ss[i]); err != nil {
			t.Fatal(err)
		}
	}
	checkAllRanks(t, ss[0], values, epsilon)
}

// The bound must hold at every point of the stream, not just at the end.
func TestErrorBoundAtCheckpoints(t *testing.T) {
	assert := assert.New(t)
	const epsilon = 0.05

	for _, strategy := range []gksummary.Strategy{gksummary.Modified, gksummary.Classic} {
		s, err := gksummary.NewWithStrategy[float64](epsilon, strategy)
		if err != nil {
			t.Fatal(err)
		}
		exact := gksummary.NewExact[float64]()

		gen := quantgen.NewRandom(0.5, 17, 2000, 17)
		for i := 1; ; i++ {
			v, ok := gen.Next()
			if !ok {
				break
			}
			if err := s.Insert(v); err != nil {
				t.Fatal(err)
			}
			if err := exact.Insert(v); err != nil {
				t.Fatal(err)
			}
			if i%250 != 0 {
				continue
			}

			sorted := exact.Sorted()
			for _, phi := range []float64{0.1, 0.5, 0.9} {
				queried, err := s.Quantile(phi)
				if err != nil {
					t.Fatal(err)
				}
				pos := sort.SearchFloat64s(sorted, queried)
				gotRank := uint64(pos) + 1
				target := gksummary.QuantileToRank(phi, uint64(i))

				var diff uint64
				if gotRank > target {
					diff = gotRank - target
				} else {
					diff = target - gotRank
				}
				assert.LessOrEqual(float64(diff), epsilon*float64(i)+1e-9,
					"strategy %v, %d observations, phi %v", strategy, i, phi)
			}
		}
	}
}

func TestErrorBoundClassicMerge(t *testing.T) {
	const epsilon = 0.1

	ss := newSummaries(t, epsilon, gksummary.Classic, 2)
	values := consumeGenerator(t, quantgen.NewRandom(0.5, 17, 2000, 17), ss)

	if err := ss[0].Merge(ss[1]); err != nil {
		t.Fatal(err)
	}
	checkAllRanks(t, ss[0], values, epsilon)
}
