package gksummary

import (
	"cmp"
	"sync"
)

// ParallelBuild builds one Summary per input shard on its own goroutine and
// combines the results with Reduce. Shards must be disjoint slices of the
// input; no state is shared until the reduction step. All shards use the
// same epsilon and strategy, so the combined bound equals that of a single
// summary built over the whole input.
func ParallelBuild[V cmp.Ordered](epsilon float64, strategy Strategy, shards ...[]V) (*Summary[V], error) {
	if len(shards) == 0 {
		return NewWithStrategy[V](epsilon, strategy)
	}

	summaries := make([]*Summary[V], len(shards))
	errs := make([]error, len(shards))
	var wg sync.WaitGroup
	for i, shard := range shards {
		wg.Add(1)
		go func(i int, shard []V) {
			defer wg.Done()
			s, err := NewWithStrategy[V](epsilon, strategy)
			if err != nil {
				errs[i] = err
				return
			}
			for _, v := range shard {
				if err := s.Insert(v); err != nil {
					errs[i] = err
					return
				}
			}
			summaries[i] = s
		}(i, shard)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return Reduce(summaries...)
}

// Reduce combines summaries pairwise in a balanced tree, consuming every
// input. A sequential left fold is equally correct; the tree shape only
// balances merge work, it does not change the error bound.
func Reduce[V cmp.Ordered](summaries ...*Summary[V]) (*Summary[V], error) {
	if len(summaries) == 0 {
		return nil, ErrNoData
	}

	round := make([]*Summary[V], len(summaries))
	copy(round, summaries)
	for len(round) > 1 {
		next := round[:0:0]
		for i := 0; i < len(round); i += 2 {
			if i+1 == len(round) {
				next = append(next, round[i])
				continue
			}
			if err := round[i].Merge(round[i+1]); err != nil {
				return nil, err
			}
			next = append(next, round[i])
		}
		round = next
	}
	return round[0], nil
}
