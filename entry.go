package gksummary

import "cmp"

// Entry is a single retained observation point of a Summary.
//
// G is the least number of observations covered by this entry counted from
// the previous one, and Delta is the extra uncertainty on the entry's true
// rank. With minRank(i) = sum of G up to i, the true rank of Value lies in
// [minRank(i), minRank(i)+Delta].
type Entry[V cmp.Ordered] struct {
	Value V
	G     uint64
	Delta uint64
}

// exactEntry returns an entry whose rank is exactly known.
func exactEntry[V cmp.Ordered](value V) Entry[V] {
	return Entry[V]{Value: value, G: 1}
}
