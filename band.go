package gksummary

import (
	"cmp"
	"math"
	"slices"
)

// classicCompactor is a faithful rendition of the original algorithm: plain
// positional inserts, a periodic compaction pass driven by band numbers, and
// a best-effort merge (the paper leaves merging unspecified) that interleaves
// both entry sequences and recompresses. It is retained as the baseline the
// modified variant is measured against.
type classicCompactor[V cmp.Ordered] struct{}

func (c classicCompactor[V]) insert(s *Summary[V], value V) {
	if s.n > 0 && s.n%s.compressEvery == 0 {
		c.compress(s)
	}
	s.n++

	pos := s.searchAbove(value)
	var delta uint64
	if pos > 0 && pos < len(s.entries) {
		// Interior entries start with the worst-case uncertainty allowed at
		// the current count. The extremes always keep delta = 0.
		if gap := s.maxGap(); gap > 0 {
			delta = gap - 1
		}
	}
	s.entries = slices.Insert(s.entries, pos, Entry[V]{Value: value, G: 1, Delta: delta})
}

func (classicCompactor[V]) compress(s *Summary[V]) {
	if len(s.entries) < 3 {
		return
	}
	threshold := s.maxGap()

	// Band numbers depend on the current n, so the table is rebuilt on every
	// pass. This recomputation is the cost the modified variant removes.
	bands := make([]uint64, len(s.entries))
	for i, e := range s.entries {
		bands[i] = band(e.Delta, threshold)
	}

	// Walk pairs in reverse, merging an entry (and its lower-band
	// descendants) into its successor when the bands are compatible and the
	// combined entry stays below the threshold.
	i := len(s.entries) - 1
	for i > 1 {
		i--

		if bands[i] > bands[i+1] {
			continue
		}
		first, gStar := scanDescendants(s.entries, bands, i)
		newG := gStar + s.entries[i+1].G
		if newG+s.entries[i+1].Delta >= threshold {
			continue
		}

		s.entries[i+1].G = newG
		s.entries = slices.Delete(s.entries, first, i+1)
		bands = slices.Delete(bands, first, i+1)
		i = first
	}
}

func (c classicCompactor[V]) merge(s, other *Summary[V]) {
	// Entries that interleave the other side inherit its full worst-case
	// uncertainty, floor(2*eps*n) of that side. Entries below or above every
	// entry of the other side are copied unmodified.
	addSelf := uint64(2 * other.epsilon * float64(other.n))
	addOther := uint64(2 * s.epsilon * float64(s.n))

	merged := make([]Entry[V], 0, len(s.entries)+len(other.entries))
	var i, j int
	var startedSelf, startedOther bool
	for i < len(s.entries) && j < len(other.entries) {
		if s.entries[i].Value < other.entries[j].Value {
			e := s.entries[i]
			i++
			startedSelf = true
			if startedOther {
				e.Delta += addSelf
			}
			merged = append(merged, e)
		} else {
			e := other.entries[j]
			j++
			startedOther = true
			if startedSelf {
				e.Delta += addOther
			}
			merged = append(merged, e)
		}
	}
	merged = append(merged, s.entries[i:]...)
	merged = append(merged, other.entries[j:]...)

	s.entries = merged
	s.n += other.n
	if other.epsilon > s.epsilon {
		s.epsilon = other.epsilon
	}
	// The banding invariant does not survive interleaving on its own; a full
	// pass re-establishes it.
	c.compress(s)
}

// scanDescendants finds the contiguous run of entries before i whose bands
// are strictly lower than entries[i]'s and sums their g values together with
// entries[i]'s. The minimum (index 0) is never included.
func scanDescendants[V cmp.Ordered](entries []Entry[V], bands []uint64, i int) (int, uint64) {
	j := i
	total := entries[i].G
	for j > 1 && bands[j-1] < bands[i] {
		total += entries[j-1].G
		j--
	}
	return j, total
}

// band assigns a delta in [0, p] to a band counted from the right:
//
//	band_0  := delta = p
//	band_a  := p - 2^a - (p mod 2^a) < delta <= p - 2^(a-1) - (p mod 2^(a-1))
//
// for 1 <= a <= floor(log2(p)) + 1. Entries with a high band (small delta,
// seen early) are merged conservatively; entries near the middle of the
// lifetime tolerate coarser merging.
func band(delta, p uint64) uint64 {
	if delta == 0 {
		if p == 0 {
			return 0
		}
		return uint64(math.Log2(float64(p))) + 1
	}

	for a := uint64(0); ; a++ {
		lower := p - (1 << a) - p%(1<<a)
		if delta > lower {
			return a
		}
	}
}
