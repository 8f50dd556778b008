package gksummary

import (
	"cmp"
	"slices"
)

// modifiedCompactor implements the merge-friendly variant. Instead of the
// paper's banding pass it compacts opportunistically at every insert (a new
// observation is folded into its right neighbour whenever the neighbour can
// absorb one more rank without exceeding floor(2*epsilon*n)) and falls back
// to a single forward folding pass when the entry count grows past the
// configured limit. Because the invariant only constrains each entry
// locally, the same folding pass can run while interleaving two summaries,
// which is what makes Merge cheap.
type modifiedCompactor[V cmp.Ordered] struct{}

func (c modifiedCompactor[V]) insert(s *Summary[V], value V) {
	s.n++
	gap := s.maxGap()
	pos := s.searchAbove(value)

	switch {
	case len(s.entries) == 0:
		s.entries = append(s.entries, exactEntry(value))

	case pos == 0:
		// New minimum. The previous minimum had an exact rank; if its right
		// neighbour can absorb it, reuse its slot for the new extreme.
		if len(s.entries) > 1 && s.entries[1].G+s.entries[1].Delta+1 <= gap {
			s.entries[1].G++
			s.entries[0].Value = value
		} else {
			s.entries = slices.Insert(s.entries, 0, exactEntry(value))
		}

	case pos == len(s.entries):
		// New maximum, which must keep delta = 0.
		last := &s.entries[len(s.entries)-1]
		if last.G+1 <= gap {
			last.G++
			last.Value = value
		} else {
			s.entries = append(s.entries, exactEntry(value))
		}

	default:
		right := &s.entries[pos]
		if right.G+right.Delta+1 <= gap {
			// The right neighbour's rank interval has room: count the new
			// observation there instead of storing it.
			right.G++
		} else {
			e := Entry[V]{Value: value, G: 1, Delta: right.G + right.Delta - 1}
			s.entries = slices.Insert(s.entries, pos, e)
		}
	}

	if len(s.entries) > s.maxEntries {
		c.compress(s)
	}
}

func (modifiedCompactor[V]) compress(s *Summary[V]) {
	c := newBlockCompressor[V](s.maxGap(), len(s.entries))
	for _, e := range s.entries {
		c.push(e)
	}
	s.entries = c.finish()
}

func (modifiedCompactor[V]) merge(s, other *Summary[V]) {
	s.n += other.n
	if other.epsilon > s.epsilon {
		s.epsilon = other.epsilon
	}

	c := newBlockCompressor[V](s.maxGap(), len(s.entries)+len(other.entries))
	a := incomingState[V]{entries: s.entries}
	b := incomingState[V]{entries: other.entries}

	// Interleave by value. An entry taken from one side while the other side
	// has both contributed before and still holds a later entry must absorb
	// the uncertainty of straddling that entry.
	for a.hasNext() && b.hasNext() {
		var e Entry[V]
		if a.peek().Value < b.peek().Value {
			e = a.pop()
			e.Delta += b.straddleDelta()
		} else {
			e = b.pop()
			e.Delta += a.straddleDelta()
		}
		c.push(e)
	}
	a.drainTo(c)
	b.drainTo(c)
	s.entries = c.finish()
}

// blockCompressor folds a sorted stream of entries into maximal blocks whose
// combined g+delta stays within maxGap. The first entry (the minimum) is
// always committed alone; the running block keeps the largest value seen and
// the summed g. Feeding an already compacted sequence back through commits
// every entry unchanged, which makes compaction idempotent.
type blockCompressor[V cmp.Ordered] struct {
	maxGap  uint64
	out     []Entry[V]
	tail    Entry[V]
	hasTail bool
}

func newBlockCompressor[V cmp.Ordered](maxGap uint64, sizeHint int) *blockCompressor[V] {
	return &blockCompressor[V]{
		maxGap: maxGap,
		out:    make([]Entry[V], 0, sizeHint),
	}
}

func (c *blockCompressor[V]) push(e Entry[V]) {
	switch {
	case c.hasTail:
		if c.tail.G+e.G+e.Delta <= c.maxGap {
			// Grow the current block: e takes over as its tail.
			e.G += c.tail.G
		} else {
			c.out = append(c.out, c.tail)
		}
		c.tail = e
	case len(c.out) == 0:
		// Commit the minimum untouched.
		c.out = append(c.out, e)
	default:
		c.tail, c.hasTail = e, true
	}
}

func (c *blockCompressor[V]) finish() []Entry[V] {
	if c.hasTail {
		c.out = append(c.out, c.tail)
		c.hasTail = false
	}
	return c.out
}

// incomingState walks one side of a merge, tracking whether the side has
// contributed an entry yet.
type incomingState[V cmp.Ordered] struct {
	entries []Entry[V]
	idx     int
	started bool
}

func (st *incomingState[V]) hasNext() bool {
	return st.idx < len(st.entries)
}

func (st *incomingState[V]) peek() Entry[V] {
	return st.entries[st.idx]
}

func (st *incomingState[V]) pop() Entry[V] {
	e := st.entries[st.idx]
	st.idx++
	st.started = true
	return e
}

// straddleDelta is the uncertainty an entry from the other side picks up by
// landing between this side's previous and next entries.
func (st *incomingState[V]) straddleDelta() uint64 {
	if !st.started || !st.hasNext() {
		return 0
	}
	next := st.entries[st.idx]
	return next.G + next.Delta - 1
}

func (st *incomingState[V]) drainTo(c *blockCompressor[V]) {
	for st.hasNext() {
		c.push(st.pop())
	}
}
