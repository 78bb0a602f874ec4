package cachesim

import (
	"golang.org/x/exp/constraints"
)

type (
	// replacementPolicy selects a victim line within a set on miss, and
	// tracks any per-access metadata it needs on hit.
	//
	// Implementations never fail. The cache is generic over the concrete
	// policy type, so these calls are resolved statically per level; the
	// interface exists as a constraint, not as a runtime value.
	replacementPolicy interface {
		// updateOnRead is called with the absolute line index on every hit.
		updateOnRead(index uint64)
		// newLine returns the absolute index of the line to replace.
		// setBase is set * ways, passed in because the cache already has it.
		newLine(setBase, set, ways uint64) uint64
	}

	// noPolicy is used for direct-mapped caches. With one line per set the
	// victim is always the set base, and after inlining the compiler can
	// erase the policy entirely, which is the reason it exists.
	noPolicy struct{}

	// roundRobin keeps a wrap-around counter per set. Victim selection is
	// purely positional, with no recency awareness.
	roundRobin struct {
		counters []uint64
	}

	// leastRecentlyUsed records a logical timestamp per line, stamped from a
	// monotone clock shared across all sets of the level. Tracking absolute
	// logical time means victim selection is a plain argmin, with no relative
	// age arithmetic.
	leastRecentlyUsed struct {
		lastUsed []uint64
		clock    uint64
	}

	// leastFrequentlyUsed keeps a usage counter per line.
	leastFrequentlyUsed struct {
		usage []uint64
	}
)

func newRoundRobin(numSets uint64) *roundRobin {
	return &roundRobin{counters: make([]uint64, numSets)}
}

func newLeastRecentlyUsed(numLines uint64) *leastRecentlyUsed {
	return &leastRecentlyUsed{lastUsed: make([]uint64, numLines)}
}

func newLeastFrequentlyUsed(numLines uint64) *leastFrequentlyUsed {
	return &leastFrequentlyUsed{usage: make([]uint64, numLines)}
}

func (noPolicy) updateOnRead(uint64) {}

func (noPolicy) newLine(setBase, _, _ uint64) uint64 {
	return setBase
}

func (x *roundRobin) updateOnRead(uint64) {}

func (x *roundRobin) newLine(setBase, set, ways uint64) uint64 {
	line := setBase + x.counters[set]
	x.counters[set] = (x.counters[set] + 1) % ways
	return line
}

func (x *leastRecentlyUsed) updateOnRead(index uint64) {
	x.lastUsed[index] = x.clock
	x.clock++
}

func (x *leastRecentlyUsed) newLine(setBase, _, ways uint64) uint64 {
	line := argmin(x.lastUsed, setBase, setBase+ways)
	x.lastUsed[line] = x.clock
	x.clock++
	return line
}

func (x *leastFrequentlyUsed) updateOnRead(index uint64) {
	x.usage[index]++
}

func (x *leastFrequentlyUsed) newLine(setBase, _, ways uint64) uint64 {
	line := argmin(x.usage, setBase, setBase+ways)
	// the access that installs the replacement counts as its first use
	x.usage[line] = 1
	return line
}

// argmin returns the index of the minimum of s[lo:hi], ties broken by lowest
// index. A manual loop rather than a slices helper: the callers are on the
// miss path of fully-associative configurations, where this scan dominates.
func argmin[E constraints.Ordered](s []E, lo, hi uint64) uint64 {
	min := lo
	for i := lo + 1; i < hi; i++ {
		if s[i] < s[min] {
			min = i
		}
	}
	return min
}
