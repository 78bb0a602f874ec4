package cachesim

import (
	"math/bits"
)

type (
	// cache is one level of set-associative cache, generic over its
	// replacement policy so each policy gets its own instantiation and the
	// policy calls on the hot path resolve to a concrete type.
	//
	// The tag array is a single flat buffer indexed as set*setSize + way.
	// Tags are stored in their original high-bit position, unshifted, so a
	// hit is a single mask-and-compare against the raw address with no shift
	// per comparison.
	//
	// A zero tag means the line was never filled. This stands in for a valid
	// bit, and assumes address 0 never appears in a trace (it would fault on
	// most systems anyway). Any address whose tag bits are all zero, that is
	// any address below numSets*lineSize, matches a never-filled line and
	// reads as a hit. See uninitialisedLineCount.
	//
	// Callers are responsible for splitting accesses that span multiple
	// lines; readAndUpdateLine takes a line-aligned address.
	cache[P replacementPolicy] struct {
		setMask    uint64
		tagMask    uint64
		alignMask  uint64
		lineSize   uint64
		setSize    uint64
		lines      []uint64
		policy     P
		alignShift uint8
	}
)

func newCache[P replacementPolicy](size, lineSize, numSets uint64, policy P) *cache[P] {
	alignShift := uint8(bits.TrailingZeros64(lineSize))
	setBits := uint8(bits.TrailingZeros64(numSets))
	numLines := size / lineSize
	return &cache[P]{
		setMask:    (numSets - 1) << alignShift,
		tagMask:    ((1 << (64 - uint32(setBits) - uint32(alignShift))) - 1) << (alignShift + setBits),
		alignMask:  ^(lineSize - 1),
		lineSize:   lineSize,
		setSize:    numLines / numSets,
		lines:      make([]uint64, numLines),
		policy:     policy,
		alignShift: alignShift,
	}
}

// setAndTag decomposes an address into a set index (shifted down, usable as
// an index into the set array) and a tag (masked, not shifted).
func (x *cache[P]) setAndTag(addr uint64) (set, tag uint64) {
	return (addr & x.setMask) >> x.alignShift, addr & x.tagMask
}

// readAndUpdateLine reads the line at addr, returning true on a hit. On both
// hits and misses the replacement policy metadata is updated; on a miss the
// victim line's tag is overwritten. addr must be line-aligned.
func (x *cache[P]) readAndUpdateLine(addr uint64) bool {
	set, tag := x.setAndTag(addr)
	lo := set * x.setSize
	hi := lo + x.setSize
	// linear scan of the set: for 1/2/4/8 ways this beats any structure, and
	// for full associativity the miss path dominates regardless
	for i := lo; i < hi; i++ {
		if x.lines[i] == tag {
			x.policy.updateOnRead(i)
			return true
		}
	}
	line := x.policy.newLine(lo, set, x.setSize)
	x.lines[line] = tag
	return false
}

func (x *cache[P]) uninitialisedLineCount() uint64 {
	var n uint64
	for _, tag := range x.lines {
		if tag == 0 {
			n++
		}
	}
	return n
}

// policyKind discriminates the concrete instantiations of cache.
type policyKind uint8

const (
	kindDirectMapped policyKind = iota
	kindRoundRobin
	kindLeastRecentlyUsed
	kindLeastFrequentlyUsed
)

// genericCache presents the four cache instantiations as one concrete type,
// so the simulator can own a heterogeneous ordered list of levels while every
// hot call still dispatches on a discriminant to a concrete receiver the
// compiler can inline. An interface value here would force dynamic dispatch
// per line read, which is measurably slower on large traces.
type genericCache struct {
	direct *cache[noPolicy]
	rr     *cache[*roundRobin]
	lru    *cache[*leastRecentlyUsed]
	lfu    *cache[*leastFrequentlyUsed]
	kind   policyKind
}

// newGenericCache builds the cache for a single validated level config.
//
// When the derived number of sets equals the number of lines the cache is
// direct-mapped and the configured replacement policy is irrelevant: there is
// exactly one candidate line per set, so the NoPolicy instantiation is chosen
// regardless.
func newGenericCache(config *CacheConfig) genericCache {
	numLines := config.Size / config.LineSize
	numSets := config.numSets()
	if numSets == numLines {
		return genericCache{
			kind:   kindDirectMapped,
			direct: newCache(config.Size, config.LineSize, numSets, noPolicy{}),
		}
	}
	switch config.ReplacementPolicy {
	case PolicyLeastRecentlyUsed:
		return genericCache{
			kind: kindLeastRecentlyUsed,
			lru:  newCache(config.Size, config.LineSize, numSets, newLeastRecentlyUsed(numLines)),
		}
	case PolicyLeastFrequentlyUsed:
		return genericCache{
			kind: kindLeastFrequentlyUsed,
			lfu:  newCache(config.Size, config.LineSize, numSets, newLeastFrequentlyUsed(numLines)),
		}
	default:
		return genericCache{
			kind: kindRoundRobin,
			rr:   newCache(config.Size, config.LineSize, numSets, newRoundRobin(numSets)),
		}
	}
}

func (x *genericCache) readAndUpdateLine(addr uint64) bool {
	switch x.kind {
	case kindDirectMapped:
		return x.direct.readAndUpdateLine(addr)
	case kindRoundRobin:
		return x.rr.readAndUpdateLine(addr)
	case kindLeastRecentlyUsed:
		return x.lru.readAndUpdateLine(addr)
	default:
		return x.lfu.readAndUpdateLine(addr)
	}
}

func (x *genericCache) setAndTag(addr uint64) (set, tag uint64) {
	switch x.kind {
	case kindDirectMapped:
		return x.direct.setAndTag(addr)
	case kindRoundRobin:
		return x.rr.setAndTag(addr)
	case kindLeastRecentlyUsed:
		return x.lru.setAndTag(addr)
	default:
		return x.lfu.setAndTag(addr)
	}
}

func (x *genericCache) alignmentMask() uint64 {
	switch x.kind {
	case kindDirectMapped:
		return x.direct.alignMask
	case kindRoundRobin:
		return x.rr.alignMask
	case kindLeastRecentlyUsed:
		return x.lru.alignMask
	default:
		return x.lfu.alignMask
	}
}

func (x *genericCache) getLineSize() uint64 {
	switch x.kind {
	case kindDirectMapped:
		return x.direct.lineSize
	case kindRoundRobin:
		return x.rr.lineSize
	case kindLeastRecentlyUsed:
		return x.lru.lineSize
	default:
		return x.lfu.lineSize
	}
}

func (x *genericCache) uninitialisedLineCount() uint64 {
	switch x.kind {
	case kindDirectMapped:
		return x.direct.uninitialisedLineCount()
	case kindRoundRobin:
		return x.rr.uninitialisedLineCount()
	case kindLeastRecentlyUsed:
		return x.lru.uninitialisedLineCount()
	default:
		return x.lfu.uninitialisedLineCount()
	}
}
