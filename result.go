package cachesim

import (
	"strconv"

	"github.com/joeycumines/go-utilpkg/jsonenc"
)

type (
	// LayeredCacheResult is the accumulated outcome of a simulation. Counters
	// are cumulative across Simulate calls on the same Simulator.
	LayeredCacheResult struct {
		MainMemoryAccesses uint64        `json:"main_memory_accesses"`
		Caches             []CacheResult `json:"caches"`
	}

	// CacheResult holds the counters for one cache level.
	CacheResult struct {
		Name   string `json:"name"`
		Hits   uint64 `json:"hits"`
		Misses uint64 `json:"misses"`
	}
)

// AppendJSON appends the compact JSON encoding of the result to dst and
// returns the extended buffer. Equivalent to encoding/json output, without
// reflection or allocation beyond dst growth; used for log events, where the
// result is attached as a raw JSON field.
func (x *LayeredCacheResult) AppendJSON(dst []byte) []byte {
	dst = append(dst, `{"main_memory_accesses":`...)
	dst = strconv.AppendUint(dst, x.MainMemoryAccesses, 10)
	dst = append(dst, `,"caches":[`...)
	for i := range x.Caches {
		if i != 0 {
			dst = append(dst, ',')
		}
		dst = x.Caches[i].appendJSON(dst)
	}
	return append(dst, ']', '}')
}

func (x *CacheResult) appendJSON(dst []byte) []byte {
	dst = append(dst, `{"name":`...)
	dst = jsonenc.AppendString(dst, x.Name)
	dst = append(dst, `,"hits":`...)
	dst = strconv.AppendUint(dst, x.Hits, 10)
	dst = append(dst, `,"misses":`...)
	dst = strconv.AppendUint(dst, x.Misses, 10)
	return append(dst, '}')
}
