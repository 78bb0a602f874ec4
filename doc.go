// Package cachesim implements a configurable, layered CPU cache simulator.
// It consumes a fixed-width memory-access trace and a cache-hierarchy
// configuration, and produces per-level hit/miss counts plus the number of
// accesses that fall through to main memory.
//
// It is a hit-rate model, not a timing or coherence model. The hot path is a
// single-threaded loop over 40-byte trace records; each access is split at
// the outermost level's line granularity and walked down the hierarchy until
// a level hits. Replacement policies (round robin, least recently used, least
// frequently used) are bound to a concrete cache instantiation at
// construction, so the per-line lookup involves no interface dispatch.
package cachesim
