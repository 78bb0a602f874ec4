package cachesim

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/bits"
)

type (
	// LayeredCacheConfig is an ordered cache hierarchy, outermost (level 1)
	// first. The simulator assumes line sizes do not decrease with level; the
	// outermost line size sets the stride used to split accesses.
	LayeredCacheConfig struct {
		Caches []CacheConfig `json:"caches"`
	}

	// CacheConfig configures a single cache level.
	CacheConfig struct {
		Name              string            `json:"name"`
		Size              uint64            `json:"size"`
		LineSize          uint64            `json:"line_size"`
		Kind              CacheKind         `json:"kind"`
		ReplacementPolicy ReplacementPolicy `json:"replacement_policy"`
	}

	// CacheKind is the associativity of a cache level.
	CacheKind uint8

	// ReplacementPolicy selects the victim-selection strategy for a set
	// associative level. The zero value is round robin, which makes it the
	// default when the config document omits the field. It has no effect on
	// a direct-mapped level.
	ReplacementPolicy uint8
)

const (
	KindDirect CacheKind = iota
	KindFull
	KindTwoWay
	KindFourWay
	KindEightWay
)

const (
	PolicyRoundRobin ReplacementPolicy = iota
	PolicyLeastRecentlyUsed
	PolicyLeastFrequentlyUsed
)

// ReadConfig decodes and validates a JSON cache hierarchy configuration.
func ReadConfig(r io.Reader) (*LayeredCacheConfig, error) {
	var config LayeredCacheConfig
	if err := json.NewDecoder(r).Decode(&config); err != nil {
		return nil, fmt.Errorf(`cachesim: couldn't parse the config: %w`, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the structural invariants the simulator relies on: a
// non-empty level list, power-of-two sizes, and a total size divisible by
// line size times associativity.
func (x *LayeredCacheConfig) Validate() error {
	if len(x.Caches) == 0 {
		return errors.New(`cachesim: config: the list of caches was empty`)
	}
	for i := range x.Caches {
		if err := x.Caches[i].validate(); err != nil {
			return fmt.Errorf(`cachesim: config: cache %d (%s): %w`, i, x.Caches[i].Name, err)
		}
	}
	return nil
}

func (x *CacheConfig) validate() error {
	if x.Size == 0 || bits.OnesCount64(x.Size) != 1 {
		return fmt.Errorf(`size %d is not a power of two`, x.Size)
	}
	if x.LineSize == 0 || bits.OnesCount64(x.LineSize) != 1 {
		return fmt.Errorf(`line size %d is not a power of two`, x.LineSize)
	}
	if x.Size < x.LineSize {
		return fmt.Errorf(`size %d is smaller than line size %d`, x.Size, x.LineSize)
	}
	numLines := x.Size / x.LineSize
	var ways uint64
	switch x.Kind {
	case KindDirect:
		ways = 1
	case KindFull:
		ways = numLines
	case KindTwoWay:
		ways = 2
	case KindFourWay:
		ways = 4
	case KindEightWay:
		ways = 8
	default:
		return fmt.Errorf(`unknown cache kind %d`, x.Kind)
	}
	if x.Size%(x.LineSize*ways) != 0 {
		return fmt.Errorf(`size %d is not a multiple of line size %d times associativity %d`, x.Size, x.LineSize, ways)
	}
	return nil
}

// numSets derives the set count; the config is assumed validated.
func (x *CacheConfig) numSets() uint64 {
	numLines := x.Size / x.LineSize
	switch x.Kind {
	case KindFull:
		return 1
	case KindTwoWay:
		return numLines / 2
	case KindFourWay:
		return numLines / 4
	case KindEightWay:
		return numLines / 8
	default:
		return numLines
	}
}

var (
	_ json.Unmarshaler = (*CacheKind)(nil)
	_ json.Marshaler   = CacheKind(0)
	_ json.Unmarshaler = (*ReplacementPolicy)(nil)
	_ json.Marshaler   = ReplacementPolicy(0)
)

func (x CacheKind) String() string {
	switch x {
	case KindDirect:
		return `direct`
	case KindFull:
		return `full`
	case KindTwoWay:
		return `2way`
	case KindFourWay:
		return `4way`
	case KindEightWay:
		return `8way`
	default:
		return fmt.Sprintf(`CacheKind(%d)`, uint8(x))
	}
}

func (x CacheKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(x.String())
}

func (x *CacheKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case `direct`:
		*x = KindDirect
	case `full`:
		*x = KindFull
	case `2way`:
		*x = KindTwoWay
	case `4way`:
		*x = KindFourWay
	case `8way`:
		*x = KindEightWay
	default:
		return fmt.Errorf(`cachesim: config: unknown cache kind %q`, s)
	}
	return nil
}

func (x ReplacementPolicy) String() string {
	switch x {
	case PolicyRoundRobin:
		return `rr`
	case PolicyLeastRecentlyUsed:
		return `lru`
	case PolicyLeastFrequentlyUsed:
		return `lfu`
	default:
		return fmt.Sprintf(`ReplacementPolicy(%d)`, uint8(x))
	}
}

func (x ReplacementPolicy) MarshalJSON() ([]byte, error) {
	return json.Marshal(x.String())
}

func (x *ReplacementPolicy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case `rr`:
		*x = PolicyRoundRobin
	case `lru`:
		*x = PolicyLeastRecentlyUsed
	case `lfu`:
		*x = PolicyLeastFrequentlyUsed
	default:
		return fmt.Errorf(`cachesim: config: unknown replacement policy %q`, s)
	}
	return nil
}
