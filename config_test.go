package cachesim

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	const document = `{
		"caches": [
			{"name": "L1", "size": 1024, "line_size": 32, "kind": "direct"},
			{"name": "L2", "size": 8192, "line_size": 32, "kind": "4way", "replacement_policy": "lru"},
			{"name": "L3", "size": 65536, "line_size": 64, "kind": "full", "replacement_policy": "lfu"}
		]
	}`
	config, err := ReadConfig(strings.NewReader(document))
	require.NoError(t, err)
	require.Len(t, config.Caches, 3)

	assert.Equal(t, CacheConfig{Name: `L1`, Size: 1024, LineSize: 32, Kind: KindDirect, ReplacementPolicy: PolicyRoundRobin}, config.Caches[0])
	assert.Equal(t, CacheConfig{Name: `L2`, Size: 8192, LineSize: 32, Kind: KindFourWay, ReplacementPolicy: PolicyLeastRecentlyUsed}, config.Caches[1])
	assert.Equal(t, CacheConfig{Name: `L3`, Size: 65536, LineSize: 64, Kind: KindFull, ReplacementPolicy: PolicyLeastFrequentlyUsed}, config.Caches[2])
}

// replacement_policy is optional and defaults to round robin
func TestReadConfig_defaultPolicy(t *testing.T) {
	config, err := ReadConfig(strings.NewReader(`{"caches":[{"name":"L1","size":64,"line_size":8,"kind":"2way"}]}`))
	require.NoError(t, err)
	assert.Equal(t, PolicyRoundRobin, config.Caches[0].ReplacementPolicy)
}

func TestReadConfig_errors(t *testing.T) {
	tests := []struct {
		name     string
		document string
		contains string
	}{
		{
			name:     "invalid_json",
			document: `{`,
			contains: "couldn't parse the config",
		},
		{
			name:     "empty_cache_list",
			document: `{"caches":[]}`,
			contains: "empty",
		},
		{
			name:     "missing_caches_key",
			document: `{}`,
			contains: "empty",
		},
		{
			name:     "unknown_kind",
			document: `{"caches":[{"name":"L1","size":64,"line_size":8,"kind":"3way"}]}`,
			contains: `unknown cache kind "3way"`,
		},
		{
			name:     "unknown_policy",
			document: `{"caches":[{"name":"L1","size":64,"line_size":8,"kind":"2way","replacement_policy":"fifo"}]}`,
			contains: `unknown replacement policy "fifo"`,
		},
		{
			name:     "size_not_power_of_two",
			document: `{"caches":[{"name":"L1","size":48,"line_size":8,"kind":"2way"}]}`,
			contains: "not a power of two",
		},
		{
			name:     "line_size_not_power_of_two",
			document: `{"caches":[{"name":"L1","size":64,"line_size":12,"kind":"2way"}]}`,
			contains: "not a power of two",
		},
		{
			name:     "zero_size",
			document: `{"caches":[{"name":"L1","size":0,"line_size":8,"kind":"2way"}]}`,
			contains: "not a power of two",
		},
		{
			name:     "size_smaller_than_line",
			document: `{"caches":[{"name":"L1","size":8,"line_size":64,"kind":"direct"}]}`,
			contains: "smaller than line size",
		},
		{
			name:     "size_not_multiple_of_line_times_ways",
			document: `{"caches":[{"name":"L1","size":8,"line_size":8,"kind":"2way"}]}`,
			contains: "associativity",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadConfig(strings.NewReader(tt.document))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestCacheConfig_numSets(t *testing.T) {
	tests := []struct {
		name string
		kind CacheKind
		want uint64
	}{
		{
			name: "direct",
			kind: KindDirect,
			want: 32,
		},
		{
			name: "full",
			kind: KindFull,
			want: 1,
		},
		{
			name: "2way",
			kind: KindTwoWay,
			want: 16,
		},
		{
			name: "4way",
			kind: KindFourWay,
			want: 8,
		},
		{
			name: "8way",
			kind: KindEightWay,
			want: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := CacheConfig{Size: 1024, LineSize: 32, Kind: tt.kind}
			require.NoError(t, config.validate())
			assert.Equal(t, tt.want, config.numSets())
		})
	}
}

func TestCacheKind_jsonRoundTrip(t *testing.T) {
	for _, kind := range []CacheKind{KindDirect, KindFull, KindTwoWay, KindFourWay, KindEightWay} {
		data, err := json.Marshal(kind)
		require.NoError(t, err)
		var got CacheKind
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, kind, got)
	}
}

func TestReplacementPolicy_jsonRoundTrip(t *testing.T) {
	for _, policy := range []ReplacementPolicy{PolicyRoundRobin, PolicyLeastRecentlyUsed, PolicyLeastFrequentlyUsed} {
		data, err := json.Marshal(policy)
		require.NoError(t, err)
		var got ReplacementPolicy
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, policy, got)
	}
}
