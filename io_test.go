package cachesim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), `trace.out`)
	content := trace(0x10, 0x20, 0x30)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	tr, err := OpenTrace(path)
	require.NoError(t, err)
	assert.Equal(t, content, tr.Data)
	require.NoError(t, tr.Close())
	// Close is idempotent
	require.NoError(t, tr.Close())
	assert.Nil(t, tr.Data)
}

func TestOpenTrace_empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), `empty.out`)
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	tr, err := OpenTrace(path)
	require.NoError(t, err)
	assert.Empty(t, tr.Data)
	require.NoError(t, tr.Close())
}

func TestOpenTrace_missingFile(t *testing.T) {
	_, err := OpenTrace(filepath.Join(t.TempDir(), `nope.out`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `couldn't open the trace file`)
}

func TestOpenTrace_endToEndSimulate(t *testing.T) {
	path := filepath.Join(t.TempDir(), `trace.out`)
	require.NoError(t, os.WriteFile(path, trace(0x10, 0x10), 0o644))

	tr, err := OpenTrace(path)
	require.NoError(t, err)
	defer tr.Close()

	simulator := mustSimulator(t, layered(
		CacheConfig{Name: `l1`, Size: 16, LineSize: 4, Kind: KindDirect},
	))
	result, err := simulator.Simulate(tr.Data)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Caches[0].Hits)
	assert.Equal(t, uint64(1), result.Caches[0].Misses)
}
