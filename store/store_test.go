package store

import (
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mshekow/vm-benchmark/parser"
)

func TestNewStoreCreatesSessionDir(t *testing.T) {
	root := t.TempDir()
	st, err := NewStore(root)
	require.NoError(t, err)

	info, err := os.Stat(st.SessionDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPersistAndLoadRaw(t *testing.T) {
	st, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, st.PersistRaw("small", "some log\ncontent"))

	raw, err := st.LoadRaw("small")
	require.NoError(t, err)
	assert.Equal(t, "some log\ncontent", raw)

	_, err = st.LoadRaw("missing")
	require.Error(t, err)
}

func TestOpenSessionReadsEarlierRun(t *testing.T) {
	st, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, st.PersistRaw("small", "log"))

	reopened, err := OpenSession(st.SessionDir())
	require.NoError(t, err)
	raw, err := reopened.LoadRaw("small")
	require.NoError(t, err)
	assert.Equal(t, "log", raw)
}

func TestOpenSessionMissingDir(t *testing.T) {
	_, err := OpenSession("/does/not/exist")
	require.Error(t, err)
}

func TestPutStoresACopy(t *testing.T) {
	st, err := NewStore(t.TempDir())
	require.NoError(t, err)

	rr := &RunResult{
		VMType:  "small",
		State:   StateSucceeded,
		Metrics: []parser.MetricRecord{{Tool: "t", Test: "m", Unit: "u", Value: 1}},
	}
	st.Put(rr)

	// Mutating the original must not affect the stored result
	rr.State = StateFailed
	rr.Metrics[0].Value = 99

	stored := st.All()["small"]
	assert.Equal(t, StateSucceeded, stored.State)
	assert.Equal(t, 1.0, stored.Metrics[0].Value)
}

func TestConcurrentPut(t *testing.T) {
	st, err := NewStore(t.TempDir())
	require.NoError(t, err)

	vmTypes := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	wg := &sync.WaitGroup{}
	for _, vmType := range vmTypes {
		wg.Add(1)
		go func(vmType string) {
			defer wg.Done()
			st.Put(&RunResult{VMType: vmType, State: StateSucceeded})
		}(vmType)
	}
	wg.Wait()

	assert.Len(t, st.All(), len(vmTypes))
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatePending.Terminal())
	assert.False(t, StateRunning.Terminal())
	assert.True(t, StateSucceeded.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.True(t, StateTimedOut.Terminal())
}
