package telemetry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryAddAndStore(t *testing.T) {
	registry := NewRegistry()

	registry.Add("ticks", 1)
	registry.Add("ticks", 2)
	registry.Store("alive", 7)

	require.Equal(t, uint64(3), registry.Load("ticks"))
	require.Equal(t, uint64(7), registry.Load("alive"))
	require.Zero(t, registry.Load("missing"))
}

func TestRegistrySnapshotIsACopy(t *testing.T) {
	registry := NewRegistry()
	registry.Add("ticks", 5)

	snapshot := registry.Snapshot()
	snapshot["ticks"] = 99

	require.Equal(t, uint64(5), registry.Load("ticks"))
}

func TestRegistryConcurrentWriters(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				registry.Add("ticks", 1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, uint64(800), registry.Load("ticks"))
}

func TestNilRegistryIsSafe(t *testing.T) {
	var registry *Registry

	registry.Add("ticks", 1)
	registry.Store("alive", 1)

	require.Zero(t, registry.Load("ticks"))
	require.Nil(t, registry.Snapshot())
}

func TestLoggerFuncForwards(t *testing.T) {
	var got string
	logger := LoggerFunc(func(format string, args ...any) {
		got = format
	})

	logger.Printf("queue depth %d", 3)
	require.Equal(t, "queue depth %d", got)

	// A nil function and the nop logger both swallow output.
	LoggerFunc(nil).Printf("ignored")
	NopLogger().Printf("ignored")
}
