package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vide-coded/voxel-warfare/internal/config"
	"github.com/vide-coded/voxel-warfare/internal/telemetry"
	"github.com/vide-coded/voxel-warfare/logging"
)

func TestBuildSinksCreatesConfiguredSinks(t *testing.T) {
	dir := t.TempDir()
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = []string{"console", "json", "memory"}
	cfg.JSON.FilePath = filepath.Join(dir, "events.ndjson")

	named, closers, err := buildSinks(cfg)
	require.NoError(t, err)
	require.Len(t, named, 3)
	require.Equal(t, "console", named[0].Name)
	require.Equal(t, "json", named[1].Name)
	require.Equal(t, "memory", named[2].Name)

	require.Len(t, closers, 1)
	require.FileExists(t, cfg.JSON.FilePath)
	for _, closer := range closers {
		require.NoError(t, closer.Close())
	}
}

func TestBuildSinksRejectsUnknownName(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = []string{"syslog"}

	_, _, err := buildSinks(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "syslog")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	server := config.Default()
	server.ListenAddr = "127.0.0.1:0"
	server.Logging.Sinks = []string{"memory"}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{Server: server, Logger: telemetry.NopLogger()})
	}()

	// Give the listener and loop a few ticks before shutting down.
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
