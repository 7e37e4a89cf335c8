package config

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vide-coded/voxel-warfare/internal/geom"
	"github.com/vide-coded/voxel-warfare/internal/sim"
	"github.com/vide-coded/voxel-warfare/internal/world"
	"github.com/vide-coded/voxel-warfare/logging"
)

func TestDefaultTranslatesToSubsystemDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, sim.DefaultLoopConfig(), cfg.Loop())
	assert.Equal(t, world.DefaultConfig(), cfg.WorldSettings())

	engine := cfg.Engine()
	assert.Equal(t, geom.Vec3{}, engine.PlayerSpawn)
	assert.Equal(t, 100.0, engine.PlayerHealth)
	assert.Equal(t, "sword", engine.DefaultWeapon)

	router := cfg.Router()
	assert.Equal(t, []string{"console"}, router.EnabledSinks)
	assert.Equal(t, logging.SeverityInfo, router.MinimumSeverity)
	assert.True(t, router.Console.UseColor)

	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFSAppliesOverrides(t *testing.T) {
	doc := `
listen_addr: ":7777"
simulation:
  tick_rate: 60
world:
  seed: custom-seed
logging:
  level: debug
`
	fsys := fstest.MapFS{
		"server.yaml": &fstest.MapFile{Data: []byte(doc)},
	}

	cfg, err := LoadFS(fsys, "server.yaml")
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.ListenAddr)
	assert.Equal(t, 60, cfg.Simulation.TickRate)
	assert.Equal(t, "custom-seed", cfg.World.Seed)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Keys absent from the file keep their defaults.
	defaults := Default()
	assert.Equal(t, defaults.Simulation.CatchupMaxTicks, cfg.Simulation.CatchupMaxTicks)
	assert.Equal(t, defaults.World.RespawnDelaySeconds, cfg.World.RespawnDelaySeconds)
	assert.Equal(t, defaults.Logging.Sinks, cfg.Logging.Sinks)
	assert.Equal(t, defaults.Spawns, cfg.Spawns)
	assert.Equal(t, logging.SeverityDebug, cfg.Router().MinimumSeverity)
}

func TestLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.ListenAddr = ":9090"
	cfg.Simulation.TickRate = 60
	cfg.Simulation.CommandCapacity = 512
	cfg.World.Seed = "nightly"
	cfg.World.RespawnDelaySeconds = 12.5
	cfg.Player = PlayerConfig{Spawn: Point{X: 3, Z: -4}, Health: 150, Weapon: "axe"}
	cfg.Spawns = []SpawnEntry{{Type: "bandit", Count: 4, Position: Point{X: 20, Z: 20}, Spacing: 6}}
	cfg.Logging = LoggingConfig{
		Sinks:      []string{"console", "json"},
		BufferSize: 1024,
		Level:      "warn",
		JSONPath:   "events.ndjson",
		Verbose:    true,
	}

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	fsys := fstest.MapFS{
		"server.yaml": &fstest.MapFile{Data: []byte("listen_addr: [not: closed")},
	}
	_, err := LoadFS(fsys, "server.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.yaml")
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative tick rate", func(c *Config) { c.Simulation.TickRate = -1 }},
		{"unknown weapon", func(c *Config) { c.Player.Weapon = "halberd" }},
		{"unknown spawn type", func(c *Config) { c.Spawns = []SpawnEntry{{Type: "dragon", Count: 1}} }},
		{"negative spawn count", func(c *Config) { c.Spawns = []SpawnEntry{{Type: "zombie", Count: -2}} }},
		{"unknown sink", func(c *Config) { c.Logging.Sinks = []string{"syslog"} }},
		{"unknown level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestValidationRunsOnLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"server.yaml": &fstest.MapFile{Data: []byte("player:\n  weapon: halberd\n")},
	}
	_, err := LoadFS(fsys, "server.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "halberd")
}

func TestSpawnEntryExpandsPositions(t *testing.T) {
	entry := SpawnEntry{Type: "zombie", Count: 3, Position: Point{X: 10, Z: 5}, Spacing: 5}
	positions := entry.Positions()
	require.Len(t, positions, 3)
	assert.Equal(t, geom.Vec3{X: 10, Z: 5}, positions[0])
	assert.Equal(t, geom.Vec3{X: 15, Z: 5}, positions[1])
	assert.Equal(t, geom.Vec3{X: 20, Z: 5}, positions[2])

	// Zero count still places one enemy.
	single := SpawnEntry{Type: "bandit", Position: Point{Z: -8}}
	require.Len(t, single.Positions(), 1)
	assert.Equal(t, geom.Vec3{Z: -8}, single.Positions()[0])
}

func TestRouterCarriesSinkSettings(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "error"
	cfg.Logging.JSONPath = "/var/log/combat.ndjson"
	cfg.Logging.Verbose = true
	cfg.Logging.Color = false

	router := cfg.Router()
	assert.Equal(t, logging.SeverityError, router.MinimumSeverity)
	assert.Equal(t, "/var/log/combat.ndjson", router.JSON.FilePath)
	assert.True(t, router.Console.Verbose)
	assert.False(t, router.Console.UseColor)
}
