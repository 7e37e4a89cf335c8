// Package config loads the server's driver configuration from YAML and
// translates it into the per-subsystem settings structs. Gameplay balance
// (enemy stats, weapon presets) is compiled in; only driver-level knobs
// live here.
package config

import (
	"fmt"
	"time"

	"github.com/vide-coded/voxel-warfare/internal/geom"
	"github.com/vide-coded/voxel-warfare/internal/sim"
	"github.com/vide-coded/voxel-warfare/internal/world"
	"github.com/vide-coded/voxel-warfare/logging"
	"github.com/vide-coded/voxel-warfare/stats"
)

const defaultSpawnSpacing = 4.0

// Config is the full driver configuration. Zero values fall back to the
// subsystem defaults during translation, so a partial file is always safe.
type Config struct {
	ListenAddr string           `yaml:"listen_addr"`
	Simulation SimulationConfig `yaml:"simulation"`
	World      WorldConfig      `yaml:"world"`
	Player     PlayerConfig     `yaml:"player"`
	Spawns     []SpawnEntry     `yaml:"spawns"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimulationConfig tunes the fixed-timestep loop and its command intake.
type SimulationConfig struct {
	TickRate        int `yaml:"tick_rate"`
	CatchupMaxTicks int `yaml:"catchup_max_ticks"`
	CommandCapacity int `yaml:"command_capacity"`
	PerActorLimit   int `yaml:"per_actor_limit"`
	WarningStep     int `yaml:"warning_step"`
}

// WorldConfig seeds determinism and respawn behavior.
type WorldConfig struct {
	Seed                string  `yaml:"seed"`
	RespawnDelaySeconds float64 `yaml:"respawn_delay_seconds"`
	PatrolRadius        float64 `yaml:"patrol_radius"`
	PatrolPointCount    int     `yaml:"patrol_point_count"`
}

// PlayerConfig places the player and picks the starting weapon preset.
type PlayerConfig struct {
	Spawn  Point   `yaml:"spawn"`
	Health float64 `yaml:"health"`
	Weapon string  `yaml:"weapon"`
}

// SpawnEntry describes one group of enemies placed at boot.
type SpawnEntry struct {
	Type     string  `yaml:"type"`
	Count    int     `yaml:"count"`
	Position Point   `yaml:"position"`
	Spacing  float64 `yaml:"spacing"`
}

// Point is a YAML-friendly world position.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// LoggingConfig selects sinks and the minimum level routed to them.
type LoggingConfig struct {
	Sinks      []string `yaml:"sinks"`
	BufferSize int      `yaml:"buffer_size"`
	Level      string   `yaml:"level"`
	JSONPath   string   `yaml:"json_path"`
	Verbose    bool     `yaml:"verbose"`
	Color      bool     `yaml:"color"`
}

// Default returns the configuration the server boots with when no file is
// present: one local listener, subsystem defaults, and a small roster so a
// fresh world is not empty.
func Default() Config {
	loop := sim.DefaultLoopConfig()
	w := world.DefaultConfig()
	router := logging.DefaultConfig()
	return Config{
		ListenAddr: ":8080",
		Simulation: SimulationConfig{
			TickRate:        loop.TickRate,
			CatchupMaxTicks: loop.CatchupMaxTicks,
			CommandCapacity: loop.CommandCapacity,
			PerActorLimit:   loop.PerActorLimit,
			WarningStep:     loop.WarningStep,
		},
		World: WorldConfig{
			Seed:                w.Seed,
			RespawnDelaySeconds: w.RespawnDelay.Seconds(),
			PatrolRadius:        w.PatrolRadius,
			PatrolPointCount:    w.PatrolPointCount,
		},
		Player: PlayerConfig{
			Health: 100,
			Weapon: stats.DefaultWeapon().Name,
		},
		Spawns: []SpawnEntry{
			{Type: "zombie", Count: 3, Position: Point{X: 12, Z: 12}, Spacing: defaultSpawnSpacing},
			{Type: "bandit", Count: 2, Position: Point{X: -18, Z: 6}, Spacing: defaultSpawnSpacing},
		},
		Logging: LoggingConfig{
			Sinks:      append([]string(nil), router.EnabledSinks...),
			BufferSize: router.BufferSize,
			Level:      "info",
			Color:      true,
		},
	}
}

// Validate rejects values the server cannot start with. Zero values pass;
// they fall back to defaults during translation.
func (c Config) Validate() error {
	if c.Simulation.TickRate < 0 {
		return fmt.Errorf("config: tick_rate %d is negative", c.Simulation.TickRate)
	}
	if c.Player.Weapon != "" {
		if _, ok := stats.WeaponByName(c.Player.Weapon); !ok {
			return fmt.Errorf("config: unknown player weapon %q", c.Player.Weapon)
		}
	}
	for _, entry := range c.Spawns {
		if !knownEnemyType(entry.Type) {
			return fmt.Errorf("config: unknown spawn type %q", entry.Type)
		}
		if entry.Count < 0 {
			return fmt.Errorf("config: spawn %q has negative count %d", entry.Type, entry.Count)
		}
	}
	for _, name := range c.Logging.Sinks {
		if !knownSink(name) {
			return fmt.Errorf("config: unknown logging sink %q", name)
		}
	}
	if c.Logging.Level != "" {
		if _, ok := logging.ParseSeverity(c.Logging.Level); !ok {
			return fmt.Errorf("config: unknown logging level %q", c.Logging.Level)
		}
	}
	return nil
}

// Loop translates the simulation section.
func (c Config) Loop() sim.LoopConfig {
	return sim.LoopConfig{
		TickRate:        c.Simulation.TickRate,
		CatchupMaxTicks: c.Simulation.CatchupMaxTicks,
		CommandCapacity: c.Simulation.CommandCapacity,
		PerActorLimit:   c.Simulation.PerActorLimit,
		WarningStep:     c.Simulation.WarningStep,
	}
}

// WorldSettings translates the world section.
func (c Config) WorldSettings() world.Config {
	return world.Config{
		Seed:             c.World.Seed,
		RespawnDelay:     time.Duration(c.World.RespawnDelaySeconds * float64(time.Second)),
		PatrolRadius:     c.World.PatrolRadius,
		PatrolPointCount: c.World.PatrolPointCount,
	}
}

// Engine translates the player section.
func (c Config) Engine() sim.EngineConfig {
	return sim.EngineConfig{
		PlayerSpawn:   c.Player.Spawn.Vec3(),
		PlayerHealth:  c.Player.Health,
		DefaultWeapon: c.Player.Weapon,
	}
}

// Router translates the logging section. Empty fields keep the router
// defaults so a bare `logging:` block still logs to the console.
func (c Config) Router() logging.Config {
	out := logging.DefaultConfig()
	if len(c.Logging.Sinks) > 0 {
		out.EnabledSinks = append([]string(nil), c.Logging.Sinks...)
	}
	if c.Logging.BufferSize > 0 {
		out.BufferSize = c.Logging.BufferSize
	}
	if sev, ok := logging.ParseSeverity(c.Logging.Level); ok {
		out.MinimumSeverity = sev
	}
	out.JSON.FilePath = c.Logging.JSONPath
	out.Console.UseColor = c.Logging.Color
	out.Console.Verbose = c.Logging.Verbose
	return out
}

// Vec3 converts the YAML point into a world position.
func (p Point) Vec3() geom.Vec3 {
	return geom.Vec3{X: p.X, Y: p.Y, Z: p.Z}
}

// Positions expands the entry into one spawn position per enemy, spread
// along the X axis so patrol rings do not stack.
func (e SpawnEntry) Positions() []geom.Vec3 {
	count := e.Count
	if count <= 0 {
		count = 1
	}
	spacing := e.Spacing
	if spacing <= 0 {
		spacing = defaultSpawnSpacing
	}
	out := make([]geom.Vec3, 0, count)
	for i := 0; i < count; i++ {
		pos := e.Position.Vec3()
		pos.X += float64(i) * spacing
		out = append(out, pos)
	}
	return out
}

func knownEnemyType(name string) bool {
	for _, t := range stats.KnownEnemyTypes() {
		if string(t) == name {
			return true
		}
	}
	return false
}

func knownSink(name string) bool {
	switch name {
	case "console", "json", "memory":
		return true
	}
	return false
}
