// Package sim composes the per-tick pipeline: staged commands are applied,
// every enemy takes an AI step against the player position, attack inputs
// resolve through the combat package, projectiles advance, and due respawns
// fire. One engine instance owns the world; the loop drives it on a fixed
// timestep.
package sim

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/vide-coded/voxel-warfare/internal/ai"
	"github.com/vide-coded/voxel-warfare/internal/combat"
	"github.com/vide-coded/voxel-warfare/internal/geom"
	"github.com/vide-coded/voxel-warfare/internal/telemetry"
	"github.com/vide-coded/voxel-warfare/internal/world"
	"github.com/vide-coded/voxel-warfare/logging"
	combatlog "github.com/vide-coded/voxel-warfare/logging/combat"
	"github.com/vide-coded/voxel-warfare/stats"
)

// ErrMissingWorld indicates NewEngine was invoked without a world instance.
var ErrMissingWorld = errors.New("sim: world is nil")

const (
	metricTicksTotal        = "sim_ticks_total"
	metricCommandsTotal     = "sim_commands_total"
	metricSwingsTotal       = "combat_swings_total"
	metricSwingsLanded      = "combat_swings_landed_total"
	metricProjectilesFired  = "combat_projectiles_fired_total"
	metricProjectilesActive = "combat_projectiles_active"
	metricPlayerHits        = "combat_player_hits_total"
	metricEnemiesAlive      = "world_enemies_alive"
)

// Deps carries the shared infrastructure the engine and loop run on.
type Deps struct {
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Clock     logging.Clock
	RNG       *rand.Rand
	Publisher logging.Publisher
}

func (d Deps) normalized(w *world.World) Deps {
	if d.Logger == nil {
		d.Logger = telemetry.NopLogger()
	}
	if d.Metrics == nil {
		d.Metrics = telemetry.NopMetrics()
	}
	if d.Clock == nil {
		d.Clock = logging.ClockFunc(time.Now)
	}
	if d.RNG == nil {
		d.RNG = w.SubsystemRNG("combat")
	}
	if d.Publisher == nil {
		d.Publisher = logging.NopPublisher()
	}
	return d
}

// EngineConfig fixes the player-side parameters for an engine instance.
type EngineConfig struct {
	PlayerSpawn   geom.Vec3
	PlayerHealth  float64
	DefaultWeapon string
}

// DefaultEngineConfig starts the player at the origin with the sword preset.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		PlayerHealth:  100,
		DefaultWeapon: "sword",
	}
}

func (c EngineConfig) normalized() EngineConfig {
	if c.PlayerHealth <= 0 {
		c.PlayerHealth = 100
	}
	if c.DefaultWeapon == "" {
		c.DefaultWeapon = "sword"
	}
	return c
}

// TickContext carries the timing of one simulation step.
type TickContext struct {
	Tick  uint64
	Now   time.Time
	Delta float64
}

// Snapshot is the per-tick state copy handed to broadcast and diagnostics.
// Events holds the damage events drained on the tick the snapshot was taken.
type Snapshot struct {
	Tick        uint64              `json:"tick"`
	Time        time.Time           `json:"time"`
	Player      PlayerView          `json:"player"`
	Enemies     []world.Enemy       `json:"enemies"`
	Projectiles []combat.View       `json:"projectiles"`
	Events      []world.DamageEvent `json:"events,omitempty"`
}

// Core is the engine surface the loop drives.
type Core interface {
	Apply([]Command) error
	Step(TickContext)
	Snapshot() Snapshot
	Deps() Deps
}

// Engine owns the world and advances the whole simulation one tick at a
// time. It is not safe for concurrent use; the loop serializes access.
type Engine struct {
	deps        Deps
	world       *world.World
	controller  *ai.Controller
	resolver    *combat.Resolver
	projectiles *combat.Simulator
	player      *Player

	pendingSwings []SwingCommand
	pendingFires  []FireCommand

	tick   uint64
	now    time.Time
	events []world.DamageEvent
}

// NewEngine wires an engine around the given world. Missing dependencies
// fall back to inert defaults, with the combat RNG drawn from the world's
// deterministic seed hierarchy.
func NewEngine(w *world.World, cfg EngineConfig, deps Deps) (*Engine, error) {
	if w == nil {
		return nil, ErrMissingWorld
	}
	cfg = cfg.normalized()
	deps = deps.normalized(w)

	weapon, ok := stats.WeaponByName(cfg.DefaultWeapon)
	if !ok {
		weapon = stats.DefaultWeapon()
	}

	engine := &Engine{
		deps:   deps,
		world:  w,
		player: newPlayer(cfg.PlayerSpawn, cfg.PlayerHealth, weapon),
	}
	engine.controller = ai.NewController(playerSink{engine: engine})
	engine.resolver = combat.NewResolver(w, deps.RNG, deps.Publisher)
	engine.projectiles = combat.NewSimulator(engine.resolver)
	return engine, nil
}

// Deps returns the dependencies the engine was constructed with.
func (e *Engine) Deps() Deps {
	if e == nil {
		return Deps{}
	}
	return e.deps
}

// World exposes the underlying enemy store.
func (e *Engine) World() *world.World {
	if e == nil {
		return nil
	}
	return e.world
}

// Player returns a broadcast copy of the player record.
func (e *Engine) Player() PlayerView {
	if e == nil {
		return PlayerView{}
	}
	return e.player.View()
}

// Apply stages the drained command batch: moves land immediately so the
// upcoming step sees the fresh player position, attack inputs queue for
// resolution after AI stepping, spawns insert before the step so the new
// enemy participates in it. Malformed commands are dropped silently.
func (e *Engine) Apply(cmds []Command) error {
	if e == nil {
		return nil
	}
	for _, cmd := range cmds {
		switch cmd.Type {
		case CommandMove:
			if cmd.Move != nil {
				e.player.setPosition(cmd.Move.Position)
			}
		case CommandSwing:
			if cmd.Swing != nil {
				e.pendingSwings = append(e.pendingSwings, *cmd.Swing)
			}
		case CommandFire:
			if cmd.Fire != nil {
				e.pendingFires = append(e.pendingFires, *cmd.Fire)
			}
		case CommandSpawn:
			if cmd.Spawn != nil {
				e.spawnEnemy(cmd.Spawn)
			}
		}
	}
	if len(cmds) > 0 {
		e.deps.Metrics.Add(metricCommandsTotal, uint64(len(cmds)))
	}
	return nil
}

// Step advances the simulation by one tick.
func (e *Engine) Step(ctx TickContext) {
	if e == nil {
		return
	}
	e.tick = ctx.Tick
	e.now = ctx.Now
	e.world.BeginTick(ctx.Tick)

	e.controller.StepAll(e.world, e.player.Position, ctx.Delta)

	for _, swing := range e.pendingSwings {
		e.deps.Metrics.Add(metricSwingsTotal, 1)
		if _, ok := e.resolver.MeleeSwing(swing.Origin, swing.Direction, e.swingWeapon(swing.Weapon)); ok {
			e.deps.Metrics.Add(metricSwingsLanded, 1)
		}
	}
	e.pendingSwings = e.pendingSwings[:0]

	for _, fire := range e.pendingFires {
		e.launch(fire)
	}
	e.pendingFires = e.pendingFires[:0]

	e.projectiles.Advance(ctx.Delta)
	e.world.SweepRespawns(ctx.Now)
	e.events = e.world.DrainDamageEvents()

	e.deps.Metrics.Add(metricTicksTotal, 1)
	e.deps.Metrics.Store(metricEnemiesAlive, uint64(e.world.AliveCount()))
	e.deps.Metrics.Store(metricProjectilesActive, uint64(e.projectiles.Active()))
}

// Snapshot copies the state as of the most recent step.
func (e *Engine) Snapshot() Snapshot {
	if e == nil {
		return Snapshot{}
	}
	return Snapshot{
		Tick:        e.tick,
		Time:        e.now,
		Player:      e.player.View(),
		Enemies:     e.world.Snapshot(),
		Projectiles: e.projectiles.Snapshot(),
		Events:      e.events,
	}
}

// RemoveEnemy deletes an enemy outright, dropping its cached behavior
// machine with it. Safe against ids already gone, and against a pending
// respawn for the removed id.
func (e *Engine) RemoveEnemy(id string) {
	if e == nil {
		return
	}
	e.world.Remove(id)
	e.controller.Forget(id)
}

// swingWeapon resolves a melee preset by name, falling back to the player's
// equipped weapon.
func (e *Engine) swingWeapon(name string) stats.Weapon {
	if name != "" {
		if weapon, ok := stats.WeaponByName(name); ok && weapon.Kind == stats.WeaponKindMelee {
			return weapon
		}
	}
	return e.player.Weapon
}

// launch fires one projectile, preferring the named ranged preset's numbers
// over the raw speed and damage in the command.
func (e *Engine) launch(cmd FireCommand) {
	if cmd.Weapon != "" {
		if weapon, ok := stats.WeaponByName(cmd.Weapon); ok && weapon.Kind == stats.WeaponKindRanged {
			if e.projectiles.FireWeapon(cmd.Origin, cmd.Direction, weapon) != 0 {
				e.deps.Metrics.Add(metricProjectilesFired, 1)
			}
			return
		}
	}
	if e.projectiles.Fire(cmd.Origin, cmd.Direction, cmd.Speed, cmd.Damage) != 0 {
		e.deps.Metrics.Add(metricProjectilesFired, 1)
	}
}

// spawnEnemy inserts a new enemy, rejecting types outside the closed set.
func (e *Engine) spawnEnemy(cmd *SpawnCommand) {
	enemyType := stats.EnemyType(cmd.Type)
	for _, known := range stats.KnownEnemyTypes() {
		if known == enemyType {
			e.world.Spawn(enemyType, cmd.Position)
			return
		}
	}
}

// damagePlayer lands one enemy attack on the player. Attacks on an already
// downed player change nothing and stay silent.
func (e *Engine) damagePlayer(amount float64) {
	before := e.player.Health
	remaining := e.player.takeDamage(amount)
	if remaining == before {
		return
	}
	combatlog.PlayerHit(context.Background(), e.deps.Publisher, e.tick,
		logging.EntityRef{Kind: logging.EntityKindEnemy},
		combatlog.PlayerHitPayload{Amount: amount, PlayerHealth: remaining})
	e.deps.Metrics.Add(metricPlayerHits, 1)
}

// playerSink routes enemy attack damage into the engine's player record.
type playerSink struct {
	engine *Engine
}

func (s playerSink) TakeDamage(amount float64) {
	if s.engine == nil {
		return
	}
	s.engine.damagePlayer(amount)
}

var _ Core = (*Engine)(nil)
var _ ai.PlayerSink = playerSink{}
