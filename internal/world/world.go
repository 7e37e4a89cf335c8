package world

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vide-coded/voxel-warfare/internal/geom"
	"github.com/vide-coded/voxel-warfare/logging"
	"github.com/vide-coded/voxel-warfare/logging/lifecycle"
	"github.com/vide-coded/voxel-warfare/stats"
)

// DefaultSeed anchors the deterministic RNG hierarchy when no seed is given.
const DefaultSeed = "voxel-warfare"

// Config captures the tunables the world is constructed with.
type Config struct {
	Seed             string
	RespawnDelay     time.Duration
	PatrolRadius     float64
	PatrolPointCount int
}

// DefaultConfig returns the fixed gameplay values: a 30 second respawn delay
// and a four-point patrol ring of radius 10.
func DefaultConfig() Config {
	return Config{
		Seed:             DefaultSeed,
		RespawnDelay:     30 * time.Second,
		PatrolRadius:     10,
		PatrolPointCount: 4,
	}
}

func (c Config) normalized() Config {
	if c.Seed == "" {
		c.Seed = DefaultSeed
	}
	if c.RespawnDelay <= 0 {
		c.RespawnDelay = 30 * time.Second
	}
	if c.PatrolRadius <= 0 {
		c.PatrolRadius = 10
	}
	if c.PatrolPointCount < 1 {
		c.PatrolPointCount = 4
	}
	return c
}

// Deps bundles runtime dependencies required to construct a World.
type Deps struct {
	Publisher logging.Publisher
	Clock     logging.Clock
}

// World is the single authoritative store of enemy records. It is owned by
// the engine goroutine; concurrent callers interact only with value snapshots.
type World struct {
	config    Config
	seed      string
	publisher logging.Publisher
	clock     logging.Clock

	enemies  map[string]*EnemyState
	counters map[stats.EnemyType]uint64
	events   []DamageEvent
	tick     uint64
}

// New constructs an empty world with normalized configuration.
func New(cfg Config, deps Deps) *World {
	normalized := cfg.normalized()

	publisher := deps.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	clock := deps.Clock
	if clock == nil {
		clock = logging.ClockFunc(time.Now)
	}

	return &World{
		config:    normalized,
		seed:      normalized.Seed,
		publisher: publisher,
		clock:     clock,
		enemies:   make(map[string]*EnemyState),
		counters:  make(map[stats.EnemyType]uint64),
		events:    make([]DamageEvent, 0),
	}
}

// Config returns the normalized configuration captured at construction time.
func (w *World) Config() Config {
	if w == nil {
		return Config{}
	}
	return w.config
}

// Seed reports the deterministic seed applied to the world RNG hierarchy.
func (w *World) Seed() string {
	if w == nil {
		return ""
	}
	return w.seed
}

// BeginTick records the current tick number so damage events and log entries
// carry it. The engine calls this once at the top of every step.
func (w *World) BeginTick(tick uint64) {
	if w == nil {
		return
	}
	w.tick = tick
}

// Tick returns the tick number most recently recorded by BeginTick.
func (w *World) Tick() uint64 {
	if w == nil {
		return 0
	}
	return w.tick
}

// Spawn creates an enemy of the given type at the position and returns its
// id. Ids are monotonic per type and never reused; patrol points are laid out
// on a fixed ring around the spawn position, starting due +X, so
// PatrolPoints[0] is always position + (radius, 0, 0).
func (w *World) Spawn(enemyType stats.EnemyType, position geom.Vec3) string {
	if w == nil {
		return ""
	}

	w.counters[enemyType]++
	id := fmt.Sprintf("%s-%d", enemyType, w.counters[enemyType])

	enemy := &EnemyState{
		ID:           id,
		Type:         enemyType,
		Position:     position,
		Stats:        stats.BaseFor(enemyType),
		AIState:      StatePatrol,
		PatrolPoints: patrolRing(position, w.config.PatrolRadius, w.config.PatrolPointCount),
	}
	w.enemies[id] = enemy

	lifecycle.EnemySpawned(context.Background(), w.publisher, w.tick,
		logging.EntityRef{ID: id, Kind: logging.EntityKindEnemy},
		lifecycle.EnemySpawnedPayload{
			EnemyType: string(enemyType),
			X:         position.X,
			Y:         position.Y,
			Z:         position.Z,
		})
	return id
}

// patrolRing lays out count points evenly around center, starting at angle 0
// (due +X) on the ground plane.
func patrolRing(center geom.Vec3, radius float64, count int) []geom.Vec3 {
	points := make([]geom.Vec3, 0, count)
	for i := 0; i < count; i++ {
		angle := 2 * math.Pi * float64(i) / float64(count)
		points = append(points, geom.Vec3{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y,
			Z: center.Z + radius*math.Sin(angle),
		})
	}
	return points
}

// Get returns a value copy of the enemy record.
func (w *World) Get(id string) (EnemyState, bool) {
	if w == nil {
		return EnemyState{}, false
	}
	enemy, ok := w.enemies[id]
	if !ok {
		return EnemyState{}, false
	}
	return *enemy, true
}

// IDs returns every enemy id in sorted order. The engine iterates in this
// order so identically seeded runs stay byte-for-byte identical.
func (w *World) IDs() []string {
	if w == nil {
		return nil
	}
	ids := make([]string, 0, len(w.enemies))
	for id := range w.enemies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of enemy records, dead or alive.
func (w *World) Count() int {
	if w == nil {
		return 0
	}
	return len(w.enemies)
}

// AliveCount returns the number of enemies not in the dead state.
func (w *World) AliveCount() int {
	if w == nil {
		return 0
	}
	alive := 0
	for _, enemy := range w.enemies {
		if enemy.Alive() {
			alive++
		}
	}
	return alive
}

// Snapshot copies every enemy into broadcast-friendly structs, sorted by id.
func (w *World) Snapshot() []Enemy {
	if w == nil {
		return nil
	}
	enemies := make([]Enemy, 0, len(w.enemies))
	for _, id := range w.IDs() {
		enemies = append(enemies, w.enemies[id].Snapshot())
	}
	return enemies
}

// DrainDamageEvents returns the accumulated damage events and clears the
// buffer. The external driver calls this once per tick.
func (w *World) DrainDamageEvents() []DamageEvent {
	if w == nil || len(w.events) == 0 {
		return nil
	}
	drained := make([]DamageEvent, len(w.events))
	copy(drained, w.events)
	w.events = w.events[:0]
	return drained
}

// SweepRespawns revives every dead enemy whose respawn time has come. The
// engine runs this once per tick; Respawn clears the schedule so each death
// fires exactly once.
func (w *World) SweepRespawns(now time.Time) {
	if w == nil {
		return
	}
	for _, id := range w.IDs() {
		enemy := w.enemies[id]
		if enemy.AIState != StateDead || enemy.RespawnAt.IsZero() {
			continue
		}
		if now.Before(enemy.RespawnAt) {
			continue
		}
		w.Respawn(id)
	}
}
