// Package world owns the authoritative enemy records. Every mutation flows
// through the World's methods so lookups on missing ids stay silent no-ops
// and snapshot versions stay consistent.
package world

import (
	"time"

	"github.com/vide-coded/voxel-warfare/internal/geom"
	"github.com/vide-coded/voxel-warfare/stats"
)

// AIState enumerates the behavior states an enemy moves through.
type AIState string

const (
	StateIdle   AIState = "idle"
	StatePatrol AIState = "patrol"
	StateAlert  AIState = "alert"
	StateChase  AIState = "chase"
	StateAttack AIState = "attack"
	StateFlee   AIState = "flee"
	StateDead   AIState = "dead"
)

// EnemyState is the authoritative record for one enemy. Controllers receive a
// value copy for the duration of a tick and commit results through
// World.Update; Health and the respawn schedule are only ever written by the
// World itself.
type EnemyState struct {
	ID             string
	Type           stats.EnemyType
	Position       geom.Vec3
	Rotation       float64
	Stats          stats.EnemyStats
	AIState        AIState
	HasTarget      bool
	PatrolPoints   []geom.Vec3
	PatrolIndex    int
	AttackCooldown float64
	AlertTime      float64
	LastDamageAt   time.Time
	RespawnAt      time.Time
	Version        uint64
}

// Alive reports whether the enemy participates in combat and AI stepping.
func (s *EnemyState) Alive() bool {
	return s != nil && s.AIState != StateDead
}

// Snapshot returns the broadcast-friendly view of the enemy.
func (s *EnemyState) Snapshot() Enemy {
	return Enemy{
		ID:        s.ID,
		Type:      s.Type,
		Position:  s.Position,
		Rotation:  s.Rotation,
		Health:    s.Stats.Health,
		MaxHealth: s.Stats.MaxHealth,
		State:     s.AIState,
	}
}

// Enemy mirrors one enemy to rendering collaborators.
type Enemy struct {
	ID        string          `json:"id"`
	Type      stats.EnemyType `json:"type"`
	Position  geom.Vec3       `json:"position"`
	Rotation  float64         `json:"rotation"`
	Health    float64         `json:"health"`
	MaxHealth float64         `json:"maxHealth"`
	State     AIState         `json:"state"`
}

// DamageEvent is the per-hit notification consumed by UI collaborators. The
// amount is post-mitigation and at least 1.
type DamageEvent struct {
	TargetID string    `json:"targetId"`
	Amount   int       `json:"amount"`
	Critical bool      `json:"critical"`
	Position geom.Vec3 `json:"position"`
	Tick     uint64    `json:"tick"`
}
