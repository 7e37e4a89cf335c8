package world

import (
	"context"
	"math"
	"time"

	"github.com/vide-coded/voxel-warfare/logging"
	combatlog "github.com/vide-coded/voxel-warfare/logging/combat"
	"github.com/vide-coded/voxel-warfare/stats"
)

// Update merges a controller's per-tick result into the stored record and
// bumps the version. Missing ids are silently ignored; this is how an AI step
// commits without ever holding a live pointer across ticks.
func (w *World) Update(id string, fn func(*EnemyState)) {
	if w == nil || fn == nil {
		return
	}

	enemy, ok := w.enemies[id]
	if !ok {
		return
	}

	fn(enemy)
	enemy.Version++
}

// ApplyDamage mitigates raw damage against the target's defense and applies
// it. Missing ids and already-dead targets are no-ops, so a projectile
// resolving against a stale snapshot can never double-kill or re-arm a
// respawn. Reaching zero health flips the enemy to the dead state and
// schedules its respawn.
func (w *World) ApplyDamage(id string, rawDamage float64, critical bool) {
	if w == nil {
		return
	}
	if math.IsNaN(rawDamage) || math.IsInf(rawDamage, 0) || rawDamage < 0 {
		return
	}

	enemy, ok := w.enemies[id]
	if !ok || !enemy.Alive() {
		return
	}

	final := stats.Mitigate(rawDamage, enemy.Stats.Defense)

	health := enemy.Stats.Health - float64(final)
	if health < 0 {
		health = 0
	}
	enemy.Stats.Health = health
	enemy.LastDamageAt = w.clock.Now()
	enemy.Version++

	w.events = append(w.events, DamageEvent{
		TargetID: id,
		Amount:   final,
		Critical: critical,
		Position: enemy.Position,
		Tick:     w.tick,
	})

	ref := logging.EntityRef{ID: id, Kind: logging.EntityKindEnemy}
	combatlog.Damage(context.Background(), w.publisher, w.tick,
		logging.EntityRef{ID: "player", Kind: logging.EntityKindPlayer}, ref,
		combatlog.DamagePayload{Amount: final, Critical: critical, TargetHealth: health})

	if health > 0 {
		return
	}

	enemy.AIState = StateDead
	enemy.HasTarget = false
	enemy.RespawnAt = w.clock.Now().Add(w.config.RespawnDelay)

	combatlog.Defeat(context.Background(), w.publisher, w.tick,
		logging.EntityRef{ID: "player", Kind: logging.EntityKindPlayer}, ref,
		combatlog.DefeatPayload{RespawnSeconds: w.config.RespawnDelay.Seconds()})
}

// Respawn resets a dead enemy to its first patrol point at full health.
// Missing ids are no-ops; the schedule is cleared so a sweep can never fire
// twice for the same death.
func (w *World) Respawn(id string) {
	if w == nil {
		return
	}

	enemy, ok := w.enemies[id]
	if !ok {
		return
	}

	if len(enemy.PatrolPoints) > 0 {
		enemy.Position = enemy.PatrolPoints[0]
	}
	enemy.Stats.Health = enemy.Stats.MaxHealth
	enemy.AIState = StatePatrol
	enemy.HasTarget = false
	enemy.PatrolIndex = 0
	enemy.AttackCooldown = 0
	enemy.AlertTime = 0
	enemy.RespawnAt = time.Time{}
	enemy.Version++

	combatlog.Respawn(context.Background(), w.publisher, w.tick,
		logging.EntityRef{ID: id, Kind: logging.EntityKindEnemy},
		combatlog.RespawnPayload{X: enemy.Position.X, Y: enemy.Position.Y, Z: enemy.Position.Z})
}

// Remove deletes the enemy record outright. Missing ids are no-ops. A pending
// respawn for a removed id simply never fires.
func (w *World) Remove(id string) {
	if w == nil {
		return
	}
	delete(w.enemies, id)
}
