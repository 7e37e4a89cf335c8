// Package combat declares the combat event types and their publish helpers.
package combat

import (
	"context"

	"github.com/vide-coded/voxel-warfare/logging"
)

const (
	// EventMeleeHit is emitted when a melee swing connects with an enemy.
	EventMeleeHit logging.EventType = "combat.melee_hit"
	// EventDamage is emitted when damage is applied to an enemy.
	EventDamage logging.EventType = "combat.damage"
	// EventDefeat is emitted when an enemy's health reaches zero.
	EventDefeat logging.EventType = "combat.defeat"
	// EventRespawn is emitted when a defeated enemy returns to patrol.
	EventRespawn logging.EventType = "combat.respawn"
	// EventPlayerHit is emitted when an enemy attack lands on the player.
	EventPlayerHit logging.EventType = "combat.player_hit"
)

// MeleeHitPayload captures the weapon and ray distance of a connected swing.
type MeleeHitPayload struct {
	Weapon   string  `json:"weapon"`
	Distance float64 `json:"distance"`
}

// DamagePayload captures the post-mitigation amount dealt to a single target.
type DamagePayload struct {
	Amount       int     `json:"amount"`
	Critical     bool    `json:"critical"`
	TargetHealth float64 `json:"targetHealth"`
}

// DefeatPayload describes the scheduled return of a defeated enemy.
type DefeatPayload struct {
	RespawnSeconds float64 `json:"respawnSeconds"`
}

// RespawnPayload carries the position an enemy revived at.
type RespawnPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PlayerHitPayload captures an enemy attack landing on the player.
type PlayerHitPayload struct {
	Amount       float64 `json:"amount"`
	PlayerHealth float64 `json:"playerHealth"`
}

// MeleeHit publishes a melee connect event.
func MeleeHit(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, payload MeleeHitPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMeleeHit,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// Damage publishes a damage event for a single target.
func Damage(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, payload DamagePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDamage,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// Defeat publishes a defeat event for the eliminated enemy.
func Defeat(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, payload DefeatPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDefeat,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// Respawn publishes a respawn event for a revived enemy.
func Respawn(ctx context.Context, pub logging.Publisher, tick uint64, target logging.EntityRef, payload RespawnPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRespawn,
		Tick:     tick,
		Actor:    target,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// PlayerHit publishes an enemy-on-player damage event.
func PlayerHit(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerHitPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerHit,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{{ID: "player", Kind: logging.EntityKindPlayer}},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}
