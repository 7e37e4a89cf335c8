// Package lifecycle declares join/leave and spawn event helpers.
package lifecycle

import (
	"context"

	"github.com/vide-coded/voxel-warfare/logging"
)

const (
	// EventPlayerJoined is emitted when the player connects to the world.
	EventPlayerJoined logging.EventType = "lifecycle.player_joined"
	// EventPlayerDisconnected is emitted when the player drops.
	EventPlayerDisconnected logging.EventType = "lifecycle.player_disconnected"
	// EventEnemySpawned is emitted for each enemy added to the world.
	EventEnemySpawned logging.EventType = "lifecycle.enemy_spawned"
)

// PlayerJoinedPayload captures spawn metadata for a new connection.
type PlayerJoinedPayload struct {
	SpawnX float64 `json:"spawnX"`
	SpawnY float64 `json:"spawnY"`
	SpawnZ float64 `json:"spawnZ"`
}

// PlayerDisconnectedPayload captures the reason a connection ended.
type PlayerDisconnectedPayload struct {
	Reason string `json:"reason"`
}

// EnemySpawnedPayload captures the type and position of a fresh enemy.
type EnemySpawnedPayload struct {
	EnemyType string  `json:"enemyType"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
}

// PlayerJoined publishes a player join event.
func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerJoinedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerJoined,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

// PlayerDisconnected publishes a player disconnect event.
func PlayerDisconnected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerDisconnectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerDisconnected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

// EnemySpawned publishes an enemy spawn event.
func EnemySpawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload EnemySpawnedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEnemySpawned,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}
