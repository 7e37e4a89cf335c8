package sim

import (
	"time"

	"github.com/vide-coded/voxel-warfare/internal/geom"
)

// CommandType enumerates the intents the engine accepts from clients.
type CommandType string

const (
	CommandMove  CommandType = "Move"
	CommandSwing CommandType = "Swing"
	CommandFire  CommandType = "Fire"
	CommandSpawn CommandType = "Spawn"
)

// MoveCommand reports the player's position for the upcoming tick. The
// simulation treats the player as externally driven; it never moves the
// player itself.
type MoveCommand struct {
	Position geom.Vec3 `json:"position"`
}

// SwingCommand triggers a melee attack along the aim ray. Weapon names an
// equipped preset; an unknown or empty name swings the player's current
// weapon.
type SwingCommand struct {
	Weapon    string    `json:"weapon,omitempty"`
	Origin    geom.Vec3 `json:"origin"`
	Direction geom.Vec3 `json:"direction"`
}

// FireCommand launches a projectile. When Weapon names a ranged preset its
// speed, damage, and crit table apply; otherwise Speed and Damage are used
// with the default crit table.
type FireCommand struct {
	Weapon    string    `json:"weapon,omitempty"`
	Origin    geom.Vec3 `json:"origin"`
	Direction geom.Vec3 `json:"direction"`
	Speed     float64   `json:"speed,omitempty"`
	Damage    float64   `json:"damage,omitempty"`
}

// SpawnCommand places a new enemy into the world.
type SpawnCommand struct {
	Type     string    `json:"type"`
	Position geom.Vec3 `json:"position"`
}

// Command is one staged intent, applied at the top of the tick it was
// drained on.
type Command struct {
	OriginTick uint64        `json:"originTick"`
	ActorID    string        `json:"actorId"`
	Type       CommandType   `json:"type"`
	IssuedAt   time.Time     `json:"issuedAt"`
	Move       *MoveCommand  `json:"move,omitempty"`
	Swing      *SwingCommand `json:"swing,omitempty"`
	Fire       *FireCommand  `json:"fire,omitempty"`
	Spawn      *SpawnCommand `json:"spawn,omitempty"`
}
