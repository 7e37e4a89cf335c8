package sim

import (
	"math"

	"github.com/vide-coded/voxel-warfare/internal/geom"
	"github.com/vide-coded/voxel-warfare/stats"
)

// Player is the single player-side record the simulation keeps: the engine
// reads its position every tick and routes enemy attack damage into its
// health. Movement itself is client-driven and arrives as move commands.
type Player struct {
	Position  geom.Vec3
	Health    float64
	MaxHealth float64
	Weapon    stats.Weapon
}

// PlayerView is the broadcast-friendly copy of the player record.
type PlayerView struct {
	Position  geom.Vec3 `json:"position"`
	Health    float64   `json:"health"`
	MaxHealth float64   `json:"maxHealth"`
	Weapon    string    `json:"weapon"`
}

func newPlayer(spawn geom.Vec3, maxHealth float64, weapon stats.Weapon) *Player {
	return &Player{
		Position:  spawn,
		Health:    maxHealth,
		MaxHealth: maxHealth,
		Weapon:    weapon,
	}
}

// setPosition replaces the player position, rejecting values that would
// poison later distance math.
func (p *Player) setPosition(position geom.Vec3) {
	if !finiteVec(position) {
		return
	}
	p.Position = position
}

// takeDamage subtracts a flat amount from health, floored at zero, and
// reports the remaining health. Player-facing damage skips defense and crit
// arithmetic entirely.
func (p *Player) takeDamage(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return p.Health
	}
	p.Health -= amount
	if p.Health < 0 {
		p.Health = 0
	}
	return p.Health
}

// Alive reports whether the player still has health left.
func (p *Player) Alive() bool {
	return p.Health > 0
}

// View copies the record for broadcast.
func (p *Player) View() PlayerView {
	return PlayerView{
		Position:  p.Position,
		Health:    p.Health,
		MaxHealth: p.MaxHealth,
		Weapon:    p.Weapon.Name,
	}
}

func finiteVec(v geom.Vec3) bool {
	for _, value := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return false
		}
	}
	return true
}
