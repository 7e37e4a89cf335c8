package combat

import (
	"github.com/vide-coded/voxel-warfare/internal/geom"
	"github.com/vide-coded/voxel-warfare/stats"
)

// ProjectileLifetime caps how long a shot stays in flight, in seconds.
const ProjectileLifetime = 3.0

// Projectiles drop at one fifth of standard gravity.
const (
	gravityScale = 0.2
	gravity      = 9.81
)

// Projectile is one in-flight ranged attack. The hit set records every enemy
// this projectile has already damaged so a single shot cannot hit the same
// target twice.
type Projectile struct {
	ID             uint64
	Position       geom.Vec3
	Velocity       geom.Vec3
	Damage         float64
	CritChance     float64
	CritMultiplier float64
	Lifetime       float64

	hit map[string]struct{}
}

// View is the broadcast-friendly copy of one in-flight projectile.
type View struct {
	ID       uint64    `json:"id"`
	Position geom.Vec3 `json:"position"`
	Velocity geom.Vec3 `json:"velocity"`
}

// Simulator owns the active projectile set. The engine advances it once per
// tick after AI stepping; contact damage lands through the resolver so crit
// and mitigation rules match melee exactly.
type Simulator struct {
	resolver *Resolver
	nextID   uint64
	active   []*Projectile
}

// NewSimulator constructs an empty simulator striking through resolver.
func NewSimulator(resolver *Resolver) *Simulator {
	return &Simulator{resolver: resolver}
}

// Fire launches a projectile with the default crit table. Returns the
// projectile id, or zero when the direction or speed cannot produce flight.
func (s *Simulator) Fire(origin, direction geom.Vec3, speed, damage float64) uint64 {
	return s.fire(origin, direction, speed, damage, stats.DefaultCritChance, stats.DefaultCritMultiplier)
}

// FireWeapon launches a projectile carrying the weapon's damage and crit
// numbers.
func (s *Simulator) FireWeapon(origin, direction geom.Vec3, weapon stats.Weapon) uint64 {
	return s.fire(origin, direction, weapon.ProjectileSpeed, weapon.Damage,
		weapon.EffectiveCritChance(), weapon.EffectiveCritMultiplier())
}

func (s *Simulator) fire(origin, direction geom.Vec3, speed, damage, critChance, critMultiplier float64) uint64 {
	unit := direction.Normalized()
	if unit.Length() < geom.ZeroEpsilon || speed <= 0 {
		return 0
	}

	s.nextID++
	projectile := &Projectile{
		ID:             s.nextID,
		Position:       origin,
		Velocity:       unit.Scale(speed),
		Damage:         damage,
		CritChance:     critChance,
		CritMultiplier: critMultiplier,
		Lifetime:       ProjectileLifetime,
		hit:            make(map[string]struct{}),
	}
	s.active = append(s.active, projectile)
	return projectile.ID
}

// Advance moves every projectile by dt seconds and resolves contacts. A
// projectile is retired on its first contact or once its lifetime runs out;
// a contact on the final tick still lands before expiry is considered.
func (s *Simulator) Advance(dt float64) {
	if dt < 0 {
		dt = 0
	}

	kept := s.active[:0]
	for _, projectile := range s.active {
		projectile.Position = projectile.Position.Add(projectile.Velocity.Scale(dt))
		projectile.Velocity.Y -= gravityScale * gravity * dt
		projectile.Lifetime -= dt

		if s.resolveContact(projectile) {
			continue
		}
		if projectile.Lifetime <= 0 {
			continue
		}
		kept = append(kept, projectile)
	}
	for i := len(kept); i < len(s.active); i++ {
		s.active[i] = nil
	}
	s.active = kept
}

// resolveContact sweeps living enemies in sorted id order and lands damage
// on the first one inside the projectile hit radius that this projectile has
// not already struck.
func (s *Simulator) resolveContact(projectile *Projectile) bool {
	for _, target := range s.resolver.livingTargets() {
		if _, seen := projectile.hit[target.ID]; seen {
			continue
		}
		if geom.Distance(projectile.Position, target.Position) >= ProjectileHitRadius {
			continue
		}
		projectile.hit[target.ID] = struct{}{}
		s.resolver.strike(target.ID, projectile.Damage, projectile.CritChance, projectile.CritMultiplier)
		return true
	}
	return false
}

// Active reports how many projectiles are still in flight.
func (s *Simulator) Active() int {
	return len(s.active)
}

// Snapshot copies the in-flight set for broadcast.
func (s *Simulator) Snapshot() []View {
	views := make([]View, 0, len(s.active))
	for _, projectile := range s.active {
		views = append(views, View{
			ID:       projectile.ID,
			Position: projectile.Position,
			Velocity: projectile.Velocity,
		})
	}
	return views
}
