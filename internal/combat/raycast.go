// Package combat resolves player attacks against the enemy store: swing
// rays for melee weapons, proximity sweeps for in-flight projectiles, and
// the critical-hit roll both share. All damage funnels through the store's
// mitigation so this package never touches health directly.
package combat

import (
	"github.com/vide-coded/voxel-warfare/internal/geom"
)

// Hitbox radii for the two attack families. Swings test the perpendicular
// distance to a ray; projectiles test straight point proximity, with a
// looser radius to compensate for discrete stepping.
const (
	MeleeHitboxRadius   = 1.0
	ProjectileHitRadius = 1.5
)

// RayTarget is one candidate in a swing test.
type RayTarget struct {
	ID       string
	Position geom.Vec3
}

// RayHit names the target a swing connected with and how far along the ray
// the connection happened.
type RayHit struct {
	ID       string
	Distance float64
}

// NearestAlongRay projects each target onto the swing ray and returns the
// qualifying hit with the smallest ray distance. A target qualifies when its
// projection lands between the origin and maxDistance and its perpendicular
// offset from the ray is within the melee hitbox radius. Nearest along the
// ray wins, not nearest perpendicular.
func NearestAlongRay(origin, direction geom.Vec3, maxDistance float64, targets []RayTarget) (RayHit, bool) {
	unit := direction.Normalized()
	if unit.Length() < geom.ZeroEpsilon || maxDistance <= 0 {
		return RayHit{}, false
	}

	best := RayHit{Distance: maxDistance}
	found := false
	for _, target := range targets {
		t := target.Position.Sub(origin).Dot(unit)
		if t < 0 || t > maxDistance {
			continue
		}
		closest := origin.Add(unit.Scale(t))
		if geom.Distance(closest, target.Position) > MeleeHitboxRadius {
			continue
		}
		if !found || t < best.Distance {
			best = RayHit{ID: target.ID, Distance: t}
			found = true
		}
	}
	return best, found
}
