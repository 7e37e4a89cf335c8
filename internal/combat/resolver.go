package combat

import (
	"context"
	"math/rand"

	"github.com/vide-coded/voxel-warfare/internal/geom"
	"github.com/vide-coded/voxel-warfare/internal/world"
	"github.com/vide-coded/voxel-warfare/logging"
	combatlog "github.com/vide-coded/voxel-warfare/logging/combat"
	"github.com/vide-coded/voxel-warfare/stats"
)

// Resolver turns attack inputs into damage applied through the enemy store.
// Critical hits are rolled here, before the store sees the number, so the
// store only ever mitigates post-crit raw damage.
type Resolver struct {
	world     *world.World
	rng       *rand.Rand
	publisher logging.Publisher
}

// NewResolver binds a resolver to the store it strikes into. A nil rng falls
// back to the world's deterministic combat stream; a nil publisher disables
// swing telemetry without disabling damage.
func NewResolver(w *world.World, rng *rand.Rand, publisher logging.Publisher) *Resolver {
	if rng == nil {
		rng = w.SubsystemRNG("combat")
	}
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &Resolver{world: w, rng: rng, publisher: publisher}
}

// SwingResult reports a connected melee swing. Damage is the post-crit raw
// amount handed to the store; the mitigated number surfaces on the store's
// damage event stream.
type SwingResult struct {
	TargetID  string
	Distance  float64
	Critical  bool
	RawDamage float64
}

// RollCrit draws one uniform sample against the weapon's crit chance.
func (r *Resolver) RollCrit(weapon stats.Weapon) bool {
	return r.rollCrit(weapon.EffectiveCritChance())
}

func (r *Resolver) rollCrit(chance float64) bool {
	if chance <= 0 {
		return false
	}
	return r.rng.Float64() < chance
}

// MeleeSwing casts the weapon's reach along the aim ray, damages the nearest
// living enemy on it, and reports the connection. A swing that touches
// nothing returns false with no side effects.
func (r *Resolver) MeleeSwing(origin, direction geom.Vec3, weapon stats.Weapon) (SwingResult, bool) {
	hit, ok := NearestAlongRay(origin, direction, weapon.Range, r.livingTargets())
	if !ok {
		return SwingResult{}, false
	}

	critical := r.RollCrit(weapon)
	raw := stats.CritDamage(weapon.Damage, critical, weapon.EffectiveCritMultiplier())
	r.world.ApplyDamage(hit.ID, raw, critical)

	combatlog.MeleeHit(context.Background(), r.publisher, r.world.Tick(),
		logging.EntityRef{ID: "player", Kind: logging.EntityKindPlayer},
		logging.EntityRef{ID: hit.ID, Kind: logging.EntityKindEnemy},
		combatlog.MeleeHitPayload{Weapon: weapon.Name, Distance: hit.Distance})

	return SwingResult{
		TargetID:  hit.ID,
		Distance:  hit.Distance,
		Critical:  critical,
		RawDamage: raw,
	}, true
}

// strike applies projectile contact damage to a single enemy, rolling the
// crit with the projectile's own chance and multiplier.
func (r *Resolver) strike(targetID string, damage, critChance, critMultiplier float64) (float64, bool) {
	critical := r.rollCrit(critChance)
	raw := stats.CritDamage(damage, critical, critMultiplier)
	r.world.ApplyDamage(targetID, raw, critical)
	return raw, critical
}

// livingTargets snapshots every enemy still in play, in sorted id order so
// resolution is reproducible under a fixed seed.
func (r *Resolver) livingTargets() []RayTarget {
	ids := r.world.IDs()
	targets := make([]RayTarget, 0, len(ids))
	for _, id := range ids {
		enemy, ok := r.world.Get(id)
		if !ok || !enemy.Alive() {
			continue
		}
		targets = append(targets, RayTarget{ID: id, Position: enemy.Position})
	}
	return targets
}
