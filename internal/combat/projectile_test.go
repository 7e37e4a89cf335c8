package combat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vide-coded/voxel-warfare/internal/geom"
	"github.com/vide-coded/voxel-warfare/stats"
)

func TestFireRejectsDegenerateInputs(t *testing.T) {
	sim := NewSimulator(NewResolver(newCombatWorld(), neverCritRNG(), nil))

	require.Zero(t, sim.Fire(geom.Vec3{}, geom.Vec3{}, 10, 5))
	require.Zero(t, sim.Fire(geom.Vec3{}, geom.Vec3{X: 1}, 0, 5))
	require.Zero(t, sim.Active())
}

func TestAdvanceAppliesGravityBias(t *testing.T) {
	sim := NewSimulator(NewResolver(newCombatWorld(), neverCritRNG(), nil))

	id := sim.Fire(geom.Vec3{}, geom.Vec3{X: 1}, 10, 5)
	require.NotZero(t, id)

	sim.Advance(0.1)

	snap := sim.Snapshot()
	require.Len(t, snap, 1)
	require.Equal(t, id, snap[0].ID)
	require.InDelta(t, 1.0, snap[0].Position.X, 1e-9)
	require.InDelta(t, 0.0, snap[0].Position.Y, 1e-9)
	// One fifth of 9.81 applied for a tenth of a second.
	require.InDelta(t, -0.1962, snap[0].Velocity.Y, 1e-9)

	sim.Advance(0.1)

	snap = sim.Snapshot()
	require.Len(t, snap, 1)
	require.InDelta(t, 2.0, snap[0].Position.X, 1e-9)
	require.InDelta(t, -0.01962, snap[0].Position.Y, 1e-9)
}

func TestProjectileHitsEnemyInPath(t *testing.T) {
	w := newCombatWorld()
	sim := NewSimulator(NewResolver(w, neverCritRNG(), nil))

	id := w.Spawn(stats.EnemyTypeZombie, geom.Vec3{X: 5})
	sim.Fire(geom.Vec3{}, geom.Vec3{X: 1}, 10, 5)

	// After 0.4 seconds the projectile sits at x=4, one unit from the
	// enemy, inside the 1.5 contact radius.
	sim.Advance(0.4)

	require.Zero(t, sim.Active())

	events := w.DrainDamageEvents()
	require.Len(t, events, 1)
	require.Equal(t, id, events[0].TargetID)
	// Raw 5 against defense 5 mitigates to floor(5 * 100/105) = 4.
	require.Equal(t, 4, events[0].Amount)
}

func TestProjectileExpiresAfterLifetime(t *testing.T) {
	sim := NewSimulator(NewResolver(newCombatWorld(), neverCritRNG(), nil))

	sim.Fire(geom.Vec3{}, geom.Vec3{X: 1}, 1, 5)

	sim.Advance(1.0)
	sim.Advance(1.0)
	require.Equal(t, 1, sim.Active())

	sim.Advance(1.0)
	require.Zero(t, sim.Active())
}

func TestProjectileStopsOnFirstContact(t *testing.T) {
	w := newCombatWorld()
	sim := NewSimulator(NewResolver(w, neverCritRNG(), nil))

	first := w.Spawn(stats.EnemyTypeZombie, geom.Vec3{X: 4.6})
	second := w.Spawn(stats.EnemyTypeZombie, geom.Vec3{X: 5})

	sim.Fire(geom.Vec3{}, geom.Vec3{X: 1}, 10, 5)
	sim.Advance(0.4)

	require.Zero(t, sim.Active())

	events := w.DrainDamageEvents()
	require.Len(t, events, 1)
	require.Equal(t, first, events[0].TargetID)

	untouched, ok := w.Get(second)
	require.True(t, ok)
	require.InDelta(t, 100.0, untouched.Stats.Health, 1e-9)
}

func TestProjectileIgnoresDeadEnemies(t *testing.T) {
	w := newCombatWorld()
	sim := NewSimulator(NewResolver(w, neverCritRNG(), nil))

	corpse := w.Spawn(stats.EnemyTypeZombie, geom.Vec3{X: 4})
	w.ApplyDamage(corpse, 100000, false)
	w.DrainDamageEvents()

	sim.Fire(geom.Vec3{}, geom.Vec3{X: 1}, 10, 5)
	sim.Advance(0.4)

	// The projectile flies straight through the corpse.
	require.Equal(t, 1, sim.Active())
	require.Empty(t, w.DrainDamageEvents())
}

func TestFireWeaponCarriesWeaponNumbers(t *testing.T) {
	w := newCombatWorld()
	sim := NewSimulator(NewResolver(w, neverCritRNG(), nil))

	crossbow, ok := stats.WeaponByName("crossbow")
	require.True(t, ok)

	id := sim.FireWeapon(geom.Vec3{}, geom.Vec3{X: 1}, crossbow)
	require.NotZero(t, id)

	snap := sim.Snapshot()
	require.Len(t, snap, 1)
	require.InDelta(t, crossbow.ProjectileSpeed, snap[0].Velocity.X, 1e-9)
}
