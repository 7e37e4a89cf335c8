// Package stats defines the static combat tuning consumed by the simulation:
// per-enemy-type attribute blocks, weapon presets, and the damage formulas
// shared by melee and ranged resolution. Everything here is a closed table;
// nothing is loaded from data files or mutated at runtime.
package stats

// EnemyType enumerates the hostile archetypes the world can spawn.
type EnemyType string

const (
	EnemyTypeZombie EnemyType = "zombie"
	EnemyTypeBandit EnemyType = "bandit"
)

// EnemyStats is the attribute block attached to every enemy. Health tracks
// the live value; the remaining fields are fixed per type.
type EnemyStats struct {
	Health         float64 `json:"health"`
	MaxHealth      float64 `json:"maxHealth"`
	Speed          float64 `json:"speed"`
	Damage         float64 `json:"damage"`
	AttackRange    float64 `json:"attackRange"`
	DetectionRange float64 `json:"detectionRange"`
	AttackSpeed    float64 `json:"attackSpeed"`
	Defense        float64 `json:"defense"`
}

// WeaponKind splits the arsenal into melee swings and projectile launchers.
type WeaponKind string

const (
	WeaponKindMelee  WeaponKind = "melee"
	WeaponKindRanged WeaponKind = "ranged"
)

// Weapon describes one player-usable weapon preset. Ammo and stamina fields
// are bookkeeping for the input layer; the combat resolver only reads Damage,
// Range, ProjectileSpeed, and the crit pair.
type Weapon struct {
	Name            string     `json:"name"`
	Kind            WeaponKind `json:"kind"`
	Damage          float64    `json:"damage"`
	Range           float64    `json:"range"`
	AttackSpeed     float64    `json:"attackSpeed"`
	StaminaCost     float64    `json:"staminaCost,omitempty"`
	Ammo            int        `json:"ammo,omitempty"`
	MaxAmmo         int        `json:"maxAmmo,omitempty"`
	ReserveAmmo     int        `json:"reserveAmmo,omitempty"`
	ReloadTime      float64    `json:"reloadTime,omitempty"`
	ProjectileSpeed float64    `json:"projectileSpeed,omitempty"`
	CritChance      float64    `json:"critChance"`
	CritMultiplier  float64    `json:"critMultiplier"`
}

// EffectiveCritChance returns the configured crit chance, falling back to the
// default when the preset leaves it unset.
func (w Weapon) EffectiveCritChance() float64 {
	if w.CritChance <= 0 {
		return DefaultCritChance
	}
	return w.CritChance
}

// EffectiveCritMultiplier returns the configured crit multiplier, falling
// back to the default when the preset leaves it unset.
func (w Weapon) EffectiveCritMultiplier() float64 {
	if w.CritMultiplier <= 0 {
		return DefaultCritMultiplier
	}
	return w.CritMultiplier
}
