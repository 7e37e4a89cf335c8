package stats

// Base tuning for each enemy type. Zombies are slow bruisers that soak hits;
// bandits rove wider, strike harder, and break off sooner.
var enemyBase = map[EnemyType]EnemyStats{
	EnemyTypeZombie: {
		MaxHealth:      100,
		Speed:          3,
		Damage:         15,
		AttackRange:    2,
		DetectionRange: 15,
		AttackSpeed:    1,
		Defense:        5,
	},
	EnemyTypeBandit: {
		MaxHealth:      80,
		Speed:          4.5,
		Damage:         20,
		AttackRange:    2.5,
		DetectionRange: 20,
		AttackSpeed:    1.5,
		Defense:        10,
	},
}

// BaseFor returns a fresh, full-health attribute block for the given type.
// Unknown types fall back to the zombie block so a bad spawn request cannot
// produce a zero-stat enemy.
func BaseFor(enemyType EnemyType) EnemyStats {
	base, ok := enemyBase[enemyType]
	if !ok {
		base = enemyBase[EnemyTypeZombie]
	}
	base.Health = base.MaxHealth
	return base
}

// KnownEnemyTypes lists the spawnable types in declaration order.
func KnownEnemyTypes() []EnemyType {
	return []EnemyType{EnemyTypeZombie, EnemyTypeBandit}
}

// Weapon presets. Damage and range numbers are the single source of truth for
// both the input layer and the combat resolver.
var weaponPresets = map[string]Weapon{
	"sword": {
		Name:           "sword",
		Kind:           WeaponKindMelee,
		Damage:         25,
		Range:          3,
		AttackSpeed:    2,
		StaminaCost:    10,
		CritChance:     DefaultCritChance,
		CritMultiplier: DefaultCritMultiplier,
	},
	"axe": {
		Name:           "axe",
		Kind:           WeaponKindMelee,
		Damage:         40,
		Range:          2.5,
		AttackSpeed:    1,
		StaminaCost:    18,
		CritChance:     0.15,
		CritMultiplier: DefaultCritMultiplier,
	},
	"crossbow": {
		Name:            "crossbow",
		Kind:            WeaponKindRanged,
		Damage:          30,
		Range:           50,
		AttackSpeed:     1.2,
		Ammo:            8,
		MaxAmmo:         8,
		ReserveAmmo:     24,
		ReloadTime:      1.8,
		ProjectileSpeed: 40,
		CritChance:      DefaultCritChance,
		CritMultiplier:  DefaultCritMultiplier,
	},
}

// WeaponByName looks up a preset by its lowercase name.
func WeaponByName(name string) (Weapon, bool) {
	weapon, ok := weaponPresets[name]
	return weapon, ok
}

// DefaultWeapon is the preset players hold before choosing anything.
func DefaultWeapon() Weapon {
	return weaponPresets["sword"]
}

// KnownWeaponNames lists the preset names in a stable order.
func KnownWeaponNames() []string {
	return []string{"sword", "axe", "crossbow"}
}
