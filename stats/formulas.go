package stats

import "math"

// Crit defaults applied when a weapon preset leaves the fields unset.
const (
	DefaultCritChance     = 0.1
	DefaultCritMultiplier = 2.0
)

// mitigationPivot controls the diminishing-returns curve: at defense equal to
// the pivot, half of incoming damage is absorbed.
const mitigationPivot = 100.0

// Mitigate applies defense reduction to raw damage and returns the integer
// amount actually dealt. Reduction follows defense / (defense + pivot), the
// result is floored, and a hit never resolves below 1 point.
func Mitigate(raw, defense float64) int {
	if defense < 0 {
		defense = 0
	}
	reduction := defense / (defense + mitigationPivot)
	final := math.Floor(raw * (1 - reduction))
	if final < 1 {
		return 1
	}
	return int(final)
}

// CritDamage scales raw damage by the weapon's crit multiplier when the roll
// succeeded. Mitigation happens afterwards, in Mitigate.
func CritDamage(raw float64, critical bool, multiplier float64) float64 {
	if !critical {
		return raw
	}
	if multiplier <= 0 {
		multiplier = DefaultCritMultiplier
	}
	return raw * multiplier
}
