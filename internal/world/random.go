package world

import (
	"hash/fnv"
	"math/rand"
)

// DeterministicSeedValue folds a root seed and subsystem label into a 64-bit
// seed. The same pair always yields the same stream, which is what keeps two
// identically configured runs in lockstep.
func DeterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// NewDeterministicRNG builds a seeded RNG for the given subsystem label.
func NewDeterministicRNG(rootSeed, label string) *rand.Rand {
	return rand.New(rand.NewSource(DeterministicSeedValue(rootSeed, label)))
}

// SubsystemRNG returns a deterministic RNG derived from the world seed. The
// combat resolver draws its crit rolls from one of these.
func (w *World) SubsystemRNG(label string) *rand.Rand {
	seed := DefaultSeed
	if w != nil && w.seed != "" {
		seed = w.seed
	}
	return NewDeterministicRNG(seed, label)
}
