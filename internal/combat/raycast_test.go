package combat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vide-coded/voxel-warfare/internal/geom"
)

func TestNearestAlongRayHitsTargetInFront(t *testing.T) {
	targets := []RayTarget{{ID: "zombie-1", Position: geom.Vec3{Z: -1}}}

	hit, ok := NearestAlongRay(geom.Vec3{}, geom.Vec3{Z: -1}, 2, targets)

	require.True(t, ok)
	require.Equal(t, "zombie-1", hit.ID)
	require.InDelta(t, 1.0, hit.Distance, 1e-9)
}

func TestNearestAlongRayRejectsBehindOrigin(t *testing.T) {
	targets := []RayTarget{{ID: "zombie-1", Position: geom.Vec3{Z: 1}}}

	_, ok := NearestAlongRay(geom.Vec3{}, geom.Vec3{Z: -1}, 2, targets)

	require.False(t, ok)
}

func TestNearestAlongRayRejectsBeyondMaxDistance(t *testing.T) {
	targets := []RayTarget{{ID: "zombie-1", Position: geom.Vec3{Z: -5}}}

	_, ok := NearestAlongRay(geom.Vec3{}, geom.Vec3{Z: -1}, 2, targets)

	require.False(t, ok)
}

func TestNearestAlongRayHitboxRadiusIsInclusive(t *testing.T) {
	onEdge := []RayTarget{{ID: "on-edge", Position: geom.Vec3{X: 1.0, Z: -1}}}
	outside := []RayTarget{{ID: "outside", Position: geom.Vec3{X: 1.1, Z: -1}}}

	_, ok := NearestAlongRay(geom.Vec3{}, geom.Vec3{Z: -1}, 2, onEdge)
	require.True(t, ok)

	_, ok = NearestAlongRay(geom.Vec3{}, geom.Vec3{Z: -1}, 2, outside)
	require.False(t, ok)
}

func TestNearestAlongRayPrefersSmallestRayDistance(t *testing.T) {
	// The grazing target sits closer along the ray; the dead-center target
	// is further out. Nearest along the ray wins despite the worse
	// perpendicular offset.
	targets := []RayTarget{
		{ID: "far-centered", Position: geom.Vec3{Z: -1.5}},
		{ID: "near-grazing", Position: geom.Vec3{X: 0.9, Z: -1}},
	}

	hit, ok := NearestAlongRay(geom.Vec3{}, geom.Vec3{Z: -1}, 2, targets)

	require.True(t, ok)
	require.Equal(t, "near-grazing", hit.ID)
	require.InDelta(t, 1.0, hit.Distance, 1e-9)
}

func TestNearestAlongRayRejectsDegenerateRay(t *testing.T) {
	targets := []RayTarget{{ID: "zombie-1", Position: geom.Vec3{Z: -1}}}

	_, ok := NearestAlongRay(geom.Vec3{}, geom.Vec3{}, 2, targets)
	require.False(t, ok)

	_, ok = NearestAlongRay(geom.Vec3{}, geom.Vec3{Z: -1}, 0, targets)
	require.False(t, ok)
}

func TestNearestAlongRayNormalizesDirection(t *testing.T) {
	targets := []RayTarget{{ID: "zombie-1", Position: geom.Vec3{Z: -1}}}

	hit, ok := NearestAlongRay(geom.Vec3{}, geom.Vec3{Z: -10}, 2, targets)

	require.True(t, ok)
	require.InDelta(t, 1.0, hit.Distance, 1e-9)
}
