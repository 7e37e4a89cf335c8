// Package geom provides the small 3D vector toolkit shared by the AI,
// combat, and world packages. Coordinates follow the renderer's convention:
// X/Z span the ground plane, Y is up, and yaw is measured with Atan2(x, z)
// so a zero rotation faces positive Z.
package geom

import "math"

// ZeroEpsilon is the magnitude below which a vector is treated as having no
// direction. Normalizing such a vector yields the zero vector instead of NaN.
const ZeroEpsilon = 1e-9

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Length returns the Euclidean magnitude of v.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// LengthSq returns the squared magnitude, avoiding the square root when only
// comparisons are needed.
func (v Vec3) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Normalized returns the unit vector pointing in v's direction. Vectors
// shorter than ZeroEpsilon normalize to the zero vector so callers never see
// NaN components from a division by zero.
func (v Vec3) Normalized() Vec3 {
	length := v.Length()
	if length < ZeroEpsilon {
		return Vec3{}
	}
	return Vec3{X: v.X / length, Y: v.Y / length, Z: v.Z / length}
}

// Yaw returns the heading of v on the ground plane in radians, using the
// z-forward convention (Atan2 of X over Z).
func (v Vec3) Yaw() float64 {
	return math.Atan2(v.X, v.Z)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec3) float64 {
	return b.Sub(a).Length()
}

// DistanceSq returns the squared distance between a and b.
func DistanceSq(a, b Vec3) float64 {
	return b.Sub(a).LengthSq()
}
