package world

import "math"

// Vec3 is a position/rotation-axis vector. X/Z are the ground plane, Y is
// height — matching the convention the client uses for position fields
// throughout §3/§4 (map ranges, gimmick targets, NPC pathing).
type Vec3 struct {
	X, Y, Z float32
}

// DistanceXZ returns planar distance, ignoring height, matching the 15.0/10.0
// unit aggro/leash thresholds and map-range checks in §4.4 (those are ground
// distances; a flying player directly overhead is still "in range").
func DistanceXZ(a, b Vec3) float32 {
	dx := float64(a.X - b.X)
	dz := float64(a.Z - b.Z)
	return float32(math.Sqrt(dx*dx + dz*dz))
}

// HeadingTo returns the facing angle (radians) from a to b using the
// atan2(-dz, dx) convention named explicitly in §4.4's const pathing pass.
func HeadingTo(a, b Vec3) float32 {
	return float32(math.Atan2(float64(-(b.Z - a.Z)), float64(b.X-a.X)))
}

// Lerp linearly interpolates between a and b by t in [0,1].
func Lerp(a, b Vec3, t float32) Vec3 {
	return Vec3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}
