package qmath

import "math"

// AngleMod normalizes an angle in degrees into [0, 360).
func AngleMod(a float32) float32 {
	a = float32(math.Mod(float64(a), 360))
	if a < 0 {
		a += 360
	}
	return a
}

// LerpAngle interpolates between two angles in degrees, folding deltas larger
// than 180 degrees across the 360 boundary so that a 350 -> 5 turn passes
// through 0 instead of spinning the long way around.
func LerpAngle(from, to, t float32) float32 {
	delta := to - from
	if delta > 180 {
		delta -= 360
	} else if delta < -180 {
		delta += 360
	}
	return AngleMod(from + delta*t)
}

// LerpAngles applies LerpAngle per axis (pitch, yaw, roll).
func LerpAngles(from, to Vec3, t float32) Vec3 {
	return Vec3{
		LerpAngle(from[0], to[0], t),
		LerpAngle(from[1], to[1], t),
		LerpAngle(from[2], to[2], t),
	}
}

// AnglesFromVector derives pitch and yaw (degrees) from a direction vector.
// Roll is always zero.
func AnglesFromVector(dir Vec3) Vec3 {
	yaw := AngleMod(float32(math.Atan2(float64(dir[1]), float64(dir[0]))) * 180 / math.Pi)
	forward := math.Sqrt(float64(dir[0]*dir[0] + dir[1]*dir[1]))
	pitch := AngleMod(float32(math.Atan2(float64(dir[2]), forward)) * 180 / math.Pi)
	return Vec3{pitch, yaw, 0}
}
