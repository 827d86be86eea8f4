package sweep

import "math"

// Two frames matter here. The sensor-native frame is x-forward, y-left, z-up.
// The canonical frame is z-forward, x-left, y-up, reached by the permutation
// (x', y', z') = (y, z, x). In the canonical frame the composed body rotation
// is R = Ry(yaw)·Rx(pitch)·Rz(roll); the order is a consequence of the axis
// permutation and must not be normalized to a conventional RPY composition.

// CanonicalFromNative permutes a native-frame point into the canonical frame.
func CanonicalFromNative(p Point) Vec3 {
	return Vec3{X: p.Y, Y: p.Z, Z: p.X}
}

// RotateZXY applies R = Ry(yaw)·Rx(pitch)·Rz(roll) to v: roll about z first,
// then pitch about x, then yaw about y. This takes a canonical body-frame
// vector into the world frame.
func RotateZXY(v Vec3, roll, pitch, yaw float64) Vec3 {
	sinRoll, cosRoll := math.Sincos(roll)
	x1 := cosRoll*v.X - sinRoll*v.Y
	y1 := sinRoll*v.X + cosRoll*v.Y
	z1 := v.Z

	sinPitch, cosPitch := math.Sincos(pitch)
	x2 := x1
	y2 := cosPitch*y1 - sinPitch*z1
	z2 := sinPitch*y1 + cosPitch*z1

	sinYaw, cosYaw := math.Sincos(yaw)
	return Vec3{
		X: cosYaw*x2 + sinYaw*z2,
		Y: y2,
		Z: -sinYaw*x2 + cosYaw*z2,
	}
}

// RotateYXZInv applies R⁻¹ = Rz(roll)⁻¹·Rx(pitch)⁻¹·Ry(yaw)⁻¹ to v: yaw
// undone first, then pitch, then roll. This takes a world-frame vector into
// the canonical body frame of the given orientation.
func RotateYXZInv(v Vec3, roll, pitch, yaw float64) Vec3 {
	sinYaw, cosYaw := math.Sincos(yaw)
	x1 := cosYaw*v.X - sinYaw*v.Z
	y1 := v.Y
	z1 := sinYaw*v.X + cosYaw*v.Z

	sinPitch, cosPitch := math.Sincos(pitch)
	x2 := x1
	y2 := cosPitch*y1 + sinPitch*z1
	z2 := -sinPitch*y1 + cosPitch*z1

	sinRoll, cosRoll := math.Sincos(roll)
	return Vec3{
		X: cosRoll*x2 + sinRoll*y2,
		Y: -sinRoll*x2 + cosRoll*y2,
		Z: z2,
	}
}

// SquaredDistance returns the squared Euclidean distance between two cloud
// points.
func SquaredDistance(a, b CloudPoint) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return dx*dx + dy*dy + dz*dz
}

// Depth returns the Euclidean norm of the point position.
func Depth(p CloudPoint) float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}
