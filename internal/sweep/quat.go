package sweep

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// QuatToRPY decomposes a unit orientation quaternion into roll, pitch and yaw
// about the fixed X, Y, Z axes of the sensor-native frame, such that
// R = Rz(yaw)·Ry(pitch)·Rx(roll). This matches the decomposition IMU drivers
// report for an x-forward, y-left, z-up body.
func QuatToRPY(q quat.Number) (roll, pitch, yaw float64) {
	// Normalize defensively; integration drift upstream can leave the
	// quaternion slightly off unit length.
	n := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if n == 0 {
		return 0, 0, 0
	}
	w, x, y, z := q.Real/n, q.Imag/n, q.Jmag/n, q.Kmag/n

	roll = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))

	sinPitch := 2 * (w*y - z*x)
	if sinPitch > 1 {
		sinPitch = 1
	} else if sinPitch < -1 {
		sinPitch = -1
	}
	pitch = math.Asin(sinPitch)

	yaw = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return roll, pitch, yaw
}

// RPYToQuat composes roll, pitch, yaw about fixed X, Y, Z axes back into a
// unit quaternion. Inverse of QuatToRPY away from the pitch singularity.
func RPYToQuat(roll, pitch, yaw float64) quat.Number {
	sr, cr := math.Sincos(roll / 2)
	sp, cp := math.Sincos(pitch / 2)
	sy, cy := math.Sincos(yaw / 2)

	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}
