package sweep

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/num/quat"

	"github.com/banshee-data/odometry.report/internal/testutil"
)

func TestQuatToRPYIdentity(t *testing.T) {
	roll, pitch, yaw := QuatToRPY(quat.Number{Real: 1})
	testutil.AssertVec3Close(t, "identity", roll, pitch, yaw, 0, 0, 0, 0)
}

func TestQuatToRPYRoundTrip(t *testing.T) {
	cases := []struct{ roll, pitch, yaw float64 }{
		{0.1, 0, 0},
		{0, 0.2, 0},
		{0, 0, -1.3},
		{0.3, -0.4, 0.5},
		{-1.0, 1.2, 3.0},
	}
	for _, c := range cases {
		roll, pitch, yaw := QuatToRPY(RPYToQuat(c.roll, c.pitch, c.yaw))
		testutil.AssertClose(t, "roll", roll, c.roll, 1e-12)
		testutil.AssertClose(t, "pitch", pitch, c.pitch, 1e-12)
		testutil.AssertClose(t, "yaw", yaw, c.yaw, 1e-12)
	}
}

func TestQuatToRPYUnnormalized(t *testing.T) {
	q := RPYToQuat(0.2, -0.1, 0.9)
	scaled := quat.Number{Real: q.Real * 3, Imag: q.Imag * 3, Jmag: q.Jmag * 3, Kmag: q.Kmag * 3}
	roll, pitch, yaw := QuatToRPY(scaled)
	testutil.AssertClose(t, "roll", roll, 0.2, 1e-12)
	testutil.AssertClose(t, "pitch", pitch, -0.1, 1e-12)
	testutil.AssertClose(t, "yaw", yaw, 0.9, 1e-12)
}

func TestQuatToRPYZero(t *testing.T) {
	roll, pitch, yaw := QuatToRPY(quat.Number{})
	if roll != 0 || pitch != 0 || yaw != 0 {
		t.Fatalf("zero quaternion should decompose to zeros, got %v %v %v", roll, pitch, yaw)
	}
}

func TestQuatToRPYGimbalClamp(t *testing.T) {
	// Pitch at exactly +90° must not produce NaN from asin.
	q := RPYToQuat(0, math.Pi/2, 0)
	_, pitch, _ := QuatToRPY(q)
	testutil.AssertClose(t, "pitch", pitch, math.Pi/2, 1e-9)
}
