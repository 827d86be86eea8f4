package sweep

import (
	"math"
	"testing"

	"github.com/banshee-data/odometry.report/internal/testutil"
)

func TestCanonicalFromNative(t *testing.T) {
	v := CanonicalFromNative(Point{X: 1, Y: 2, Z: 3})
	testutil.AssertVec3Close(t, "canonical", v.X, v.Y, v.Z, 2, 3, 1, 0)
}

func TestRotateZXYPureYaw(t *testing.T) {
	// Yaw rotates about the canonical y axis; a quarter turn takes
	// z-forward onto x.
	v := RotateZXY(Vec3{Z: 1}, 0, 0, math.Pi/2)
	testutil.AssertVec3Close(t, "yaw90", v.X, v.Y, v.Z, 1, 0, 0, 1e-12)
}

func TestRotateZXYPureRoll(t *testing.T) {
	// Roll rotates about the canonical z axis.
	v := RotateZXY(Vec3{X: 1}, math.Pi/2, 0, 0)
	testutil.AssertVec3Close(t, "roll90", v.X, v.Y, v.Z, 0, 1, 0, 1e-12)
}

func TestRotateInverseRoundTrip(t *testing.T) {
	roll, pitch, yaw := 0.3, -0.7, 2.1
	for _, v := range []Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {0.2, -1.5, 3.7}} {
		w := RotateYXZInv(RotateZXY(v, roll, pitch, yaw), roll, pitch, yaw)
		testutil.AssertVec3Close(t, "roundtrip", w.X, w.Y, w.Z, v.X, v.Y, v.Z, 1e-12)
	}
}

func TestRotationPreservesNorm(t *testing.T) {
	v := Vec3{X: 1.2, Y: -0.4, Z: 2.2}
	w := RotateZXY(v, 0.5, 1.1, -2.9)
	normIn := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	normOut := math.Sqrt(w.X*w.X + w.Y*w.Y + w.Z*w.Z)
	testutil.AssertClose(t, "norm", normOut, normIn, 1e-12)
}

func TestSquaredDistanceAndDepth(t *testing.T) {
	a := CloudPoint{X: 1, Y: 2, Z: 2}
	b := CloudPoint{X: 1, Y: 2, Z: 5}
	testutil.AssertClose(t, "sqdist", SquaredDistance(a, b), 9, 0)
	testutil.AssertClose(t, "depth", Depth(a), 3, 1e-15)
}
