package sweep

import (
	"math"
	"testing"
)

// S2: beam demultiplex from elevation geometry alone. Zero elevation lands
// in the r <= 0 branch and maps to the last beam.
func TestAssignBeam(t *testing.T) {
	deg2 := 2 * math.Pi / 180
	cases := []struct {
		name string
		p    Point
		beam int
		ok   bool
	}{
		{"level", Point{X: 1, Y: 0, Z: 0}, 15, true},
		{"up2", Point{X: math.Cos(deg2), Y: 0, Z: math.Sin(deg2)}, 2, true},
		{"down2", Point{X: math.Cos(deg2), Y: 0, Z: -math.Sin(deg2)}, 13, true},
		{"up15", Point{X: math.Cos(15 * math.Pi / 180), Y: 0, Z: math.Sin(15 * math.Pi / 180)}, 15, true},
		{"down15", Point{X: math.Cos(15 * math.Pi / 180), Y: 0, Z: -math.Sin(15 * math.Pi / 180)}, 0, true},
		{"up20", Point{X: math.Cos(20 * math.Pi / 180), Y: 0, Z: math.Sin(20 * math.Pi / 180)}, 0, false},
		{"down20", Point{X: math.Cos(20 * math.Pi / 180), Y: 0, Z: -math.Sin(20 * math.Pi / 180)}, 0, false},
	}
	for _, c := range cases {
		beam, ok := assignBeam(CanonicalFromNative(c.p), DefaultBeamCount)
		if ok != c.ok {
			t.Errorf("%s: ok = %v, want %v", c.name, ok, c.ok)
			continue
		}
		if ok && beam != c.beam {
			t.Errorf("%s: beam = %d, want %d", c.name, beam, c.beam)
		}
	}
}

func TestAssignBeamRounding(t *testing.T) {
	// 1.4° rounds to 1, 1.6° rounds to 2; −1.6° rounds to −2 → beam 13.
	mk := func(deg float64) Vec3 {
		rad := deg * math.Pi / 180
		return CanonicalFromNative(Point{X: math.Cos(rad), Y: 0, Z: math.Sin(rad)})
	}
	if beam, _ := assignBeam(mk(1.4), DefaultBeamCount); beam != 1 {
		t.Errorf("1.4° → beam %d, want 1", beam)
	}
	if beam, _ := assignBeam(mk(1.6), DefaultBeamCount); beam != 2 {
		t.Errorf("1.6° → beam %d, want 2", beam)
	}
	if beam, _ := assignBeam(mk(-1.6), DefaultBeamCount); beam != 13 {
		t.Errorf("−1.6° → beam %d, want 13", beam)
	}
}

func TestAzimuthTrackerAnchors(t *testing.T) {
	// Forward-looking start, full revolution back to nearly the same
	// azimuth: span must land in (π, 3π).
	first := Point{X: 1, Y: 0, Z: 0}
	last := Point{X: 1, Y: -0.001, Z: 0}
	a := newAzimuthTracker(first, last)
	span := a.endOri - a.startOri
	if span <= math.Pi || span >= 3*math.Pi {
		t.Fatalf("span = %v, want within (π, 3π)", span)
	}
}

func TestRelTimeMonotoneOverRevolution(t *testing.T) {
	// A clockwise revolution sampled uniformly should recover strictly
	// increasing fractional times spanning roughly [0, 1].
	const n = 720
	pts := make([]Point, n)
	for i := range pts {
		// Negative angle step: the device rotates clockwise.
		ang := -2 * math.Pi * float64(i) / float64(n)
		pts[i] = Point{X: math.Cos(ang), Y: math.Sin(ang), Z: 0}
	}

	a := newAzimuthTracker(pts[0], pts[n-1])
	prev := math.Inf(-1)
	for i, p := range pts {
		rel := a.relTime(CanonicalFromNative(p))
		if rel < prev-1e-9 {
			t.Fatalf("relTime not monotone at %d: %v after %v", i, rel, prev)
		}
		if rel < -0.5 || rel > 1.5 {
			t.Fatalf("relTime out of tolerated range at %d: %v", i, rel)
		}
		prev = rel
	}
	if prev < 0.9 {
		t.Errorf("final relTime = %v, want close to 1", prev)
	}
}
