package sweep

import "math"

// Beam demultiplexing and sweep-time recovery. The sensor interleaves its 16
// beams at 2° vertical spacing (−15°…+15°); each unordered point is assigned
// back to its beam from elevation alone, and its fractional time within the
// revolution is recovered from its azimuth relative to the sweep anchors.

// assignBeam computes the beam index for a canonical-frame point from its
// elevation angle. The second return is false for points outside the ±15°
// fan, which are discarded.
func assignBeam(v Vec3, beamCount int) (int, bool) {
	angle := math.Atan(v.Y/math.Sqrt(v.X*v.X+v.Z*v.Z)) * 180 / math.Pi

	// Bias-then-truncate rounding; equals round-half-away-from-zero.
	rounded := int(angle + biasFor(angle))

	var beam int
	if rounded > 0 {
		beam = rounded
	} else {
		// Non-positive elevations are offset by beamCount−1, so −15…−1
		// map to beams 0…14; rounded == 0 maps to the last beam.
		beam = rounded + (beamCount - 1)
	}
	if beam < 0 || beam > beamCount-1 {
		return 0, false
	}
	return beam, true
}

func biasFor(angle float64) float64 {
	if angle < 0 {
		return -0.5
	}
	return 0.5
}

// azimuthTracker unwraps per-point azimuths against the sweep's start and
// end anchors to recover each point's fractional time within the revolution.
type azimuthTracker struct {
	startOri   float64
	endOri     float64
	halfPassed bool
}

// newAzimuthTracker derives the sweep anchors from the first and last points
// of the input cloud, in the native frame. The negation accounts for the
// sensor's clockwise rotation; the end anchor is normalized so that one
// revolution spans (π, 3π) — the cloud need not be exactly one turn.
func newAzimuthTracker(first, last Point) *azimuthTracker {
	startOri := -math.Atan2(first.Y, first.X)
	endOri := -math.Atan2(last.Y, last.X) + 2*math.Pi

	if endOri-startOri > 3*math.Pi {
		endOri -= 2 * math.Pi
	} else if endOri-startOri < math.Pi {
		endOri += 2 * math.Pi
	}
	return &azimuthTracker{startOri: startOri, endOri: endOri}
}

// relTime returns the point's fractional position within the sweep. Before
// the half-way flag trips, azimuths are clamped near the start anchor;
// after, near the end anchor. The result may slightly exceed [0, 1].
func (a *azimuthTracker) relTime(v Vec3) float64 {
	ori := -math.Atan2(v.X, v.Z)
	if !a.halfPassed {
		if ori < a.startOri-math.Pi/2 {
			ori += 2 * math.Pi
		} else if ori > a.startOri+math.Pi*3/2 {
			ori -= 2 * math.Pi
		}
		if ori-a.startOri > math.Pi {
			a.halfPassed = true
		}
	} else {
		ori += 2 * math.Pi
		if ori < a.endOri-math.Pi*3/2 {
			ori += 2 * math.Pi
		} else if ori > a.endOri+math.Pi/2 {
			ori -= 2 * math.Pi
		}
	}
	return (ori - a.startOri) / (a.endOri - a.startOri)
}
