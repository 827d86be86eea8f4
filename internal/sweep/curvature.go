package sweep

import "math"

// Curvature proxy and rejection masks over the concatenated cloud. The
// curvature at index i is the squared norm of the 11-point second difference
// Σ C[i±1..5] − 10·C[i]; large values mark edges, small values planes.

// scratch holds the per-sweep working arrays, reused across revolutions to
// avoid reallocating ~40k-element slices at 10 Hz.
type scratch struct {
	curvature []float64
	sortInd   []int
	picked    []uint8
	label     []int8

	beamStart []int
	beamEnd   []int
	beamHas   []bool
}

func newScratch(beamCount int) *scratch {
	return &scratch{
		curvature: make([]float64, 0, MaxSweepPoints),
		sortInd:   make([]int, 0, MaxSweepPoints),
		picked:    make([]uint8, 0, MaxSweepPoints),
		label:     make([]int8, 0, MaxSweepPoints),
		beamStart: make([]int, beamCount),
		beamEnd:   make([]int, beamCount),
		beamHas:   make([]bool, beamCount),
	}
}

func (s *scratch) resize(n int) {
	if cap(s.curvature) < n {
		s.curvature = make([]float64, n)
		s.sortInd = make([]int, n)
		s.picked = make([]uint8, n)
		s.label = make([]int8, n)
	} else {
		s.curvature = s.curvature[:n]
		s.sortInd = s.sortInd[:n]
		s.picked = s.picked[:n]
		s.label = s.label[:n]
	}
	for i := range s.picked {
		s.picked[i] = 0
		s.label[i] = 0
	}
	for i := range s.beamStart {
		s.beamStart[i] = 0
		s.beamEnd[i] = 0
		s.beamHas[i] = false
	}
}

// computeCurvature fills the curvature, sort-index, picked and label arrays
// for all interior indices, and records per-beam [start+5, end−5] ranges so
// feature selection never uses a curvature window that crosses a beam
// boundary. Points near boundaries keep their (invalid) curvature values but
// fall outside the recorded ranges.
func (s *scratch) computeCurvature(cloud []CloudPoint) {
	n := len(cloud)
	s.resize(n)

	beamSeen := -1
	for i := curvatureMargin; i < n-curvatureMargin; i++ {
		var dx, dy, dz float64
		for k := -curvatureMargin; k <= curvatureMargin; k++ {
			if k == 0 {
				dx -= 10 * cloud[i].X
				dy -= 10 * cloud[i].Y
				dz -= 10 * cloud[i].Z
				continue
			}
			dx += cloud[i+k].X
			dy += cloud[i+k].Y
			dz += cloud[i+k].Z
		}
		s.curvature[i] = dx*dx + dy*dy + dz*dz
		s.sortInd[i] = i
		s.picked[i] = 0
		s.label[i] = 0

		// Beams are concatenated in order, so each beam transition is
		// observed at its first index only.
		beam := cloud[i].Beam()
		if beam >= 0 && beam < len(s.beamHas) {
			s.beamHas[beam] = true
		}
		if beam != beamSeen {
			beamSeen = beam
			if beam > 0 && beam < len(s.beamStart) {
				s.beamStart[beam] = i + curvatureMargin
				s.beamEnd[beam-1] = i - curvatureMargin
			}
		}
	}

	s.beamStart[0] = curvatureMargin
	s.beamEnd[len(s.beamEnd)-1] = n - curvatureMargin
}

// occlusionConfig bundles the rejection thresholds.
type occlusionConfig struct {
	gapSq        float64 // squared adjacent distance that triggers the test
	ratio        float64 // side-length ratio marking grazing surfaces
	outlierRatio float64 // isolated-point threshold relative to depth²
}

// markRejected flags points that downstream matching could not observe
// stably: runs adjacent to an occlusion boundary (the far side of a depth
// discontinuity sits on a surface nearly parallel to the beam) and isolated
// points whose distance to both neighbors is large relative to depth.
func (s *scratch) markRejected(cloud []CloudPoint, cfg occlusionConfig) {
	n := len(cloud)
	for i := curvatureMargin; i < n-curvatureMargin-1; i++ {
		diff := SquaredDistance(cloud[i+1], cloud[i])

		if diff > cfg.gapSq {
			d1 := Depth(cloud[i])
			d2 := Depth(cloud[i+1])

			if d1 > d2 {
				// Pull the farther point's ray in to the nearer
				// depth; a small residual means a grazing surface.
				dx := cloud[i+1].X - cloud[i].X*d2/d1
				dy := cloud[i+1].Y - cloud[i].Y*d2/d1
				dz := cloud[i+1].Z - cloud[i].Z*d2/d1
				if sqrtNorm(dx, dy, dz)/d2 < cfg.ratio {
					for k := i - curvatureMargin; k <= i; k++ {
						s.picked[k] = 1
					}
				}
			} else {
				dx := cloud[i+1].X*d1/d2 - cloud[i].X
				dy := cloud[i+1].Y*d1/d2 - cloud[i].Y
				dz := cloud[i+1].Z*d1/d2 - cloud[i].Z
				if sqrtNorm(dx, dy, dz)/d1 < cfg.ratio {
					for k := i + 1; k <= i+curvatureMargin+1; k++ {
						s.picked[k] = 1
					}
				}
			}
		}

		diff2 := SquaredDistance(cloud[i], cloud[i-1])
		dis := cloud[i].X*cloud[i].X + cloud[i].Y*cloud[i].Y + cloud[i].Z*cloud[i].Z
		if diff > cfg.outlierRatio*dis && diff2 > cfg.outlierRatio*dis {
			s.picked[i] = 1
		}
	}
}

func sqrtNorm(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}
