package sweep

// Feature selection. Each beam's curvature-valid range is split into six
// azimuth segments; within each segment the points are ranked by curvature
// and a bounded number of edge and planar features is picked, with a
// neighbor-spreading walk that keeps picks from clustering.

// featureConfig bundles the selection thresholds.
type featureConfig struct {
	curvatureThreshold float64
	clusterSpreadSq    float64
	voxelLeaf          float64
}

// featureSet accumulates the per-sweep outputs of the selection pass.
type featureSet struct {
	cornerSharp     []CloudPoint
	cornerLessSharp []CloudPoint
	surfFlat        []CloudPoint
	surfLessFlat    []CloudPoint
}

// selectFeatures runs the full selection over the concatenated cloud.
// computeCurvature and markRejected must have run first.
func (s *scratch) selectFeatures(cloud []CloudPoint, cfg featureConfig) featureSet {
	var out featureSet

	var lessFlatScan []CloudPoint
	for beam := 0; beam < len(s.beamStart); beam++ {
		if !s.beamHas[beam] {
			// A beam never observed in the interior leaves a
			// degenerate index range; selecting from it would read
			// other beams' points.
			continue
		}
		lessFlatScan = lessFlatScan[:0]

		for seg := 0; seg < featureSegments; seg++ {
			sp := (s.beamStart[beam]*(featureSegments-seg) + s.beamEnd[beam]*seg) / featureSegments
			ep := (s.beamStart[beam]*(featureSegments-seg-1) + s.beamEnd[beam]*(seg+1)) / featureSegments
			ep--
			if ep < sp {
				// A beam whose range no later transition closed
				// leaves a degenerate range; skip rather than walk
				// it backwards.
				continue
			}

			s.sortSegment(sp, ep)
			s.pickCorners(cloud, sp, ep, cfg, &out)
			s.pickPlanar(cloud, sp, ep, cfg, &out)

			// Everything not labeled as an edge joins the planar bulk.
			for k := sp; k <= ep; k++ {
				if s.label[k] <= 0 {
					lessFlatScan = append(lessFlatScan, cloud[k])
				}
			}
		}

		out.surfLessFlat = append(out.surfLessFlat, VoxelDownsample(lessFlatScan, cfg.voxelLeaf)...)
	}
	return out
}

// sortSegment orders sortInd[sp..ep] ascending by curvature with an
// insertion sort. Segments hold ~50–100 points; the sort is stable, so ties
// stay in original index order and the selection is reproducible.
func (s *scratch) sortSegment(sp, ep int) {
	for k := sp + 1; k <= ep; k++ {
		ind := s.sortInd[k]
		c := s.curvature[ind]
		l := k - 1
		for l >= sp && s.curvature[s.sortInd[l]] > c {
			s.sortInd[l+1] = s.sortInd[l]
			l--
		}
		s.sortInd[l+1] = ind
	}
}

// pickCorners walks the segment from highest curvature down, picking up to
// two sharp and twenty total corner points above the curvature threshold.
func (s *scratch) pickCorners(cloud []CloudPoint, sp, ep int, cfg featureConfig, out *featureSet) {
	picked := 0
	for k := ep; k >= sp; k-- {
		ind := s.sortInd[k]
		if s.picked[ind] != 0 || s.curvature[ind] <= cfg.curvatureThreshold {
			continue
		}

		picked++
		if picked <= maxSharpPerSegment {
			s.label[ind] = 2
			out.cornerSharp = append(out.cornerSharp, cloud[ind])
			out.cornerLessSharp = append(out.cornerLessSharp, cloud[ind])
		} else if picked <= maxCornerPerSegment {
			s.label[ind] = 1
			out.cornerLessSharp = append(out.cornerLessSharp, cloud[ind])
		} else {
			break
		}

		s.spreadPick(cloud, ind, cfg.clusterSpreadSq)
	}
}

// pickPlanar walks the segment from lowest curvature up, picking up to four
// planar points below the curvature threshold.
func (s *scratch) pickPlanar(cloud []CloudPoint, sp, ep int, cfg featureConfig, out *featureSet) {
	picked := 0
	for k := sp; k <= ep; k++ {
		ind := s.sortInd[k]
		if s.picked[ind] != 0 || s.curvature[ind] >= cfg.curvatureThreshold {
			continue
		}

		s.label[ind] = -1
		out.surfFlat = append(out.surfFlat, cloud[ind])

		picked++
		if picked >= maxFlatPerSegment {
			break
		}

		s.spreadPick(cloud, ind, cfg.clusterSpreadSq)
	}
}

// spreadPick masks the picked index and walks outward up to five neighbors
// on each side, masking until the chain breaks (squared step distance above
// the spread threshold). This keeps features spatially distributed.
func (s *scratch) spreadPick(cloud []CloudPoint, ind int, spreadSq float64) {
	s.picked[ind] = 1
	for l := 1; l <= curvatureMargin; l++ {
		if SquaredDistance(cloud[ind+l], cloud[ind+l-1]) > spreadSq {
			break
		}
		s.picked[ind+l] = 1
	}
	for l := -1; l >= -curvatureMargin; l-- {
		if SquaredDistance(cloud[ind+l], cloud[ind+l+1]) > spreadSq {
			break
		}
		s.picked[ind+l] = 1
	}
}
