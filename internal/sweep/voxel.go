package sweep

import "math"

// voxelKey identifies one cell of the downsampling grid.
type voxelKey struct {
	x, y, z int32
}

// voxelCell accumulates the points falling into one cell.
type voxelCell struct {
	sum   Vec3
	inten float64
	n     int
}

// VoxelDownsample replaces each occupied cell of a cubic grid with the
// centroid of its points, intensity averaged alongside position. Output
// order follows first occupancy, so results are deterministic for a given
// input order. A non-positive leaf returns the input unchanged.
func VoxelDownsample(points []CloudPoint, leaf float64) []CloudPoint {
	if leaf <= 0 || len(points) == 0 {
		out := make([]CloudPoint, len(points))
		copy(out, points)
		return out
	}

	cells := make(map[voxelKey]int, len(points)/4+1)
	var order []voxelKey
	acc := make([]voxelCell, 0, len(points)/4+1)

	for _, p := range points {
		key := voxelKey{
			x: int32(math.Floor(p.X / leaf)),
			y: int32(math.Floor(p.Y / leaf)),
			z: int32(math.Floor(p.Z / leaf)),
		}
		idx, ok := cells[key]
		if !ok {
			idx = len(acc)
			cells[key] = idx
			order = append(order, key)
			acc = append(acc, voxelCell{})
		}
		c := &acc[idx]
		c.sum.X += p.X
		c.sum.Y += p.Y
		c.sum.Z += p.Z
		c.inten += p.Intensity
		c.n++
	}

	out := make([]CloudPoint, 0, len(order))
	for _, key := range order {
		c := acc[cells[key]]
		inv := 1.0 / float64(c.n)
		out = append(out, CloudPoint{
			X:         c.sum.X * inv,
			Y:         c.sum.Y * inv,
			Z:         c.sum.Z * inv,
			Intensity: c.inten * inv,
		})
	}
	return out
}
