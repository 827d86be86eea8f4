package sweep

// Registration defaults for a Velodyne VLP-16 spinning at 10 Hz.
const (
	// DefaultScanPeriod is the duration of one revolution in seconds.
	DefaultScanPeriod = 0.1
	// DefaultBeamCount is the number of vertically-offset laser beams.
	DefaultBeamCount = 16
	// DefaultWarmupSweeps is how many initial revolutions are discarded.
	DefaultWarmupSweeps = 20
	// DefaultImuHistoryLen is the capacity of the IMU integration ring.
	DefaultImuHistoryLen = 200
	// DefaultGravity is the gravitational acceleration removed from IMU
	// readings, in m/s².
	DefaultGravity = 9.81

	// MaxSweepPoints is the initial capacity of the per-sweep scratch
	// arrays; a larger sweep reallocates them. A full VLP-16 revolution is
	// ~30k points.
	MaxSweepPoints = 40000
)

// Feature selection thresholds.
const (
	// DefaultCurvatureThreshold separates edge picks (above) from planar
	// picks (below).
	DefaultCurvatureThreshold = 0.1
	// DefaultClusterSpreadSqDist is the squared neighbor distance beyond
	// which the pick-spreading walk stops.
	DefaultClusterSpreadSqDist = 0.05
	// DefaultOutlierRatio scales the squared depth when testing for
	// isolated points.
	DefaultOutlierRatio = 2e-4
	// DefaultOcclusionRatio is the side-length ratio below which a point
	// sits on a surface nearly parallel to the beam.
	DefaultOcclusionRatio = 0.1
	// DefaultOcclusionGapSq is the squared distance between adjacent
	// points that triggers the occlusion test.
	DefaultOcclusionGapSq = 0.1
	// DefaultVoxelLeafSize is the voxel edge length for the less-flat
	// downsample, in meters.
	DefaultVoxelLeafSize = 0.2

	// curvatureMargin is how many points at each end of a beam are
	// excluded from feature selection; the 11-point curvature window is
	// undefined there.
	curvatureMargin = 5
	// featureSegments is the number of azimuth segments each beam is
	// split into so picks spread around the revolution.
	featureSegments = 6

	maxSharpPerSegment  = 2
	maxCornerPerSegment = 20
	maxFlatPerSegment   = 4
)

// Vec3 is a 3-vector in whichever frame the context dictates.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Point is a raw LiDAR return in the sensor-native frame
// (x-forward, y-left, z-up).
type Point struct {
	X, Y, Z float64
}

// CloudPoint is a registered point in the canonical frame
// (z-forward, x-left, y-up). Intensity packs the beam index in its integer
// part and scanPeriod·relTime in its fractional part.
type CloudPoint struct {
	X, Y, Z   float64
	Intensity float64
}

// Beam returns the beam index packed into the intensity.
func (p CloudPoint) Beam() int { return int(p.Intensity) }

// SweepStats summarizes one processed revolution for monitoring and storage.
type SweepStats struct {
	PointsIn         int   // points received (after NaN filter)
	PointsKept       int   // points surviving beam demultiplex
	CornerSharp      int   // label=2 picks
	CornerLessSharp  int   // label>=1 picks
	SurfFlat         int   // label=-1 picks
	SurfLessFlat     int   // downsampled less-flat bulk
	ImuPauses        int64 // integration pauses observed up to this sweep
	DeskewApplied    bool  // false when no IMU sample has ever arrived
	ProcessingMicros int64

	// Curvature distribution over the valid range, for tuning.
	CurvatureMean   float64
	CurvatureStdDev float64
}

// ImuTrans is the four-triple motion summary published with each sweep:
// start orientation, end orientation, and the end point's de-skew shift and
// velocity delta relative to the sweep start, each packed (x,y,z).
type ImuTrans struct {
	StartRPY  Vec3 // (pitch, yaw, roll) at the first point
	CurRPY    Vec3 // (pitch, yaw, roll) at the last point
	ShiftFrom Vec3 // position distortion of the last point, start frame
	VeloFrom  Vec3 // velocity delta of the last point, start frame
}

// Registration is the full output bundle for one revolution. All clouds are
// in the canonical frame and stamped with the input cloud's timestamp.
type Registration struct {
	SweepID string  // unique id for this sweep
	Stamp   float64 // input cloud timestamp, seconds
	FrameID string  // fixed output frame identifier

	Cloud           []CloudPoint // full de-skewed cloud, beams 0..15 concatenated
	CornerSharp     []CloudPoint // highest-curvature edge points
	CornerLessSharp []CloudPoint // superset of CornerSharp
	SurfFlat        []CloudPoint // lowest-curvature planar points
	SurfLessFlat    []CloudPoint // voxel-downsampled planar bulk

	ImuTrans ImuTrans
	Stats    SweepStats
}
