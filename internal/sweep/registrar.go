package sweep

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/odometry.report/internal/monitoring"
	"github.com/banshee-data/odometry.report/internal/units"
)

// CounterImuPaused counts IMU slots where integration froze because the
// inter-sample gap reached the scan period. Motion across such gaps is
// silently discarded, so the counter is the only trace of it.
const CounterImuPaused = "imu_integration_paused"

// CounterPointsDiscarded counts points dropped for falling outside the
// sensor's beam fan.
const CounterPointsDiscarded = "points_discarded"

// Publisher receives completed registrations. Implementations must not
// retain the slices beyond the call unless they copy them.
type Publisher interface {
	PublishRegistration(*Registration)
}

// RegistrarConfig configures a Registrar. Zero fields take the package
// defaults.
type RegistrarConfig struct {
	ScanPeriod    float64
	BeamCount     int
	WarmupSweeps  int // sweeps to drop after startup; -1 disables warm-up
	ImuHistoryLen int
	Gravity       float64

	CurvatureThreshold  float64
	ClusterSpreadSqDist float64
	OutlierRatio        float64
	OcclusionRatio      float64
	OcclusionGapSq      float64
	VoxelLeafSize       float64

	Publisher Publisher // optional; ProcessCloud also returns the bundle
}

// Registrar owns all scan-registration state: the IMU integration history,
// the per-sweep scratch arrays and the warm-up counter. Handlers are not
// safe for concurrent use; the transport layer serializes them.
type Registrar struct {
	cfg     RegistrarConfig
	history *imuHistory
	scratch *scratch
	motion  sweepMotion

	warmupSeen int
	warmedUp   bool
	imuPauses  int64
}

// NewRegistrar creates a Registrar, filling zero config fields with the
// package defaults.
func NewRegistrar(cfg RegistrarConfig) *Registrar {
	if cfg.ScanPeriod == 0 {
		cfg.ScanPeriod = DefaultScanPeriod
	}
	if cfg.BeamCount == 0 {
		cfg.BeamCount = DefaultBeamCount
	}
	if cfg.WarmupSweeps == 0 {
		cfg.WarmupSweeps = DefaultWarmupSweeps
	} else if cfg.WarmupSweeps < 0 {
		cfg.WarmupSweeps = 0
	}
	if cfg.ImuHistoryLen == 0 {
		cfg.ImuHistoryLen = DefaultImuHistoryLen
	}
	if cfg.Gravity == 0 {
		cfg.Gravity = DefaultGravity
	}
	if cfg.CurvatureThreshold == 0 {
		cfg.CurvatureThreshold = DefaultCurvatureThreshold
	}
	if cfg.ClusterSpreadSqDist == 0 {
		cfg.ClusterSpreadSqDist = DefaultClusterSpreadSqDist
	}
	if cfg.OutlierRatio == 0 {
		cfg.OutlierRatio = DefaultOutlierRatio
	}
	if cfg.OcclusionRatio == 0 {
		cfg.OcclusionRatio = DefaultOcclusionRatio
	}
	if cfg.OcclusionGapSq == 0 {
		cfg.OcclusionGapSq = DefaultOcclusionGapSq
	}
	if cfg.VoxelLeafSize == 0 {
		cfg.VoxelLeafSize = DefaultVoxelLeafSize
	}

	return &Registrar{
		cfg:     cfg,
		history: newImuHistory(cfg.ImuHistoryLen),
		scratch: newScratch(cfg.BeamCount),
	}
}

// HandleImu ingests one raw IMU reading: orientation quaternion plus
// native-frame linear acceleration with gravity still included.
func (r *Registrar) HandleImu(t float64, q quat.Number, acc Vec3) {
	r.IngestSample(NewImuSample(t, q, acc, r.cfg.Gravity))
}

// IngestSample ingests an already-converted IMU sample. Exposed for tests
// and replay sources that carry samples in canonical form.
func (r *Registrar) IngestSample(s ImuSample) {
	if r.history.add(s, r.cfg.ScanPeriod) {
		r.imuPauses++
		monitoring.AddCounter(CounterImuPaused, 1)
	}
}

// ImuPauses returns how many integration pauses have been observed since
// startup.
func (r *Registrar) ImuPauses() int64 { return r.imuPauses }

// ProcessCloud registers one revolution of native-frame points stamped at
// the given time. It returns nil while warming up; otherwise it returns the
// registration bundle and, if a publisher is configured, hands it over.
func (r *Registrar) ProcessCloud(stamp float64, pts []Point) *Registration {
	if !r.warmedUp {
		r.warmupSeen++
		if r.warmupSeen >= r.cfg.WarmupSweeps {
			r.warmedUp = true
		}
		if r.cfg.WarmupSweeps > 0 {
			return nil
		}
	}

	started := time.Now()

	pts = dropInvalid(pts)

	reg := &Registration{
		SweepID: uuid.NewString(),
		Stamp:   stamp,
		FrameID: units.FrameCamera,
	}

	cloud, trans, kept := r.assemble(stamp, pts)
	reg.Cloud = cloud
	reg.ImuTrans = trans

	if len(cloud) > 0 {
		r.scratch.computeCurvature(cloud)
		r.scratch.markRejected(cloud, occlusionConfig{
			gapSq:        r.cfg.OcclusionGapSq,
			ratio:        r.cfg.OcclusionRatio,
			outlierRatio: r.cfg.OutlierRatio,
		})
		features := r.scratch.selectFeatures(cloud, featureConfig{
			curvatureThreshold: r.cfg.CurvatureThreshold,
			clusterSpreadSq:    r.cfg.ClusterSpreadSqDist,
			voxelLeaf:          r.cfg.VoxelLeafSize,
		})
		reg.CornerSharp = features.cornerSharp
		reg.CornerLessSharp = features.cornerLessSharp
		reg.SurfFlat = features.surfFlat
		reg.SurfLessFlat = features.surfLessFlat
	}

	reg.Stats = SweepStats{
		PointsIn:         len(pts),
		PointsKept:       kept,
		CornerSharp:      len(reg.CornerSharp),
		CornerLessSharp:  len(reg.CornerLessSharp),
		SurfFlat:         len(reg.SurfFlat),
		SurfLessFlat:     len(reg.SurfLessFlat),
		ImuPauses:        r.imuPauses,
		DeskewApplied:    !r.history.empty(),
		ProcessingMicros: time.Since(started).Microseconds(),
	}
	r.fillCurvatureStats(&reg.Stats, len(cloud))

	if r.cfg.Publisher != nil {
		r.cfg.Publisher.PublishRegistration(reg)
	}
	return reg
}

// assemble demultiplexes the revolution into per-beam lists, de-skews each
// point against the IMU history and concatenates beams 0..N-1 into one
// cloud. Returns the cloud, the sweep's imuTrans summary and how many
// points survived beam assignment.
func (r *Registrar) assemble(stamp float64, pts []Point) ([]CloudPoint, ImuTrans, int) {
	if len(pts) == 0 {
		return nil, ImuTrans{}, 0
	}

	tracker := newAzimuthTracker(pts[0], pts[len(pts)-1])
	beams := make([][]CloudPoint, r.cfg.BeamCount)

	kept := 0
	for i, p := range pts {
		v := CanonicalFromNative(p)
		beam, ok := assignBeam(v, r.cfg.BeamCount)
		if !ok {
			monitoring.AddCounter(CounterPointsDiscarded, 1)
			continue
		}

		relTime := tracker.relTime(v)
		cp := CloudPoint{
			X:         v.X,
			Y:         v.Y,
			Z:         v.Z,
			Intensity: float64(beam) + r.cfg.ScanPeriod*relTime,
		}

		if !r.history.empty() {
			pointTime := relTime * r.cfg.ScanPeriod
			r.motion.setCurrent(r.history.lookup(stamp + pointTime))
			if i == 0 {
				// The first point defines the reference frame;
				// it is recorded, not transformed.
				r.motion.snapshotStart()
			} else {
				r.motion.shiftToStart(pointTime)
				r.motion.veloToStart()
				r.motion.transformToStart(&cp)
			}
		}

		beams[beam] = append(beams[beam], cp)
		kept++
	}

	cloud := make([]CloudPoint, 0, kept)
	for _, b := range beams {
		cloud = append(cloud, b...)
	}

	// Cur state holds the last processed point by construction.
	trans := ImuTrans{
		StartRPY:  Vec3{X: r.motion.startPitch, Y: r.motion.startYaw, Z: r.motion.startRoll},
		CurRPY:    Vec3{X: r.motion.curPitch, Y: r.motion.curYaw, Z: r.motion.curRoll},
		ShiftFrom: r.motion.shiftFromStart,
		VeloFrom:  r.motion.veloFromStart,
	}
	return cloud, trans, kept
}

// fillCurvatureStats records the curvature distribution over the valid
// interior range for tuning dashboards.
func (r *Registrar) fillCurvatureStats(stats *SweepStats, cloudLen int) {
	if cloudLen <= 2*curvatureMargin {
		return
	}
	valid := r.scratch.curvature[curvatureMargin : cloudLen-curvatureMargin]
	mean, std := stat.MeanStdDev(valid, nil)
	if !math.IsNaN(mean) {
		stats.CurvatureMean = mean
	}
	if !math.IsNaN(std) {
		stats.CurvatureStdDev = std
	}
}

// dropInvalid filters NaN and infinite coordinates in place.
func dropInvalid(pts []Point) []Point {
	out := pts[:0]
	for _, p := range pts {
		if isFinite(p.X) && isFinite(p.Y) && isFinite(p.Z) {
			out = append(out, p)
		}
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
