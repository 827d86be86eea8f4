package sweep

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// ImuSample is one inertial measurement after frame conversion: orientation
// as roll/pitch/yaw in the canonical ordering and gravity-removed linear
// acceleration in the canonical body frame.
type ImuSample struct {
	Time  float64 // seconds
	Roll  float64
	Pitch float64
	Yaw   float64
	Acc   Vec3
}

// NewImuSample converts a raw IMU reading (orientation quaternion plus
// native-frame linear acceleration, gravity included) into an ImuSample.
// Gravity is removed using the orientation, and the acceleration axes are
// permuted into the canonical frame.
func NewImuSample(t float64, q quat.Number, acc Vec3, gravity float64) ImuSample {
	roll, pitch, yaw := QuatToRPY(q)
	return ImuSample{
		Time:  t,
		Roll:  roll,
		Pitch: pitch,
		Yaw:   yaw,
		Acc: Vec3{
			X: acc.Y - math.Sin(roll)*math.Cos(pitch)*gravity,
			Y: acc.Z - math.Cos(roll)*math.Cos(pitch)*gravity,
			Z: acc.X + math.Sin(pitch)*gravity,
		},
	}
}

// imuState is one slot of the integration history: the sample plus the
// velocity and position integrated up to it.
type imuState struct {
	time  float64
	roll  float64
	pitch float64
	yaw   float64
	acc   Vec3 // world frame, gravity removed
	velo  Vec3 // integrated world velocity
	shift Vec3 // integrated world position
}

// imuHistory is a fixed-capacity circular buffer of integrated IMU states.
// last is the most recent written slot (-1 before any sample); front is the
// cloud processor's search hint and persists across sweeps.
type imuHistory struct {
	buf   []imuState
	last  int
	front int
	count int64 // samples ever ingested
}

func newImuHistory(capacity int) *imuHistory {
	if capacity < 2 {
		capacity = DefaultImuHistoryLen
	}
	return &imuHistory{buf: make([]imuState, capacity), last: -1}
}

// empty reports whether no sample has ever been ingested.
func (h *imuHistory) empty() bool { return h.last < 0 }

// add appends a sample, rotates its acceleration into the world frame and
// integrates velocity and position from the previous slot. Integration is
// paused when the inter-sample gap reaches scanPeriod: the slot inherits the
// previous velocity and position, implicitly assuming a near-stationary
// restart. Returns true when a pause occurred between two real samples.
func (h *imuHistory) add(s ImuSample, scanPeriod float64) (paused bool) {
	h.last = (h.last + 1) % len(h.buf)
	h.count++

	cur := &h.buf[h.last]
	cur.time = s.Time
	cur.roll = s.Roll
	cur.pitch = s.Pitch
	cur.yaw = s.Yaw
	cur.acc = RotateZXY(s.Acc, s.Roll, s.Pitch, s.Yaw)

	prev := &h.buf[(h.last+len(h.buf)-1)%len(h.buf)]
	dt := cur.time - prev.time
	if dt < scanPeriod {
		cur.shift = prev.shift.Add(prev.velo.Scale(dt)).Add(cur.acc.Scale(dt * dt / 2))
		cur.velo = prev.velo.Add(cur.acc.Scale(dt))
		return false
	}
	cur.velo = prev.velo
	cur.shift = prev.shift
	return h.count > 1
}

// imuPose is an interpolated IMU state at an arbitrary query time.
type imuPose struct {
	roll  float64
	pitch float64
	yaw   float64
	velo  Vec3
	shift Vec3
}

// lookup returns the IMU pose at query time tq, advancing front through the
// buffer until it passes tq. If the newest sample still predates tq, the
// newest sample's values are used directly — no extrapolation. Yaw jumps
// greater than π are unwrapped by ±2π before blending.
func (h *imuHistory) lookup(tq float64) imuPose {
	for h.front != h.last {
		if tq < h.buf[h.front].time {
			break
		}
		h.front = (h.front + 1) % len(h.buf)
	}

	front := &h.buf[h.front]
	if tq > front.time {
		// History exhausted: the sweep is newer than the latest IMU
		// sample, so the latest values stand in for the query time.
		return imuPose{
			roll:  front.roll,
			pitch: front.pitch,
			yaw:   front.yaw,
			velo:  front.velo,
			shift: front.shift,
		}
	}

	back := &h.buf[(h.front+len(h.buf)-1)%len(h.buf)]
	ratioFront := (tq - back.time) / (front.time - back.time)
	ratioBack := (front.time - tq) / (front.time - back.time)

	backYaw := back.yaw
	if front.yaw-back.yaw > math.Pi {
		backYaw += 2 * math.Pi
	} else if front.yaw-back.yaw < -math.Pi {
		backYaw -= 2 * math.Pi
	}

	return imuPose{
		roll:  front.roll*ratioFront + back.roll*ratioBack,
		pitch: front.pitch*ratioFront + back.pitch*ratioBack,
		yaw:   front.yaw*ratioFront + backYaw*ratioBack,
		velo:  front.velo.Scale(ratioFront).Add(back.velo.Scale(ratioBack)),
		shift: front.shift.Scale(ratioFront).Add(back.shift.Scale(ratioBack)),
	}
}

// latest returns the most recent integrated state. Valid only when the
// history is non-empty.
func (h *imuHistory) latest() *imuState { return &h.buf[h.last] }
