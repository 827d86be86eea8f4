package sweep

// sweepMotion carries the IMU-derived motion state for the revolution being
// processed. The first point of the sweep snapshots the start state and
// defines the reference frame; every later point is corrected back to it.
type sweepMotion struct {
	startRoll  float64
	startPitch float64
	startYaw   float64
	startVelo  Vec3
	startShift Vec3

	curRoll  float64
	curPitch float64
	curYaw   float64
	curVelo  Vec3
	curShift Vec3

	shiftFromStart Vec3
	veloFromStart  Vec3
}

// setCurrent loads the interpolated pose for the current point.
func (m *sweepMotion) setCurrent(p imuPose) {
	m.curRoll = p.roll
	m.curPitch = p.pitch
	m.curYaw = p.yaw
	m.curVelo = p.velo
	m.curShift = p.shift
}

// snapshotStart records the current pose as the sweep's reference state.
func (m *sweepMotion) snapshotStart() {
	m.startRoll = m.curRoll
	m.startPitch = m.curPitch
	m.startYaw = m.curYaw
	m.startVelo = m.curVelo
	m.startShift = m.curShift
}

// shiftToStart computes the position distortion of the current point
// relative to the sweep start: the world-frame drift beyond constant-velocity
// motion, rotated into the start frame.
func (m *sweepMotion) shiftToStart(pointTime float64) {
	drift := m.curShift.Sub(m.startShift).Sub(m.startVelo.Scale(pointTime))
	m.shiftFromStart = RotateYXZInv(drift, m.startRoll, m.startPitch, m.startYaw)
}

// veloToStart computes the velocity delta of the current point relative to
// the sweep start, rotated into the start frame.
func (m *sweepMotion) veloToStart() {
	dv := m.curVelo.Sub(m.startVelo)
	m.veloFromStart = RotateYXZInv(dv, m.startRoll, m.startPitch, m.startYaw)
}

// transformToStart de-skews a canonical-frame point: rotate it into the
// world frame with the current orientation, back into the start frame with
// the start orientation, then add the accumulated shift.
func (m *sweepMotion) transformToStart(p *CloudPoint) {
	v := Vec3{X: p.X, Y: p.Y, Z: p.Z}
	world := RotateZXY(v, m.curRoll, m.curPitch, m.curYaw)
	local := RotateYXZInv(world, m.startRoll, m.startPitch, m.startYaw)
	p.X = local.X + m.shiftFromStart.X
	p.Y = local.Y + m.shiftFromStart.Y
	p.Z = local.Z + m.shiftFromStart.Z
}
