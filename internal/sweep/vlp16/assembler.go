package vlp16

import (
	"time"

	"github.com/banshee-data/odometry.report/internal/monitoring"
	"github.com/banshee-data/odometry.report/internal/sweep"
)

// Revolution is one full rotation of native-frame points, stamped with the
// wall-clock time of its first return.
type Revolution struct {
	Stamp  float64 // seconds
	Points []sweep.Point
}

// AssemblerConfig configures the revolution assembler.
type AssemblerConfig struct {
	// MinPoints guards against cutting a sweep from a partial rotation
	// (startup, dropouts). Default 1000.
	MinPoints int
	// WrapToleranceDeg is how far below the previous azimuth a return
	// must land to count as a wrap. Default 10°.
	WrapToleranceDeg float64
	// OnRevolution receives each completed revolution.
	OnRevolution func(*Revolution)
}

// Assembler accumulates parsed returns and cuts one Revolution per azimuth
// wrap. Returns arrive in firing order, so a wrap shows up as the azimuth
// dropping back toward zero.
type Assembler struct {
	cfg AssemblerConfig

	points      []sweep.Point
	lastAzimuth float64
	stamp       float64
	haveStamp   bool
	dropped     int
}

// NewAssembler creates an Assembler, filling config defaults.
func NewAssembler(cfg AssemblerConfig) *Assembler {
	if cfg.MinPoints == 0 {
		cfg.MinPoints = 1000
	}
	if cfg.WrapToleranceDeg == 0 {
		cfg.WrapToleranceDeg = 10.0
	}
	return &Assembler{
		cfg:         cfg,
		points:      make([]sweep.Point, 0, sweep.MaxSweepPoints),
		lastAzimuth: -1,
	}
}

// AddReturns folds one packet's returns into the current revolution,
// emitting a completed revolution when the azimuth wraps. The wall-clock
// receive time stamps the next revolution's first point.
func (a *Assembler) AddReturns(returns []Return, received time.Time) {
	for _, ret := range returns {
		if a.lastAzimuth >= 0 && ret.AzimuthDeg < a.lastAzimuth-a.cfg.WrapToleranceDeg {
			a.cut()
		}
		if !a.haveStamp {
			a.stamp = float64(received.UnixNano()) / float64(time.Second)
			a.haveStamp = true
		}
		a.points = append(a.points, ret.Point)
		a.lastAzimuth = ret.AzimuthDeg
	}
}

// cut finalizes the current revolution if it has enough points, otherwise
// discards it.
func (a *Assembler) cut() {
	if len(a.points) >= a.cfg.MinPoints {
		rev := &Revolution{
			Stamp:  a.stamp,
			Points: a.points,
		}
		if a.cfg.OnRevolution != nil {
			a.cfg.OnRevolution(rev)
		}
		a.points = make([]sweep.Point, 0, cap(a.points))
	} else if len(a.points) > 0 {
		a.dropped++
		monitoring.Logf("vlp16: dropped partial revolution with %d points (%d total)",
			len(a.points), a.dropped)
		a.points = a.points[:0]
	}
	a.haveStamp = false
}
