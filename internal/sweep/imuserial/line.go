// Package imuserial ingests IMU samples from line-oriented transports: a
// serial port in production, UDP datagrams for replay setups. Each line
// carries one sample as CSV:
//
//	t,qw,qx,qy,qz,ax,ay,az
//
// timestamp in seconds, orientation quaternion (w,x,y,z) and linear
// acceleration in the IMU-native frame with gravity included.
package imuserial

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/num/quat"

	"github.com/banshee-data/odometry.report/internal/sweep"
)

// Sample is one parsed IMU line, still in native terms.
type Sample struct {
	Time        float64
	Orientation quat.Number
	Accel       sweep.Vec3
}

// ParseLine parses one CSV sample line. Blank lines and #-comments return
// (zero, false, nil).
func ParseLine(line string) (Sample, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Sample{}, false, nil
	}

	fields := strings.Split(line, ",")
	if len(fields) != 8 {
		return Sample{}, false, fmt.Errorf("imu line has %d fields, want 8", len(fields))
	}

	var vals [8]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Sample{}, false, fmt.Errorf("imu field %d: %w", i, err)
		}
		vals[i] = v
	}

	return Sample{
		Time:        vals[0],
		Orientation: quat.Number{Real: vals[1], Imag: vals[2], Jmag: vals[3], Kmag: vals[4]},
		Accel:       sweep.Vec3{X: vals[5], Y: vals[6], Z: vals[7]},
	}, true, nil
}

// FormatLine renders a sample back to its CSV form, for bridges that
// publish samples over UDP.
func FormatLine(s Sample) string {
	return fmt.Sprintf("%.6f,%.9f,%.9f,%.9f,%.9f,%.6f,%.6f,%.6f",
		s.Time,
		s.Orientation.Real, s.Orientation.Imag, s.Orientation.Jmag, s.Orientation.Kmag,
		s.Accel.X, s.Accel.Y, s.Accel.Z)
}
