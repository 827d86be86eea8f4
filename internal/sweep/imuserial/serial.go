package imuserial

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"

	"github.com/banshee-data/odometry.report/internal/monitoring"
)

// Porter defines the minimal interface needed for a serial port. This
// abstraction enables unit testing without real IMU hardware.
type Porter interface {
	io.Reader
	io.Closer
}

// SampleSink receives parsed IMU samples in reception order.
type SampleSink func(Sample)

// Reader reads IMU sample lines from a serial port and hands them to a
// sink. Lines that fail to parse are counted and logged, never fatal.
type Reader struct {
	port Porter
	sink SampleSink

	parseErrors int64
}

// OpenPort opens the serial device at the given path with IMU defaults
// (115200 8N1).
func OpenPort(path string) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open IMU serial port %s: %w", path, err)
	}
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set IMU read timeout: %w", err)
	}
	return port, nil
}

// NewReader creates a Reader over an open port.
func NewReader(port Porter, sink SampleSink) *Reader {
	return &Reader{port: port, sink: sink}
}

// Monitor reads sample lines until the context is cancelled or the port
// reaches EOF.
func (r *Reader) Monitor(ctx context.Context) error {
	scanner := bufio.NewScanner(r.port)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sample, ok, err := ParseLine(scanner.Text())
		if err != nil {
			r.parseErrors++
			if r.parseErrors%100 == 1 {
				monitoring.Logf("imu: %d unparseable lines (latest: %v)", r.parseErrors, err)
			}
			continue
		}
		if ok {
			r.sink(sample)
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("imu serial read: %w", err)
	}
	return ctx.Err()
}

// ParseErrors returns how many lines failed to parse.
func (r *Reader) ParseErrors() int64 { return r.parseErrors }

// Close closes the underlying port.
func (r *Reader) Close() error { return r.port.Close() }
