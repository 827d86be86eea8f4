package imuserial

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/banshee-data/odometry.report/internal/monitoring"
)

// UDPListener receives IMU sample lines over UDP, one or more lines per
// datagram. Intended for replay rigs and bench setups where the IMU bridge
// publishes over the network instead of a serial cable.
type UDPListener struct {
	address string
	sink    SampleSink
}

// NewUDPListener creates a listener delivering parsed samples to sink.
func NewUDPListener(address string, sink SampleSink) *UDPListener {
	return &UDPListener{address: address, sink: sink}
}

// Start blocks reading datagrams until the context is cancelled.
func (l *UDPListener) Start(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp", l.address)
	if err != nil {
		return fmt.Errorf("failed to resolve IMU UDP address: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on IMU UDP address: %w", err)
	}
	defer conn.Close()
	monitoring.Logf("IMU UDP listener started on %s", l.address)

	buffer := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
			n, _, err := conn.ReadFromUDP(buffer)
			if err != nil {
				if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
					continue
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				monitoring.Logf("IMU UDP read error: %v", err)
				continue
			}
			l.handleDatagram(string(buffer[:n]))
		}
	}
}

func (l *UDPListener) handleDatagram(payload string) {
	for _, line := range strings.Split(payload, "\n") {
		sample, ok, err := ParseLine(line)
		if err != nil {
			monitoring.Logf("imu udp: bad line: %v", err)
			continue
		}
		if ok {
			l.sink(sample)
		}
	}
}
