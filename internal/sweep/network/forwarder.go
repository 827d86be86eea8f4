package network

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/banshee-data/odometry.report/internal/monitoring"
)

// DropStats is the statistics hook the forwarder reports send failures to.
type DropStats interface {
	AddDropped()
}

// PacketForwarder sends datagrams to a destination asynchronously so the
// processing path never blocks on the network. Sends that fail or overflow
// the queue are counted and summarized at the log interval.
type PacketForwarder struct {
	conn        *net.UDPConn
	channel     chan []byte
	stats       DropStats
	logInterval time.Duration
	address     string
}

// NewPacketForwarder creates a forwarder that sends to the given address.
func NewPacketForwarder(address string, stats DropStats, logInterval time.Duration) (*PacketForwarder, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve forward address: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to create forward connection: %w", err)
	}
	if logInterval == 0 {
		logInterval = time.Minute
	}
	return &PacketForwarder{
		conn:        conn,
		channel:     make(chan []byte, 1000),
		stats:       stats,
		logInterval: logInterval,
		address:     address,
	}, nil
}

// Start begins the forwarding goroutine. It drains the queue until the
// context is cancelled.
func (f *PacketForwarder) Start(ctx context.Context) {
	go func() {
		dropped := 0
		var lastErr error
		ticker := time.NewTicker(f.logInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				f.conn.Close()
				return
			case packet := <-f.channel:
				if _, err := f.conn.Write(packet); err != nil {
					dropped++
					lastErr = err
					if f.stats != nil {
						f.stats.AddDropped()
					}
				}
			case <-ticker.C:
				if dropped > 0 && lastErr != nil {
					monitoring.Logf("forwarder %s: dropped %d packets (latest: %v)",
						f.address, dropped, lastErr)
					dropped = 0
					lastErr = nil
				}
			}
		}
	}()
}

// ForwardAsync enqueues a packet for sending. The packet is dropped if the
// queue is full; the send path never blocks.
func (f *PacketForwarder) ForwardAsync(packet []byte) {
	buf := make([]byte, len(packet))
	copy(buf, packet)
	select {
	case f.channel <- buf:
	default:
		if f.stats != nil {
			f.stats.AddDropped()
		}
	}
}
