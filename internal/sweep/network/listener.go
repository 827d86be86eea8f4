package network

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/banshee-data/odometry.report/internal/monitoring"
	"github.com/banshee-data/odometry.report/internal/sweep/vlp16"
)

// StatsInterface provides packet statistics management.
type StatsInterface interface {
	AddPacket(bytes int)
	AddDropped()
	AddPoints(count int)
	LogStats()
}

// Parser parses LiDAR packets into native-frame returns.
type Parser interface {
	ParsePacket(packet []byte) ([]vlp16.Return, error)
}

// Assembler folds parsed returns into revolutions.
type Assembler interface {
	AddReturns(returns []vlp16.Return, received time.Time)
}

// UDPListener receives VLP-16 packets over UDP and feeds the parser and
// revolution assembler.
type UDPListener struct {
	address     string
	rcvBuf      int
	logInterval time.Duration
	stats       StatsInterface
	forwarder   *PacketForwarder
	parser      Parser
	assembler   Assembler
}

// UDPListenerConfig contains configuration options for the UDP listener.
type UDPListenerConfig struct {
	Address     string
	RcvBuf      int
	LogInterval time.Duration
	Stats       StatsInterface
	Forwarder   *PacketForwarder // optional raw packet tap
	Parser      Parser
	Assembler   Assembler
}

// NewUDPListener creates a new UDP listener with the provided configuration.
func NewUDPListener(config UDPListenerConfig) *UDPListener {
	stats := config.Stats
	if stats == nil {
		stats = &noopStats{}
	}
	logInterval := config.LogInterval
	if logInterval == 0 {
		logInterval = time.Minute
	}
	rcvBuf := config.RcvBuf
	if rcvBuf == 0 {
		rcvBuf = 8 << 20
	}
	return &UDPListener{
		address:     config.Address,
		rcvBuf:      rcvBuf,
		logInterval: logInterval,
		stats:       stats,
		forwarder:   config.Forwarder,
		parser:      config.Parser,
		assembler:   config.Assembler,
	}
}

// noopStats is a StatsInterface implementation that does nothing. It is the
// safe default when no stats collector is provided.
type noopStats struct{}

func (n *noopStats) AddPacket(bytes int) {}
func (n *noopStats) AddDropped()         {}
func (n *noopStats) AddPoints(count int) {}
func (n *noopStats) LogStats()           {}

// Start begins listening for UDP packets and processing them. It blocks
// until the context is cancelled.
func (l *UDPListener) Start(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp", l.address)
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on UDP address: %w", err)
	}
	defer conn.Close()

	if err := conn.SetReadBuffer(l.rcvBuf); err != nil {
		monitoring.Logf("warning: failed to set UDP receive buffer to %d: %v", l.rcvBuf, err)
	}
	monitoring.Logf("UDP listener started on %s with receive buffer %d bytes", l.address, l.rcvBuf)

	if l.forwarder != nil {
		l.forwarder.Start(ctx)
	}
	go l.statsLoop(ctx)

	buffer := make([]byte, 2048) // VLP-16 packets are 1206 bytes + margin
	for {
		select {
		case <-ctx.Done():
			monitoring.Logf("UDP listener stopping")
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
				monitoring.Logf("UDP read error: %v", err)
				continue
			}
			l.handlePacket(buffer[:n], time.Now())
		}
	}
}

// handlePacket processes a single received UDP payload.
func (l *UDPListener) handlePacket(packet []byte, received time.Time) {
	l.stats.AddPacket(len(packet))

	if l.forwarder != nil {
		l.forwarder.ForwardAsync(packet)
	}
	if l.parser == nil {
		return
	}

	returns, err := l.parser.ParsePacket(packet)
	if err != nil {
		monitoring.Logf("packet parse error: %v", err)
		return
	}
	l.stats.AddPoints(len(returns))
	if l.assembler != nil {
		l.assembler.AddReturns(returns, received)
	}
}

func (l *UDPListener) statsLoop(ctx context.Context) {
	// Report once shortly after startup, then on the configured interval.
	select {
	case <-ctx.Done():
		return
	case <-time.After(2 * time.Second):
		l.stats.LogStats()
	}

	ticker := time.NewTicker(l.logInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.stats.LogStats()
		}
	}
}
