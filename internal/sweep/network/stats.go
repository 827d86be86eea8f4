package network

import (
	"sync"
	"time"

	"github.com/banshee-data/odometry.report/internal/monitoring"
)

// PacketStats tracks ingest statistics with thread-safe operations.
type PacketStats struct {
	mu           sync.Mutex
	packetCount  int64
	byteCount    int64
	droppedCount int64
	pointCount   int64
	sweepCount   int64
	lastReset    time.Time
}

// NewPacketStats creates a new PacketStats instance.
func NewPacketStats() *PacketStats {
	return &PacketStats{lastReset: time.Now()}
}

// AddPacket increments packet count and byte count.
func (ps *PacketStats) AddPacket(bytes int) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.packetCount++
	ps.byteCount += int64(bytes)
}

// AddDropped increments dropped packet count.
func (ps *PacketStats) AddDropped() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.droppedCount++
}

// AddPoints increments parsed point count.
func (ps *PacketStats) AddPoints(count int) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.pointCount += int64(count)
}

// AddSweep increments the completed revolution count.
func (ps *PacketStats) AddSweep() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.sweepCount++
}

// GetAndReset returns current stats and resets counters.
func (ps *PacketStats) GetAndReset() (packets, bytes, dropped, points, sweeps int64, duration time.Duration) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	now := time.Now()
	duration = now.Sub(ps.lastReset)
	packets = ps.packetCount
	bytes = ps.byteCount
	dropped = ps.droppedCount
	points = ps.pointCount
	sweeps = ps.sweepCount

	ps.packetCount = 0
	ps.byteCount = 0
	ps.droppedCount = 0
	ps.pointCount = 0
	ps.sweepCount = 0
	ps.lastReset = now
	return
}

// LogStats logs formatted per-second statistics since the last reset.
func (ps *PacketStats) LogStats() {
	packets, bytes, dropped, points, sweeps, duration := ps.GetAndReset()
	if packets == 0 && dropped == 0 {
		return
	}
	secs := duration.Seconds()
	monitoring.Logf("lidar stats (/sec): %.2f MB, %.1f packets, %.0f points, %.1f sweeps",
		float64(bytes)/secs/(1024*1024), float64(packets)/secs,
		float64(points)/secs, float64(sweeps)/secs)
	if dropped > 0 {
		monitoring.Logf("lidar stats: %d dropped on forward", dropped)
	}
}
