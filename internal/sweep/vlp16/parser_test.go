package vlp16

import (
	"encoding/binary"
	"math"
	"testing"
	"time"
)

// buildPacket assembles a synthetic VLP-16 packet. Each block carries the
// given azimuth (0.01° units) advanced by stepRaw per block, with every
// channel reporting the same raw distance.
func buildPacket(startAzRaw, stepRaw, distRaw uint16, intensity uint8, timestamp uint32) []byte {
	packet := make([]byte, PacketSize)
	for b := 0; b < BlocksPerPacket; b++ {
		base := b * BlockSize
		binary.BigEndian.PutUint16(packet[base:], BlockFlag)
		az := (startAzRaw + uint16(b)*stepRaw) % RotationMaxUnits
		binary.LittleEndian.PutUint16(packet[base+2:], az)
		for slot := 0; slot < SeqsPerBlock*ChannelsPerSeq; slot++ {
			off := base + 4 + slot*BytesPerChannel
			binary.LittleEndian.PutUint16(packet[off:], distRaw)
			packet[off+2] = intensity
		}
	}
	binary.LittleEndian.PutUint32(packet[BlocksPerPacket*BlockSize:], timestamp)
	return packet
}

func TestParsePacketFullReturns(t *testing.T) {
	p := NewParser()
	packet := buildPacket(0, 20, 2500, 99, 123456)

	returns, err := p.ParsePacket(packet)
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if want := BlocksPerPacket * SeqsPerBlock * ChannelsPerSeq; len(returns) != want {
		t.Fatalf("got %d returns, want %d", len(returns), want)
	}
	if p.LastTimestamp() != 123456 {
		t.Errorf("timestamp = %d, want 123456", p.LastTimestamp())
	}

	// Channel 0 of block 0 fires at azimuth 0, elevation −15°: the
	// native point sits forward and below.
	r0 := returns[0]
	dist := 2500 * DistanceResolution
	wantX := dist * math.Cos(-15*math.Pi/180)
	wantZ := dist * math.Sin(-15*math.Pi/180)
	if math.Abs(r0.Point.X-wantX) > 1e-9 || math.Abs(r0.Point.Y) > 1e-9 || math.Abs(r0.Point.Z-wantZ) > 1e-9 {
		t.Errorf("channel 0 point = %+v, want (%v, 0, %v)", r0.Point, wantX, wantZ)
	}
	if r0.Intensity != 99 {
		t.Errorf("intensity = %d, want 99", r0.Intensity)
	}
}

func TestParsePacketAzimuthDirection(t *testing.T) {
	p := NewParser()
	// Azimuth 90.00°: the device measures clockwise from +x, so the
	// return lands at native y < 0 (right of the sensor).
	packet := buildPacket(9000, 0, 2500, 0, 0)
	returns, err := p.ParsePacket(packet)
	if err != nil {
		t.Fatal(err)
	}
	r := returns[0]
	if r.Point.Y >= 0 {
		t.Errorf("azimuth 90° should map to y < 0, got %+v", r.Point)
	}
	if math.Abs(r.Point.X) > 1e-6 {
		t.Errorf("azimuth 90° should have x ≈ 0, got %v", r.Point.X)
	}
}

func TestParsePacketSkipsZeroDistance(t *testing.T) {
	p := NewParser()
	packet := buildPacket(0, 20, 0, 0, 0)
	returns, err := p.ParsePacket(packet)
	if err != nil {
		t.Fatal(err)
	}
	if len(returns) != 0 {
		t.Fatalf("zero-distance channels should be skipped, got %d returns", len(returns))
	}
}

func TestParsePacketRejectsMalformed(t *testing.T) {
	p := NewParser()

	if _, err := p.ParsePacket(make([]byte, 100)); err == nil {
		t.Error("short packet should error")
	}

	packet := buildPacket(0, 20, 2500, 0, 0)
	packet[0] = 0x00 // corrupt the first block flag
	if _, err := p.ParsePacket(packet); err == nil {
		t.Error("bad block flag should error")
	}

	packet = buildPacket(0, 20, 2500, 0, 0)
	binary.LittleEndian.PutUint16(packet[2:], 36001)
	if _, err := p.ParsePacket(packet); err == nil {
		t.Error("out-of-range azimuth should error")
	}
}

func TestSecondSequenceAzimuthInterpolated(t *testing.T) {
	p := NewParser()
	// Blocks step 0.4°; the second firing sequence should sit 0.2° on.
	packet := buildPacket(1000, 40, 2500, 0, 0)
	returns, err := p.ParsePacket(packet)
	if err != nil {
		t.Fatal(err)
	}

	seq1First := returns[0]
	seq2First := returns[ChannelsPerSeq]
	if got := seq2First.AzimuthDeg - seq1First.AzimuthDeg; math.Abs(got-0.2) > 1e-9 {
		t.Errorf("second sequence azimuth offset = %v, want 0.2", got)
	}
}

func TestAssemblerCutsOnWrap(t *testing.T) {
	var revs []*Revolution
	a := NewAssembler(AssemblerConfig{
		MinPoints:    10,
		OnRevolution: func(r *Revolution) { revs = append(revs, r) },
	})

	p := NewParser()
	now := time.Unix(1700000000, 0)

	// Sweep azimuth 0° → ~350° over several packets, then wrap.
	for start := 0; start < 35000; start += 240 * BlocksPerPacket / 12 {
		packet := buildPacket(uint16(start), 20, 2500, 0, 0)
		returns, err := p.ParsePacket(packet)
		if err != nil {
			t.Fatal(err)
		}
		a.AddReturns(returns, now)
	}
	if len(revs) != 0 {
		t.Fatalf("revolution cut before wrap: %d", len(revs))
	}

	// Wrap back to azimuth 0.
	packet := buildPacket(0, 20, 2500, 0, 0)
	returns, err := p.ParsePacket(packet)
	if err != nil {
		t.Fatal(err)
	}
	a.AddReturns(returns, now.Add(100*time.Millisecond))

	if len(revs) != 1 {
		t.Fatalf("got %d revolutions, want 1", len(revs))
	}
	if len(revs[0].Points) == 0 {
		t.Fatal("revolution has no points")
	}
	if got := revs[0].Stamp; math.Abs(got-1700000000.0) > 1e-6 {
		t.Errorf("stamp = %v, want 1700000000", got)
	}
}

func TestAssemblerDropsPartialRevolution(t *testing.T) {
	var revs []*Revolution
	a := NewAssembler(AssemblerConfig{
		MinPoints:    100000, // unattainable
		OnRevolution: func(r *Revolution) { revs = append(revs, r) },
	})

	p := NewParser()
	packet := buildPacket(35000, 20, 2500, 0, 0)
	returns, _ := p.ParsePacket(packet)
	a.AddReturns(returns, time.Now())

	packet = buildPacket(100, 20, 2500, 0, 0)
	returns, _ = p.ParsePacket(packet)
	a.AddReturns(returns, time.Now())

	if len(revs) != 0 {
		t.Fatalf("undersized revolution should be dropped, got %d", len(revs))
	}
}
