package vlp16

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/banshee-data/odometry.report/internal/sweep"
)

/*
VLP-16 LiDAR Packet Parser

The VLP-16 sends 1206-byte UDP payloads containing measurements from 16 laser
channels organized into 12 data blocks per packet. In single-return mode each
block carries two firing sequences (32 channel slots), so a packet holds up to
384 returns.

PACKET STRUCTURE (1206 bytes total):
├── Data Blocks (1200 bytes) - 12 blocks × 100 bytes each, starting at offset 0
│   └── Each block: 2-byte flag (0xFFEE) + 2-byte azimuth + 32 channels × 3 bytes
│       (distance + reflectivity)
└── Tail (6 bytes) - 4-byte microsecond timestamp + 2-byte factory field

Distances are reported in 2 mm units; azimuths in 0.01° units. The second
firing sequence of each block reuses the block azimuth; the parser
interpolates it halfway toward the next block's azimuth, which is how the
device documentation prescribes recovering per-firing azimuths.
*/

// VLP-16 packet format constants.
const (
	PacketSize      = 1206
	BlocksPerPacket = 12
	BlockSize       = 100
	ChannelsPerSeq  = 16
	SeqsPerBlock    = 2
	BytesPerChannel = 3
	TailSize        = 6

	BlockFlag = 0xFFEE

	// DistanceResolution converts raw distance values to meters (2 mm LSB).
	DistanceResolution = 0.002
	// AzimuthResolution converts raw azimuth values to degrees (0.01° LSB).
	AzimuthResolution = 0.01
	// RotationMaxUnits is the raw azimuth value representing 360.00°.
	RotationMaxUnits = 36000
)

// laserElevations maps channel number (firing order) to beam elevation in
// degrees. The device interleaves its fan: channel 0 fires at −15°, channel
// 1 at +1°, and so on.
var laserElevations = [ChannelsPerSeq]float64{
	-15, 1, -13, 3, -11, 5, -9, 7, -7, 9, -5, 11, -3, 13, -1, 15,
}

// Return is one laser return in the sensor-native frame, tagged with the
// azimuth it was fired at so the revolution assembler can cut sweeps.
type Return struct {
	Point      sweep.Point
	AzimuthDeg float64
	Distance   float64
	Intensity  uint8
	Channel    int
	TimestampU uint32 // device microsecond counter from the packet tail
}

// Parser parses VLP-16 data packets into native-frame returns. The trig for
// each possible azimuth value is precomputed; elevation trig is fixed per
// channel.
type Parser struct {
	sinAzimuth [RotationMaxUnits]float64
	cosAzimuth [RotationMaxUnits]float64
	sinElev    [ChannelsPerSeq]float64
	cosElev    [ChannelsPerSeq]float64

	lastTimestamp uint32
}

// NewParser creates a parser with its trig tables initialized.
func NewParser() *Parser {
	p := &Parser{}
	for i := 0; i < RotationMaxUnits; i++ {
		rad := float64(i) * AzimuthResolution * math.Pi / 180
		p.sinAzimuth[i] = math.Sin(rad)
		p.cosAzimuth[i] = math.Cos(rad)
	}
	for c, elev := range laserElevations {
		rad := elev * math.Pi / 180
		p.sinElev[c] = math.Sin(rad)
		p.cosElev[c] = math.Cos(rad)
	}
	return p
}

// LastTimestamp returns the device microsecond counter from the most
// recently parsed packet.
func (p *Parser) LastTimestamp() uint32 { return p.lastTimestamp }

// ParsePacket extracts all returns from one UDP payload. Zero-distance
// channels (no return) are skipped. Returns an error for malformed packets;
// the caller drops those.
func (p *Parser) ParsePacket(packet []byte) ([]Return, error) {
	if len(packet) != PacketSize {
		return nil, fmt.Errorf("unexpected packet size %d, want %d", len(packet), PacketSize)
	}

	p.lastTimestamp = binary.LittleEndian.Uint32(packet[BlocksPerPacket*BlockSize:])

	returns := make([]Return, 0, BlocksPerPacket*SeqsPerBlock*ChannelsPerSeq)
	for b := 0; b < BlocksPerPacket; b++ {
		base := b * BlockSize
		if flag := binary.BigEndian.Uint16(packet[base:]); flag != BlockFlag {
			return nil, fmt.Errorf("block %d: bad flag %#04x", b, flag)
		}

		azRaw := binary.LittleEndian.Uint16(packet[base+2:])
		if azRaw >= RotationMaxUnits {
			return nil, fmt.Errorf("block %d: azimuth %d out of range", b, azRaw)
		}

		// The second firing sequence's azimuth is interpolated halfway
		// toward the next block.
		azRaw2 := p.interpolateAzimuth(packet, b, azRaw)

		for seq := 0; seq < SeqsPerBlock; seq++ {
			az := azRaw
			if seq == 1 {
				az = azRaw2
			}
			seqBase := base + 4 + seq*ChannelsPerSeq*BytesPerChannel
			for c := 0; c < ChannelsPerSeq; c++ {
				off := seqBase + c*BytesPerChannel
				distRaw := binary.LittleEndian.Uint16(packet[off:])
				if distRaw == 0 {
					continue
				}
				returns = append(returns, p.makeReturn(c, az, distRaw, packet[off+2]))
			}
		}
	}
	return returns, nil
}

func (p *Parser) interpolateAzimuth(packet []byte, block int, azRaw uint16) uint16 {
	var next uint16
	if block+1 < BlocksPerPacket {
		next = binary.LittleEndian.Uint16(packet[(block+1)*BlockSize+2:])
	} else {
		// Last block: extrapolate using the previous block's gap.
		prev := binary.LittleEndian.Uint16(packet[(block-1)*BlockSize+2:])
		gap := (int(azRaw) - int(prev) + RotationMaxUnits) % RotationMaxUnits
		next = uint16((int(azRaw) + gap) % RotationMaxUnits)
	}
	gap := (int(next) - int(azRaw) + RotationMaxUnits) % RotationMaxUnits
	return uint16((int(azRaw) + gap/2) % RotationMaxUnits)
}

// makeReturn converts one channel reading to a native-frame point. The
// device reports azimuth clockwise from +x; native axes are x-forward,
// y-left, z-up.
func (p *Parser) makeReturn(channel int, azRaw, distRaw uint16, intensity uint8) Return {
	dist := float64(distRaw) * DistanceResolution
	horiz := dist * p.cosElev[channel]
	return Return{
		Point: sweep.Point{
			X: horiz * p.cosAzimuth[azRaw],
			Y: -horiz * p.sinAzimuth[azRaw],
			Z: dist * p.sinElev[channel],
		},
		AzimuthDeg: float64(azRaw) * AzimuthResolution,
		Distance:   dist,
		Intensity:  intensity,
		Channel:    channel,
		TimestampU: p.lastTimestamp,
	}
}
