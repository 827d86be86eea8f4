package network

import (
	"encoding/binary"
	"math"

	"github.com/banshee-data/odometry.report/internal/sweep"
)

// Wire format for published clouds: length-delimited little-endian datagrams,
// one stream per output cloud plus the imuTrans summary. Each datagram:
//
//	magic   uint32  'O','D','R','G'
//	version uint8
//	stream  uint8
//	chunk   uint16  chunk index
//	chunks  uint16  total chunks in this stream for this sweep
//	count   uint16  points in this chunk
//	stamp   float64 sweep timestamp (seconds)
//	points  count × (x, y, z, intensity) float32
//
// Frame id is implied by the protocol: all streams are in the canonical
// "camera" frame.
const (
	wireMagic   = 0x4752444f // "ODRG" little-endian
	wireVersion = 1

	headerSize = 4 + 1 + 1 + 2 + 2 + 2 + 8
	pointSize  = 16

	// maxPointsPerDatagram keeps datagrams under typical MTU-safe UDP
	// payload limits used for LiDAR streams (~22 KB leaves headroom in a
	// 64 KB datagram while keeping fragmentation bounded).
	maxPointsPerDatagram = 1400
)

// Stream identifiers, one per published artifact.
const (
	StreamCloud uint8 = iota
	StreamCornerSharp
	StreamCornerLessSharp
	StreamSurfFlat
	StreamSurfLessFlat
	StreamImuTrans
)

// Sender is the transport the publisher writes datagrams to.
type Sender interface {
	ForwardAsync(packet []byte)
}

// CloudPublisher serializes registrations onto a Sender. It implements
// sweep.Publisher.
type CloudPublisher struct {
	sender Sender
}

// NewCloudPublisher creates a publisher writing to the given sender.
func NewCloudPublisher(sender Sender) *CloudPublisher {
	return &CloudPublisher{sender: sender}
}

// PublishRegistration emits all six streams for one sweep.
func (p *CloudPublisher) PublishRegistration(reg *sweep.Registration) {
	p.publishCloud(StreamCloud, reg.Stamp, reg.Cloud)
	p.publishCloud(StreamCornerSharp, reg.Stamp, reg.CornerSharp)
	p.publishCloud(StreamCornerLessSharp, reg.Stamp, reg.CornerLessSharp)
	p.publishCloud(StreamSurfFlat, reg.Stamp, reg.SurfFlat)
	p.publishCloud(StreamSurfLessFlat, reg.Stamp, reg.SurfLessFlat)
	p.publishCloud(StreamImuTrans, reg.Stamp, imuTransPoints(reg.ImuTrans))
}

// imuTransPoints packs the four-triple motion summary as a 4-point cloud:
// start orientation, end orientation, shift-from-start, velocity-from-start.
func imuTransPoints(t sweep.ImuTrans) []sweep.CloudPoint {
	return []sweep.CloudPoint{
		{X: t.StartRPY.X, Y: t.StartRPY.Y, Z: t.StartRPY.Z},
		{X: t.CurRPY.X, Y: t.CurRPY.Y, Z: t.CurRPY.Z},
		{X: t.ShiftFrom.X, Y: t.ShiftFrom.Y, Z: t.ShiftFrom.Z},
		{X: t.VeloFrom.X, Y: t.VeloFrom.Y, Z: t.VeloFrom.Z},
	}
}

func (p *CloudPublisher) publishCloud(stream uint8, stamp float64, points []sweep.CloudPoint) {
	chunks := (len(points) + maxPointsPerDatagram - 1) / maxPointsPerDatagram
	if chunks == 0 {
		chunks = 1 // empty clouds still announce the sweep
	}
	for c := 0; c < chunks; c++ {
		lo := c * maxPointsPerDatagram
		hi := lo + maxPointsPerDatagram
		if hi > len(points) {
			hi = len(points)
		}
		p.sender.ForwardAsync(encodeChunk(stream, stamp, uint16(c), uint16(chunks), points[lo:hi]))
	}
}

func encodeChunk(stream uint8, stamp float64, chunk, chunks uint16, points []sweep.CloudPoint) []byte {
	buf := make([]byte, headerSize+len(points)*pointSize)
	binary.LittleEndian.PutUint32(buf[0:], wireMagic)
	buf[4] = wireVersion
	buf[5] = stream
	binary.LittleEndian.PutUint16(buf[6:], chunk)
	binary.LittleEndian.PutUint16(buf[8:], chunks)
	binary.LittleEndian.PutUint16(buf[10:], uint16(len(points)))
	binary.LittleEndian.PutUint64(buf[12:], math.Float64bits(stamp))

	off := headerSize
	for _, pt := range points {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(pt.X)))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(float32(pt.Y)))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(float32(pt.Z)))
		binary.LittleEndian.PutUint32(buf[off+12:], math.Float32bits(float32(pt.Intensity)))
		off += pointSize
	}
	return buf
}

// DecodeChunk parses one published datagram back into its stream id, stamp,
// chunk indices and points. Used by tests and downstream consumers.
func DecodeChunk(buf []byte) (stream uint8, stamp float64, chunk, chunks uint16, points []sweep.CloudPoint, ok bool) {
	if len(buf) < headerSize || binary.LittleEndian.Uint32(buf[0:]) != wireMagic || buf[4] != wireVersion {
		return 0, 0, 0, 0, nil, false
	}
	stream = buf[5]
	chunk = binary.LittleEndian.Uint16(buf[6:])
	chunks = binary.LittleEndian.Uint16(buf[8:])
	count := int(binary.LittleEndian.Uint16(buf[10:]))
	stamp = math.Float64frombits(binary.LittleEndian.Uint64(buf[12:]))

	if len(buf) != headerSize+count*pointSize {
		return 0, 0, 0, 0, nil, false
	}
	points = make([]sweep.CloudPoint, count)
	off := headerSize
	for i := range points {
		points[i] = sweep.CloudPoint{
			X:         float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))),
			Y:         float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off+4:]))),
			Z:         float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off+8:]))),
			Intensity: float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off+12:]))),
		}
		off += pointSize
	}
	return stream, stamp, chunk, chunks, points, true
}
