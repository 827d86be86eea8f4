//go:build pcap
// +build pcap

package network

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/banshee-data/odometry.report/internal/monitoring"
)

// ReadPCAPFile replays LiDAR packets from a PCAP capture through the parser
// and assembler, using capture timestamps as receive times so revolutions
// get the original wall-clock stamps. Only available when building with the
// 'pcap' build tag.
func ReadPCAPFile(ctx context.Context, pcapFile string, udpPort int, parser Parser, assembler Assembler, stats StatsInterface) error {
	handle, err := pcap.OpenOffline(pcapFile)
	if err != nil {
		return fmt.Errorf("failed to open PCAP file %s: %w", pcapFile, err)
	}
	defer handle.Close()

	filterStr := fmt.Sprintf("udp port %d", udpPort)
	if err := handle.SetBPFFilter(filterStr); err != nil {
		return fmt.Errorf("failed to set BPF filter %q: %w", filterStr, err)
	}
	monitoring.Logf("PCAP BPF filter set: %s", filterStr)

	packetSource := gopacket.NewPacketSource(handle, handle.LinkType())
	packetCount := 0
	startTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			monitoring.Logf("PCAP reader stopping (processed %d packets)", packetCount)
			return ctx.Err()
		case packet := <-packetSource.Packets():
			if packet == nil {
				monitoring.Logf("PCAP file complete: %d packets in %v", packetCount, time.Since(startTime))
				return nil
			}
			packetCount++

			udpLayer := packet.Layer(layers.LayerTypeUDP)
			if udpLayer == nil {
				continue
			}
			udp, ok := udpLayer.(*layers.UDP)
			if !ok || len(udp.Payload) == 0 {
				continue
			}

			if stats != nil {
				stats.AddPacket(len(udp.Payload))
			}
			if parser == nil {
				continue
			}
			returns, err := parser.ParsePacket(udp.Payload)
			if err != nil {
				monitoring.Logf("error parsing PCAP packet %d: %v", packetCount, err)
				continue
			}
			if stats != nil {
				stats.AddPoints(len(returns))
			}
			if assembler != nil {
				assembler.AddReturns(returns, packet.Metadata().Timestamp)
			}

			if packetCount%10000 == 0 {
				elapsed := time.Since(startTime)
				monitoring.Logf("PCAP progress: %d packets in %v (%.0f pkt/s)",
					packetCount, elapsed, float64(packetCount)/elapsed.Seconds())
			}
		}
	}
}
