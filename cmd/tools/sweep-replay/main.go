// Command sweep-replay runs a PCAP capture of VLP-16 traffic (plus an
// optional IMU CSV log) through the scan registrar and prints per-sweep
// feature summaries. Build with -tags=pcap.
//
// Usage:
//
//	sweep-replay -pcap capture.pcap [-imu imu.csv] [-port 2368]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/odometry.report/internal/sweep"
	"github.com/banshee-data/odometry.report/internal/sweep/imuserial"
	"github.com/banshee-data/odometry.report/internal/sweep/network"
	"github.com/banshee-data/odometry.report/internal/sweep/vlp16"
)

var (
	pcapFile = flag.String("pcap", "", "PCAP capture of VLP-16 traffic (required)")
	imuFile  = flag.String("imu", "", "IMU sample CSV log (optional)")
	udpPort  = flag.Int("port", 2368, "UDP port filter for the capture")
	warmup   = flag.Int("warmup", 0, "sweeps to drop before emitting (-1 for the production default)")
)

func loadImuLog(path string) ([]imuserial.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var samples []imuserial.Sample
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		sample, ok, err := imuserial.ParseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if ok {
			samples = append(samples, sample)
		}
	}
	return samples, scanner.Err()
}

func main() {
	flag.Parse()
	if *pcapFile == "" {
		log.Fatal("-pcap is required")
	}

	var imuLog []imuserial.Sample
	if *imuFile != "" {
		var err error
		imuLog, err = loadImuLog(*imuFile)
		if err != nil {
			log.Fatalf("failed to load IMU log: %v", err)
		}
		log.Printf("loaded %d IMU samples", len(imuLog))
	}

	warmupSweeps := *warmup
	switch warmupSweeps {
	case 0:
		warmupSweeps = -1 // replay everything by default
	case -1:
		warmupSweeps = 0 // NewRegistrar fills in the production default
	}
	registrar := sweep.NewRegistrar(sweep.RegistrarConfig{WarmupSweeps: warmupSweeps})

	imuNext := 0
	sweepNo := 0
	assembler := vlp16.NewAssembler(vlp16.AssemblerConfig{
		OnRevolution: func(rev *vlp16.Revolution) {
			// Feed every IMU sample up to this revolution's stamp,
			// preserving reception order.
			for imuNext < len(imuLog) && imuLog[imuNext].Time <= rev.Stamp {
				s := imuLog[imuNext]
				registrar.HandleImu(s.Time, s.Orientation, s.Accel)
				imuNext++
			}

			sweepNo++
			reg := registrar.ProcessCloud(rev.Stamp, rev.Points)
			if reg == nil {
				fmt.Printf("sweep %4d  stamp %.3f  (warm-up)\n", sweepNo, rev.Stamp)
				return
			}
			fmt.Printf("sweep %4d  stamp %.3f  points %6d  sharp %3d  lessSharp %4d  flat %4d  lessFlat %6d  deskew %v  %dµs\n",
				sweepNo, reg.Stamp, reg.Stats.PointsKept,
				reg.Stats.CornerSharp, reg.Stats.CornerLessSharp,
				reg.Stats.SurfFlat, reg.Stats.SurfLessFlat,
				reg.Stats.DeskewApplied, reg.Stats.ProcessingMicros)
		},
	})

	parser := vlp16.NewParser()
	stats := network.NewPacketStats()
	if err := network.ReadPCAPFile(context.Background(), *pcapFile, *udpPort, parser, assembler, stats); err != nil {
		log.Fatalf("replay failed: %v", err)
	}

	fmt.Printf("replay complete: %d sweeps, %d IMU samples used, %d integration pauses\n",
		sweepNo, imuNext, registrar.ImuPauses())
}
