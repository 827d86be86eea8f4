// Command odometry.report runs the scan-registration front end of the LOAM
// pipeline: it ingests VLP-16 revolutions over UDP (or PCAP replay) and IMU
// samples over serial or UDP, de-skews and extracts features, and publishes
// the derived clouds over UDP for the odometry stage.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/odometry.report/internal/config"
	"github.com/banshee-data/odometry.report/internal/monitoring"
	"github.com/banshee-data/odometry.report/internal/sweep"
	"github.com/banshee-data/odometry.report/internal/sweep/imuserial"
	"github.com/banshee-data/odometry.report/internal/sweep/monitor"
	"github.com/banshee-data/odometry.report/internal/sweep/network"
	"github.com/banshee-data/odometry.report/internal/sweep/vlp16"
	"github.com/banshee-data/odometry.report/internal/sweepdb"
)

var (
	lidarListen = flag.String("listen", ":2368", "UDP address for VLP-16 packets")
	imuSerial   = flag.String("imu-serial", "", "serial device for IMU samples (e.g. /dev/ttyUSB0)")
	imuListen   = flag.String("imu-listen", "", "UDP address for IMU sample lines (replay rigs)")
	forwardAddr = flag.String("forward", "127.0.0.1:7500", "UDP address to publish registered clouds to")
	monitorAddr = flag.String("monitor", "127.0.0.1:8080", "HTTP address for the debug monitor (empty to disable)")
	dbFile      = flag.String("db", "sweeps.db", "sweep stats database path (empty to disable)")
	configFile  = flag.String("config", "", "tuning config JSON (defaults compiled in)")
	pcapFile    = flag.String("pcap", "", "replay a PCAP capture instead of listening")
	pcapPort    = flag.Int("pcap-port", 2368, "UDP port filter for PCAP replay")
	adminDebug  = flag.Bool("admin-debug", false, "mount the tailsql console on the monitor server")
)

// core serializes the two event streams into the single-threaded registrar.
// Queue depths follow the transport contract: 2 revolutions, 50 IMU samples,
// dropping the oldest when full.
type core struct {
	registrar *sweep.Registrar
	revCh     chan *vlp16.Revolution
	imuCh     chan imuserial.Sample
	stats     *network.PacketStats
	db        *sweepdb.DB
}

func newCore(registrar *sweep.Registrar, stats *network.PacketStats, db *sweepdb.DB) *core {
	return &core{
		registrar: registrar,
		revCh:     make(chan *vlp16.Revolution, 2),
		imuCh:     make(chan imuserial.Sample, 50),
		stats:     stats,
		db:        db,
	}
}

// offerRevolution enqueues a revolution, discarding the oldest queued one
// when the core is behind.
func (c *core) offerRevolution(rev *vlp16.Revolution) {
	for {
		select {
		case c.revCh <- rev:
			return
		default:
			select {
			case <-c.revCh:
				monitoring.AddCounter("revolutions_dropped", 1)
			default:
			}
		}
	}
}

// offerImu enqueues an IMU sample the same way.
func (c *core) offerImu(s imuserial.Sample) {
	for {
		select {
		case c.imuCh <- s:
			return
		default:
			select {
			case <-c.imuCh:
				monitoring.AddCounter("imu_samples_dropped", 1)
			default:
			}
		}
	}
}

// run is the single consumer of both queues; handlers execute to completion
// and never interleave.
func (c *core) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-c.imuCh:
			c.registrar.HandleImu(s.Time, s.Orientation, s.Accel)
		case rev := <-c.revCh:
			reg := c.registrar.ProcessCloud(rev.Stamp, rev.Points)
			if reg == nil {
				continue // warm-up
			}
			c.stats.AddSweep()
			if c.db != nil {
				if err := c.db.RecordSweep(reg); err != nil {
					monitoring.Logf("failed to record sweep: %v", err)
				}
			}
		}
	}
}

func main() {
	flag.Parse()

	tuning := config.DefaultTuningConfig()
	if *configFile != "" {
		loaded, err := config.LoadTuningConfig(*configFile)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
		tuning = loaded
	}
	if err := tuning.Validate(); err != nil {
		log.Fatalf("invalid tuning config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats := network.NewPacketStats()

	forwarder, err := network.NewPacketForwarder(*forwardAddr, stats, time.Minute)
	if err != nil {
		log.Fatalf("failed to create output forwarder: %v", err)
	}
	forwarder.Start(ctx)

	registrar := sweep.NewRegistrar(sweep.RegistrarConfig{
		ScanPeriod:          *tuning.ScanPeriodSecs,
		BeamCount:           *tuning.BeamCount,
		WarmupSweeps:        *tuning.WarmupSweeps,
		ImuHistoryLen:       *tuning.ImuHistoryLen,
		Gravity:             *tuning.Gravity,
		CurvatureThreshold:  *tuning.CurvatureThreshold,
		ClusterSpreadSqDist: *tuning.ClusterSpreadSqDist,
		OutlierRatio:        *tuning.OutlierRatio,
		OcclusionRatio:      *tuning.OcclusionRatio,
		OcclusionGapSq:      *tuning.OcclusionGapSq,
		VoxelLeafSize:       *tuning.VoxelLeafSize,
		Publisher:           network.NewCloudPublisher(forwarder),
	})

	var db *sweepdb.DB
	if *dbFile != "" {
		db, err = sweepdb.NewDB(*dbFile)
		if err != nil {
			log.Fatalf("failed to open sweeps database: %v", err)
		}
		defer db.Close()
	}

	c := newCore(registrar, stats, db)

	parser := vlp16.NewParser()
	assembler := vlp16.NewAssembler(vlp16.AssemblerConfig{
		OnRevolution: c.offerRevolution,
	})

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.run(ctx)
	}()

	// LiDAR ingest: live UDP or PCAP replay.
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		if *pcapFile != "" {
			err = network.ReadPCAPFile(ctx, *pcapFile, *pcapPort, parser, assembler, stats)
		} else {
			listener := network.NewUDPListener(network.UDPListenerConfig{
				Address:   *lidarListen,
				Stats:     stats,
				Parser:    parser,
				Assembler: assembler,
			})
			err = listener.Start(ctx)
		}
		if err != nil && err != context.Canceled {
			log.Printf("lidar ingest stopped: %v", err)
			stop()
		}
	}()

	// IMU ingest: serial, UDP, or neither (no-IMU mode).
	switch {
	case *imuSerial != "":
		port, err := imuserial.OpenPort(*imuSerial)
		if err != nil {
			log.Fatalf("failed to open IMU serial port: %v", err)
		}
		reader := imuserial.NewReader(port, c.offerImu)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer reader.Close()
			if err := reader.Monitor(ctx); err != nil && err != context.Canceled {
				log.Printf("IMU serial reader stopped: %v", err)
			}
		}()
	case *imuListen != "":
		listener := imuserial.NewUDPListener(*imuListen, c.offerImu)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := listener.Start(ctx); err != nil && err != context.Canceled {
				log.Printf("IMU UDP listener stopped: %v", err)
			}
		}()
	default:
		monitoring.Logf("no IMU source configured; de-skew disabled")
	}

	// Debug monitor.
	if *monitorAddr != "" {
		ws := monitor.NewWebServer(*monitorAddr, db)
		if *adminDebug && db != nil {
			if err := db.AttachAdminRoutes(ws.Mux()); err != nil {
				log.Printf("failed to mount tailsql console: %v", err)
			}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ws.Start(ctx); err != nil {
				log.Printf("monitor server stopped: %v", err)
			}
		}()
	}

	wg.Wait()
	log.Print("odometry.report shut down")
}
