package main

import (
	"context"
	"testing"
	"time"

	"github.com/banshee-data/odometry.report/internal/sweep"
	"github.com/banshee-data/odometry.report/internal/sweep/imuserial"
	"github.com/banshee-data/odometry.report/internal/sweep/network"
	"github.com/banshee-data/odometry.report/internal/sweep/vlp16"
)

func TestCoreQueueDropsOldest(t *testing.T) {
	registrar := sweep.NewRegistrar(sweep.RegistrarConfig{WarmupSweeps: -1})
	c := newCore(registrar, network.NewPacketStats(), nil)

	// Fill the 2-deep revolution queue, then overflow it.
	r1 := &vlp16.Revolution{Stamp: 1}
	r2 := &vlp16.Revolution{Stamp: 2}
	r3 := &vlp16.Revolution{Stamp: 3}
	c.offerRevolution(r1)
	c.offerRevolution(r2)
	c.offerRevolution(r3)

	got := <-c.revCh
	if got.Stamp != 2 {
		t.Errorf("oldest revolution should have been dropped; head stamp = %v", got.Stamp)
	}
	got = <-c.revCh
	if got.Stamp != 3 {
		t.Errorf("second queued stamp = %v, want 3", got.Stamp)
	}
}

func TestCoreDrainsBothQueues(t *testing.T) {
	registrar := sweep.NewRegistrar(sweep.RegistrarConfig{WarmupSweeps: -1})
	c := newCore(registrar, network.NewPacketStats(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.run(ctx)
		close(done)
	}()

	// IMU samples then a revolution: the core must consume both queues.
	c.offerImu(imuserial.Sample{Time: 0.5})
	c.offerImu(imuserial.Sample{Time: 0.51})
	c.offerRevolution(&vlp16.Revolution{
		Stamp:  1.0,
		Points: []sweep.Point{{X: 1, Y: 0, Z: 0}, {X: 0.9, Y: 0.1, Z: 0}},
	})

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("core did not drain queues in time")
		default:
		}
		if len(c.revCh) == 0 && len(c.imuCh) == 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	<-done
}
