package job

import (
	"context"
	"testing"
	"time"

	"coopsched/internal/sched"
)

func runUntil(t *testing.T, sys *sched.System, tally *Tally, want int64) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- sys.Run(ctx) }()

	deadline := time.Now().Add(10 * time.Second)
	for tally.Done() < want && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if tally.Done() != want {
		t.Fatalf("finished %d of %d", tally.Done(), want)
	}
}

func testSystem(cpus int) *sched.System {
	cfg := sched.DefaultConfig()
	cfg.CPUs = cpus
	cfg.TickMS = 1
	cfg.EventBuffer = 0
	return sched.NewSystem(cfg, sched.WithSeed(3))
}

func TestWorkloadKindsComplete(t *testing.T) {
	sys := testSystem(2)
	tally := &Tally{}
	dev := &Device{Latency: 2 * time.Millisecond}

	sys.Spawn(0, SleepWork(2, tally), sched.Normal)
	sys.Spawn(1, SpinWork(1_000_000, tally), sched.Background)
	sys.Spawn(0, IOWork(dev, tally), sched.Critical)
	proc := Process(3, 1, tally)
	sys.Spawn(1, proc, sched.Normal)

	runUntil(t, sys, tally, 4)
	if !proc.Exited() || proc.Syscalls != 4 {
		t.Fatalf("process exited=%v syscalls=%d", proc.Exited(), proc.Syscalls)
	}
	if sys.Live() != 0 {
		t.Fatalf("live tasks: %d", sys.Live())
	}
}

func TestMixSpawnsEverything(t *testing.T) {
	sys := testSystem(4)
	tally, err := Mix{Tasks: 120, Seed: 42, OnlyCPU: -1, IOLatency: time.Millisecond}.Spawn(sys)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	runUntil(t, sys, tally, 120)
}

func TestMixRejectsOfflineCPU(t *testing.T) {
	sys := testSystem(2)
	if _, err := (Mix{Tasks: 1, OnlyCPU: 7}).Spawn(sys); err == nil {
		t.Fatal("expected error spawning on an offline cpu")
	}
}
