package job

import (
	"fmt"
	"math/rand/v2"
	"time"

	"coopsched/internal/sched"
)

// Mix describes a synthetic workload.
type Mix struct {
	Tasks     int
	Seed      uint64
	OnlyCPU   int // -1 spreads spawns over all CPUs
	IOLatency time.Duration
}

// Spawn places the workload on sys and returns the tally the tasks report
// to. Roughly: 10% device I/O at Critical, 50% sleepers and 20% user
// processes at Normal, 20% CPU spinners at Background.
func (m Mix) Spawn(sys *sched.System) (*Tally, error) {
	tally := &Tally{}
	rng := rand.New(rand.NewPCG(m.Seed, m.Seed^0x9e3779b97f4a7c15))
	dev := &Device{Latency: m.IOLatency}
	if dev.Latency <= 0 {
		dev.Latency = time.Millisecond
	}

	for i := 0; i < m.Tasks; i++ {
		cpu := m.OnlyCPU
		if cpu < 0 {
			cpu = rng.IntN(sys.NumCPU())
		}

		var (
			body sched.Future
			prio sched.Priority
			name string
		)
		switch r := rng.IntN(10); {
		case r == 0:
			body, prio, name = IOWork(dev, tally), sched.Critical, "io"
		case r < 6:
			body, prio, name = SleepWork(uint64(1+rng.IntN(5)), tally), sched.Normal, "sleeper"
		case r < 8:
			body, prio, name = Process(1+rng.IntN(4), 1, tally), sched.Normal, "proc"
		default:
			body, prio, name = SpinWork(10_000+rng.IntN(50_000), tally), sched.Background, "spin"
		}
		if _, err := sys.Spawn(cpu, body, prio, sched.WithName(fmt.Sprintf("%s-%d", name, i))); err != nil {
			return tally, fmt.Errorf("spawn task %d: %w", i, err)
		}
	}
	return tally, nil
}
