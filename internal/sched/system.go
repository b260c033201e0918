// internal/sched/system.go

package sched

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"coopsched/internal/logging"
)

// System is the per-CPU registry: a fixed array of executors indexed by CPU,
// plus the state shared by the timer path. Tokens resolve to executors only
// through it.
type System struct {
	cfg       Config
	platform  Platform
	logger    *slog.Logger
	executors []*Executor
	sleepq    *SleepQueue
	seed      uint64

	tick    atomic.Uint64
	running atomic.Bool

	evMu     sync.RWMutex // guards closing statusCh
	statusCh chan StatusEvent
	evClosed bool
	dropped  atomic.Uint64
}

// Option customises a System at construction.
type Option func(*System)

// WithPlatform replaces the default channel-backed platform.
func WithPlatform(p Platform) Option {
	return func(s *System) { s.platform = p }
}

// WithLogger sets the base logger; executors derive their own from it.
func WithLogger(l *slog.Logger) Option {
	return func(s *System) { s.logger = l }
}

// WithSeed fixes the seed used to pick steal victims.
func WithSeed(seed uint64) Option {
	return func(s *System) { s.seed = seed }
}

// NewSystem builds and initialises every executor before returning, so
// per-CPU state is never observed half built.
func NewSystem(cfg Config, opts ...Option) *System {
	cfg.clamp()
	s := &System{
		cfg:    cfg,
		sleepq: NewSleepQueue(),
		seed:   uint64(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.platform == nil {
		s.platform = NewChannelPlatform(cfg.CPUs)
	}
	if cfg.EventBuffer > 0 {
		s.statusCh = make(chan StatusEvent, cfg.EventBuffer)
	}

	s.executors = make([]*Executor, cfg.CPUs)
	for i := range s.executors {
		s.executors[i] = newExecutor(s, i)
	}
	return s
}

// Config returns the effective configuration.
func (s *System) Config() Config { return s.cfg }

func (s *System) NumCPU() int { return len(s.executors) }

// Platform returns the hardware boundary the executors signal and halt on.
func (s *System) Platform() Platform { return s.platform }

// Executor returns the executor of cpu, or nil for an offline index.
func (s *System) Executor(cpu int) *Executor {
	if cpu < 0 || cpu >= len(s.executors) {
		return nil
	}
	return s.executors[cpu]
}

// Spawn starts body on cpu. It may be called from any goroutine; the target
// CPU is signalled so it leaves its halt state.
func (s *System) Spawn(cpu int, body Future, prio Priority, opts ...SpawnOption) (TaskID, error) {
	e := s.Executor(cpu)
	if e == nil {
		return 0, fmt.Errorf("spawn on cpu %d: only %d cpus online", cpu, len(s.executors))
	}
	id := e.Spawn(body, prio, opts...)
	s.platform.SignalCPU(cpu)
	return id, nil
}

// Wake delivers tok to its owning CPU. from is the caller's CPU index, or
// NoCPU for interrupt handlers and other outside producers. It never blocks
// and takes no scheduler lock, so it is safe from any context.
func (s *System) Wake(tok Token, from int) {
	id, prio, cpu := tok.Unpack()
	e := s.Executor(cpu)
	if e == nil {
		s.logger.Debug("wake for offline cpu dropped", "token", tok.String())
		return
	}
	e.deliver(tok)
	s.emit(StatusEvent{CPU: cpu, Kind: StatusWake, TaskID: id, Priority: prio, From: from})
	if cpu != from {
		s.platform.SignalCPU(cpu)
	}
}

// Now returns the current timer tick.
func (s *System) Now() uint64 { return s.tick.Load() }

// SleepUntil registers tok to be woken on the first tick >= deadline.
func (s *System) SleepUntil(deadline uint64, tok Token) {
	s.sleepq.Register(deadline, tok)
}

// Sleepers is the number of pending sleep entries.
func (s *System) Sleepers() int { return s.sleepq.Len() }

// Tick is the timer interrupt callback. It spends the preemption budget of
// every CPU, fires the sleep entries that are due, and, like a real timer
// interrupt, brings every halted CPU back into its loop.
func (s *System) Tick() {
	now := s.tick.Add(1)
	for _, e := range s.executors {
		e.budget.set()
	}
	for _, tok := range s.sleepq.Expire(now, s.cfg.SleepDrainBatch) {
		s.Wake(tok, NoCPU)
	}
	s.emit(StatusEvent{CPU: NoCPU, Kind: StatusTick})
	for _, e := range s.executors {
		s.platform.SignalCPU(e.cpu)
	}
}

// Run drives every executor, and the tick clock when tick_ms > 0, until ctx
// is cancelled. The event stream is closed when Run returns.
func (s *System) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("system already running")
	}

	var clock *TickClock
	if s.cfg.TickMS > 0 {
		clock = NewTickClock(s.Tick)
		clock.Start(time.Duration(s.cfg.TickMS) * time.Millisecond)
	}
	s.logger.Info("system started", "cpus", len(s.executors), "tick_ms", s.cfg.TickMS, "steal", s.cfg.Steal)

	var wg sync.WaitGroup
	for _, e := range s.executors {
		wg.Add(1)
		go func(e *Executor) {
			defer wg.Done()
			e.Run(ctx)
		}(e)
	}
	wg.Wait()

	if clock != nil {
		clock.Stop()
	}
	s.evMu.Lock()
	if s.statusCh != nil && !s.evClosed {
		close(s.statusCh)
		s.evClosed = true
	}
	s.evMu.Unlock()
	s.logger.Info("system stopped", "ticks", s.Now(), "dropped_events", s.dropped.Load())
	return nil
}

// StatusChannel exposes the event stream, or nil when event_buffer is 0.
func (s *System) StatusChannel() <-chan StatusEvent { return s.statusCh }

// DroppedEvents counts events discarded because the stream was full.
func (s *System) DroppedEvents() uint64 { return s.dropped.Load() }

// emit never blocks: a slow consumer loses events rather than stalling a CPU.
func (s *System) emit(ev StatusEvent) {
	if s.statusCh == nil {
		return
	}
	ev.Time = time.Now()
	ev.Tick = s.Now()

	s.evMu.RLock()
	defer s.evMu.RUnlock()
	if s.evClosed {
		return
	}
	select {
	case s.statusCh <- ev:
	default:
		s.dropped.Add(1)
	}
}

// Stats returns one snapshot per CPU.
func (s *System) Stats() []ExecutorStats {
	out := make([]ExecutorStats, len(s.executors))
	for i, e := range s.executors {
		out[i] = e.Stats()
	}
	return out
}

// Live is the number of tasks tracked by all CPUs.
func (s *System) Live() int {
	n := 0
	for _, e := range s.executors {
		n += e.Len()
	}
	return n
}
