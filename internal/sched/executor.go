// internal/sched/executor.go

package sched

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"coopsched/internal/affinity"
)

// Executor is the scheduler of one CPU. Its table and ready queues are only
// touched by its own loop, except by stealers (try-locks, ready lock first)
// and spawners (table lock first). Wakes never take either lock; they go
// through the inbox.
type Executor struct {
	sys    *System
	cpu    int
	logger *slog.Logger

	tableMu sync.Mutex // protects table and nextID
	table   *TaskTable
	nextID  TaskID

	readyMu sync.Mutex // protects ready
	ready   *ReadyQueues

	inbox  inbox
	budget budget
	rng    *rand.Rand // owned by the executor loop; picks steal victims

	stats executorCounters
}

type executorCounters struct {
	spawned      atomic.Uint64
	polls        atomic.Uint64
	completed    atomic.Uint64
	misses       atomic.Uint64
	duplicates   atomic.Uint64
	wakes        atomic.Uint64
	steals       atomic.Uint64
	stolen       atomic.Uint64
	budgetBreaks atomic.Uint64
	halts        atomic.Uint64
	panics       atomic.Uint64
}

// ExecutorStats is a point-in-time snapshot of one CPU.
type ExecutorStats struct {
	CPU          int
	Spawned      uint64
	Polls        uint64
	Completed    uint64
	Misses       uint64 // dispatches whose entry was not in the table
	Duplicates   uint64 // wakes for an already queued task
	Wakes        uint64
	Steals       uint64 // tasks this CPU took from others
	Stolen       uint64 // tasks others took from this CPU
	BudgetBreaks uint64
	Halts        uint64
	Panics       uint64
	Live         int // entries in the task table
	Queued       int
}

func newExecutor(sys *System, cpu int) *Executor {
	return &Executor{
		sys:    sys,
		cpu:    cpu,
		logger: sys.logger.With("component", "executor", "cpu", cpu),
		table:  NewTaskTable(),
		ready:  NewReadyQueues(sys.cfg.StarvationLimit),
		rng:    rand.New(rand.NewPCG(uint64(cpu)+1, sys.seed)),
	}
}

// CPU returns the index this executor runs on.
func (e *Executor) CPU() int { return e.cpu }

// Spawn registers body as a new ready task on this CPU. A task pinned to a
// different CPU is forwarded there.
func (e *Executor) Spawn(body Future, prio Priority, opts ...SpawnOption) TaskID {
	t := newTask(body, prio, opts...)
	if t.Pinned() && t.Affinity != e.cpu {
		if target := e.sys.Executor(t.Affinity); target != nil {
			id := target.admit(t, true)
			e.sys.platform.SignalCPU(target.cpu)
			return id
		}
		e.logger.Warn("affinity names an offline cpu, keeping task local", "affinity", t.Affinity)
		t.Affinity = e.cpu
	}
	return e.admit(t, true)
}

// admit assigns a fresh id and makes t ready. Spawn lock order: table, then
// ready queues. Migrated tasks are admitted too, with spawned false.
func (e *Executor) admit(t *Task, spawned bool) TaskID {
	e.tableMu.Lock()
	if e.nextID == MaxTaskID {
		e.tableMu.Unlock()
		panic(fmt.Sprintf("sched: task id space exhausted on cpu %d", e.cpu))
	}
	e.nextID++
	t.ID = e.nextID
	if spawned {
		t.SpawnedTick = e.sys.Now()
	}
	e.table.Insert(t)

	e.readyMu.Lock()
	e.ready.Push(t.Priority, t.ID)
	e.readyMu.Unlock()
	e.tableMu.Unlock()

	if spawned {
		e.stats.spawned.Add(1)
		e.sys.emit(StatusEvent{CPU: e.cpu, Kind: StatusSpawn, TaskID: t.ID, Priority: t.Priority, Name: t.Name})
	}
	return t.ID
}

// Step runs one iteration of the executor loop: poll, steal, halt.
func (e *Executor) Step(ctx context.Context) {
	e.pollReady(ctx)
	if ctx.Err() != nil || e.hasWork() {
		return
	}
	if e.sys.cfg.Steal && e.trySteal() {
		return
	}
	if e.hasWork() {
		return
	}
	e.stats.halts.Add(1)
	e.sys.emit(StatusEvent{CPU: e.cpu, Kind: StatusHalt})
	e.sys.platform.Halt(ctx, e.cpu)
}

// Run loops until ctx is cancelled.
func (e *Executor) Run(ctx context.Context) {
	switch {
	case !e.sys.cfg.PinThreads:
	case !affinity.Supported():
		e.logger.Warn("thread pinning is not supported on this platform")
	default:
		if err := affinity.Pin(e.cpu); err != nil {
			e.logger.Warn("pinning failed, running unpinned", "error", err)
		} else {
			defer affinity.Unpin()
		}
	}
	e.logger.Debug("executor started")
	for ctx.Err() == nil {
		e.Step(ctx)
	}
	e.logger.Debug("executor stopped", "live", e.Len())
}

// pollReady is the poll phase. It ends when nothing is ready, when the
// preemption budget has been used up, or when ctx is done.
func (e *Executor) pollReady(ctx context.Context) {
	for ctx.Err() == nil {
		e.drainInbox()

		e.readyMu.Lock()
		_, id, ok := e.ready.Pop()
		e.readyMu.Unlock()
		if !ok {
			return
		}

		e.tableMu.Lock()
		t, found := e.table.Remove(id)
		e.tableMu.Unlock()
		if !found {
			// finished earlier, or a stale token from before a migration
			e.stats.misses.Add(1)
			e.sys.emit(StatusEvent{CPU: e.cpu, Kind: StatusMiss, TaskID: id})
			continue
		}

		if e.poll(t) == Ready {
			e.stats.completed.Add(1)
			e.sys.emit(StatusEvent{CPU: e.cpu, Kind: StatusFinish, TaskID: t.ID, Priority: t.Priority, Name: t.Name})
		} else {
			e.tableMu.Lock()
			e.table.Insert(t)
			e.tableMu.Unlock()
			e.sys.emit(StatusEvent{CPU: e.cpu, Kind: StatusPending, TaskID: t.ID, Priority: t.Priority, Name: t.Name})
		}

		if e.budget.take() {
			e.stats.budgetBreaks.Add(1)
			e.sys.emit(StatusEvent{CPU: e.cpu, Kind: StatusBudget, TaskID: t.ID})
			return
		}
	}
}

// poll runs one poll of t with no scheduler lock held. A panicking body is
// treated as finished so it cannot take the CPU down with it.
func (e *Executor) poll(t *Task) (res PollResult) {
	cx := &Context{exec: e, tok: Pack(t.ID, t.Priority, e.cpu)}
	t.Polls++
	e.stats.polls.Add(1)
	e.sys.emit(StatusEvent{CPU: e.cpu, Kind: StatusDispatch, TaskID: t.ID, Priority: t.Priority, Name: t.Name})

	defer func() {
		if r := recover(); r != nil {
			e.stats.panics.Add(1)
			e.logger.Error("task panicked, dropping it", "task", t.ID, "name", t.Name, "panic", r)
			e.sys.emit(StatusEvent{CPU: e.cpu, Kind: StatusPanic, TaskID: t.ID, Priority: t.Priority, Name: t.Name})
			res = Ready
		}
	}()
	return t.Body.Poll(cx)
}

// deliver queues a wake from any goroutine.
func (e *Executor) deliver(tok Token) {
	e.stats.wakes.Add(1)
	e.inbox.push(tok)
}

// drainInbox moves delivered wakes into the ready queues.
func (e *Executor) drainInbox() {
	if e.inbox.empty() {
		return
	}
	e.readyMu.Lock()
	e.inbox.drain(func(tok Token) {
		if !e.ready.Push(tok.Priority(), tok.ID()) {
			e.stats.duplicates.Add(1)
		}
	})
	e.readyMu.Unlock()
}

func (e *Executor) hasWork() bool {
	if !e.inbox.empty() {
		return true
	}
	e.readyMu.Lock()
	defer e.readyMu.Unlock()
	return !e.ready.Empty()
}

// Len returns the number of tasks tracked by this CPU, excluding one that is
// being polled right now.
func (e *Executor) Len() int {
	e.tableMu.Lock()
	defer e.tableMu.Unlock()
	return e.table.Len()
}

// Stats returns a snapshot of this CPU's counters.
func (e *Executor) Stats() ExecutorStats {
	e.tableMu.Lock()
	live := e.table.Len()
	e.tableMu.Unlock()
	e.readyMu.Lock()
	queued := e.ready.Len()
	e.readyMu.Unlock()

	return ExecutorStats{
		CPU:          e.cpu,
		Spawned:      e.stats.spawned.Load(),
		Polls:        e.stats.polls.Load(),
		Completed:    e.stats.completed.Load(),
		Misses:       e.stats.misses.Load(),
		Duplicates:   e.stats.duplicates.Load(),
		Wakes:        e.stats.wakes.Load(),
		Steals:       e.stats.steals.Load(),
		Stolen:       e.stats.stolen.Load(),
		BudgetBreaks: e.stats.budgetBreaks.Load(),
		Halts:        e.stats.halts.Load(),
		Panics:       e.stats.panics.Load(),
		Live:         live,
		Queued:       queued,
	}
}
