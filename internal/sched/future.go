package sched

// PollResult is what a task body reports after one poll.
type PollResult uint8

const (
	Pending PollResult = iota
	Ready
)

func (r PollResult) String() string {
	if r == Ready {
		return "Ready"
	}
	return "Pending"
}

// Future is a resumable computation. Poll runs it until it either finishes
// (Ready) or reaches a point where it must wait (Pending). A body that
// returns Pending must first hand its waker to whatever will resume it,
// otherwise it is never polled again.
type Future interface {
	Poll(cx *Context) PollResult
}

// FutureFunc adapts a plain function to Future.
type FutureFunc func(cx *Context) PollResult

func (f FutureFunc) Poll(cx *Context) PollResult { return f(cx) }

// Context is handed to a body for the duration of one poll. The waker it
// carries is rebuilt for every poll, so it always names the CPU the task
// currently lives on.
type Context struct {
	exec *Executor
	tok  Token
}

// Waker returns a copyable handle that reschedules the polled task.
func (cx *Context) Waker() Waker { return Waker{sys: cx.exec.sys, tok: cx.tok} }

func (cx *Context) Token() Token { return cx.tok }

// CPU is the index of the executor running the poll.
func (cx *Context) CPU() int { return cx.exec.cpu }

// TaskID of the task being polled.
func (cx *Context) TaskID() TaskID { return cx.tok.ID() }

// Wake reschedules the polled task from its own CPU.
func (cx *Context) Wake() { cx.exec.sys.Wake(cx.tok, cx.exec.cpu) }

// Spawn starts a new task on the current CPU.
func (cx *Context) Spawn(body Future, prio Priority, opts ...SpawnOption) TaskID {
	return cx.exec.Spawn(body, prio, opts...)
}

// Now is the current timer tick.
func (cx *Context) Now() uint64 { return cx.exec.sys.Now() }

// BudgetExpired reports whether a timer tick has elapsed since this CPU last
// yielded to the executor. Bodies that loop internally should return Pending
// (after waking themselves) once this turns true.
func (cx *Context) BudgetExpired() bool { return cx.exec.budget.expired() }

// SleepUntil registers the polled task to be woken at deadline.
func (cx *Context) SleepUntil(deadline uint64) { cx.exec.sys.SleepUntil(deadline, cx.tok) }

// Yield returns a body that gives up the CPU exactly once.
func Yield() Future { return &yieldFuture{} }

type yieldFuture struct{ yielded bool }

func (y *yieldFuture) Poll(cx *Context) PollResult {
	if y.yielded {
		return Ready
	}
	y.yielded = true
	cx.Wake()
	return Pending
}

// SleepUntil returns a body that completes on the first poll at or after
// the given tick.
func SleepUntil(deadline uint64) Future { return &sleepFuture{deadline: deadline, armed: true} }

// SleepFor returns a body that completes ticks after its first poll.
func SleepFor(ticks uint64) Future { return &sleepFuture{deadline: ticks} }

type sleepFuture struct {
	deadline uint64
	armed    bool
}

func (s *sleepFuture) Poll(cx *Context) PollResult {
	if !s.armed {
		s.deadline += cx.Now()
		s.armed = true
	}
	if cx.Now() >= s.deadline {
		return Ready
	}
	// spurious wakes simply re-register
	cx.SleepUntil(s.deadline)
	return Pending
}

// Chain runs bodies one after another within a single task.
func Chain(steps ...Future) Future { return &chainFuture{steps: steps} }

type chainFuture struct {
	steps []Future
	next  int
}

func (c *chainFuture) Poll(cx *Context) PollResult {
	for c.next < len(c.steps) {
		if c.steps[c.next].Poll(cx) == Pending {
			return Pending
		}
		c.next++
	}
	return Ready
}

// Do wraps a function that runs to completion in one poll.
func Do(fn func(cx *Context)) Future {
	return FutureFunc(func(cx *Context) PollResult {
		fn(cx)
		return Ready
	})
}
