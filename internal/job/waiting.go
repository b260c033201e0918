package job

import (
	"sync/atomic"
	"time"

	"coopsched/internal/sched"
)

// Tally counts finished workload tasks.
type Tally struct {
	done atomic.Int64
}

func (t *Tally) Add() { t.done.Add(1) }

func (t *Tally) Done() int64 { return t.done.Load() }

// SleepWork returns a body that sleeps for the given number of ticks and
// then finishes.
func SleepWork(ticks uint64, tally *Tally) sched.Future {
	return sched.Chain(sched.SleepFor(ticks), finish(tally))
}

// SpinWork returns a CPU-bound body that performs iterations units of work,
// yielding whenever the CPU's preemption budget is spent.
func SpinWork(iterations int, tally *Tally) sched.Future {
	remaining := iterations
	return sched.FutureFunc(func(cx *sched.Context) sched.PollResult {
		for remaining > 0 {
			remaining--
			if cx.BudgetExpired() {
				cx.Wake()
				return sched.Pending
			}
		}
		if tally != nil {
			tally.Add()
		}
		return sched.Ready
	})
}

// Device simulates hardware that completes requests after a latency and
// raises an interrupt whose handler wakes the submitting task.
type Device struct {
	Latency time.Duration
}

// Request is one in-flight device operation.
type Request struct {
	complete atomic.Bool
	waker    atomic.Value // sched.Waker, refreshed on every poll
}

// Submit starts a request that will wake w when it completes.
func (d *Device) Submit(w sched.Waker) *Request {
	req := &Request{}
	req.waker.Store(w)
	time.AfterFunc(d.Latency, func() {
		req.complete.Store(true)
		req.waker.Load().(sched.Waker).Wake(sched.NoCPU) // interrupt context
	})
	return req
}

// Poll refreshes the waker and reports whether the request has completed.
// The waker is stored before completion is checked so a completion racing
// with a poll is never lost.
func (r *Request) Poll(w sched.Waker) bool {
	r.waker.Store(w)
	return r.complete.Load()
}

// IOWork returns a body that issues one request to dev and finishes when the
// completion interrupt has fired.
func IOWork(dev *Device, tally *Tally) sched.Future {
	var req *Request
	return sched.FutureFunc(func(cx *sched.Context) sched.PollResult {
		if req == nil {
			req = dev.Submit(cx.Waker())
			return sched.Pending
		}
		if !req.Poll(cx.Waker()) {
			return sched.Pending
		}
		if tally != nil {
			tally.Add()
		}
		return sched.Ready
	})
}

func finish(tally *Tally) sched.Future {
	return sched.Do(func(*sched.Context) {
		if tally != nil {
			tally.Add()
		}
	})
}
