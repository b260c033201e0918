package sched

import "sync/atomic"

// budget is the per-CPU preemption-budget flag. Only the timer path sets it;
// only the owning executor clears it, once per poll.
type budget struct {
	flag atomic.Bool
}

func (b *budget) set() { b.flag.Store(true) }

func (b *budget) expired() bool { return b.flag.Load() }

// take clears the flag and reports whether it was set.
func (b *budget) take() bool { return b.flag.CompareAndSwap(true, false) }
