// internal/sched/tickclock.go

package sched

import (
	"sync/atomic"
	"time"
)

// TickClock is the periodic timer interrupt: it calls onTick once per
// interval from its own goroutine and counts ticks atomically.
type TickClock struct {
	onTick func()
	count  atomic.Int64
	stop   chan struct{}
	done   chan struct{}
}

// NewTickClock creates a clock but does not start it.
func NewTickClock(onTick func()) *TickClock {
	return &TickClock{
		onTick: onTick,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins firing ticks at the given interval.
func (c *TickClock) Start(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer close(c.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.count.Add(1)
				c.onTick()
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop signals the clock to stop and waits for the last tick to finish.
func (c *TickClock) Stop() {
	close(c.stop)
	<-c.done
}

// Count returns the number of ticks fired so far.
func (c *TickClock) Count() int64 {
	return c.count.Load()
}
