package sched

import (
	"context"
	"sync/atomic"
)

// Platform is the hardware boundary the executors rely on.
type Platform interface {
	// SignalCPU delivers an inter-processor interrupt to cpu. It must not
	// block and may be called from any goroutine.
	SignalCPU(cpu int)
	// Halt idles cpu until it is signalled or ctx is done.
	Halt(ctx context.Context, cpu int)
}

// ChannelPlatform models each CPU's interrupt line as a one-slot doorbell.
// A signal that arrives while the CPU is busy stays latched, so a wake racing
// with the decision to halt is never lost.
type ChannelPlatform struct {
	doorbells []chan struct{}
	signals   []atomic.Uint64
}

func NewChannelPlatform(cpus int) *ChannelPlatform {
	p := &ChannelPlatform{
		doorbells: make([]chan struct{}, cpus),
		signals:   make([]atomic.Uint64, cpus),
	}
	for i := range p.doorbells {
		p.doorbells[i] = make(chan struct{}, 1)
	}
	return p
}

func (p *ChannelPlatform) SignalCPU(cpu int) {
	if cpu < 0 || cpu >= len(p.doorbells) {
		return
	}
	p.signals[cpu].Add(1)
	select {
	case p.doorbells[cpu] <- struct{}{}:
	default: // already latched
	}
}

func (p *ChannelPlatform) Halt(ctx context.Context, cpu int) {
	select {
	case <-p.doorbells[cpu]:
	case <-ctx.Done():
	}
}

// Signals returns how many interrupts were sent to cpu.
func (p *ChannelPlatform) Signals(cpu int) uint64 {
	if cpu < 0 || cpu >= len(p.signals) {
		return 0
	}
	return p.signals[cpu].Load()
}
