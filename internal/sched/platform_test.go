package sched

import (
	"context"
	"testing"
	"time"
)

func TestChannelPlatformLatchesSignal(t *testing.T) {
	p := NewChannelPlatform(2)
	p.SignalCPU(1)
	p.SignalCPU(1) // coalesces into the latched doorbell
	p.SignalCPU(7) // offline, ignored

	if got := p.Signals(1); got != 2 {
		t.Fatalf("Signals(1) = %d, want 2", got)
	}
	if got := p.Signals(0); got != 0 {
		t.Fatalf("Signals(0) = %d, want 0", got)
	}
	if got := p.Signals(7); got != 0 {
		t.Fatalf("Signals(7) = %d, want 0", got)
	}

	done := make(chan struct{})
	go func() {
		p.Halt(context.Background(), 1)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("halt ignored a latched signal")
	}
}

func TestChannelPlatformHaltEndsOnCancel(t *testing.T) {
	p := NewChannelPlatform(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	p.Halt(ctx, 0)
	if ctx.Err() == nil {
		t.Fatal("halt returned before a signal or cancellation")
	}
}

func TestSystemUsesDefaultPlatform(t *testing.T) {
	sys := NewSystem(testConfig(2))
	cp, ok := sys.Platform().(*ChannelPlatform)
	if !ok {
		t.Fatalf("default platform is %T", sys.Platform())
	}
	if _, err := sys.Spawn(1, &parked{}, Normal); err != nil {
		t.Fatal(err)
	}
	if cp.Signals(1) != 1 {
		t.Fatalf("spawn sent %d signals to cpu 1, want 1", cp.Signals(1))
	}
}
