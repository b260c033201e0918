//go:build linux

package affinity

import (
	"runtime"
	"testing"

	"golang.org/x/sys/unix"
)

func TestPinRestrictsThread(t *testing.T) {
	if !Supported() {
		t.Fatal("pinning should be supported on linux")
	}
	type result struct {
		pinErr error
		getErr error
		count  int
		core0  bool
	}
	ch := make(chan result, 1)
	go func() {
		var r result
		// NumCPU wraps around to core 0
		if r.pinErr = Pin(runtime.NumCPU()); r.pinErr != nil {
			ch <- r
			return
		}
		defer Unpin()

		var set unix.CPUSet
		r.getErr = unix.SchedGetaffinity(0, &set)
		r.count = set.Count()
		r.core0 = set.IsSet(0)
		ch <- r
	}()

	r := <-ch
	if r.pinErr != nil {
		t.Skipf("affinity not permitted here: %v", r.pinErr)
	}
	if r.getErr != nil {
		t.Fatalf("SchedGetaffinity: %v", r.getErr)
	}
	if r.count != 1 || !r.core0 {
		t.Fatalf("expected only core 0 in mask, got count=%d core0=%v", r.count, r.core0)
	}
}

func TestPinRejectsNegative(t *testing.T) {
	if err := Pin(-1); err == nil {
		t.Fatal("expected error for negative cpu")
	}
}
