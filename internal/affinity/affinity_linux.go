//go:build linux

package affinity

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Pin locks the calling goroutine to its OS thread and restricts that thread
// to host core cpu modulo the number of host cores. Call Unpin to release.
func Pin(cpu int) error {
	if cpu < 0 {
		return fmt.Errorf("pin: invalid cpu %d", cpu)
	}
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(cpu % runtime.NumCPU())
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		runtime.UnlockOSThread()
		return fmt.Errorf("sched_setaffinity cpu %d: %w", cpu, err)
	}
	return nil
}

// Unpin releases the thread lock taken by Pin.
func Unpin() { runtime.UnlockOSThread() }

// Supported reports whether Pin does anything on this platform.
func Supported() bool { return true }
