//go:build !linux

package affinity

// Pin is a no-op where sched_setaffinity(2) is unavailable.
func Pin(cpu int) error { return nil }

func Unpin() {}

func Supported() bool { return false }
