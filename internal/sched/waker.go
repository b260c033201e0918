package sched

import "fmt"

// Token layout, least significant bit first:
//
//	bits 0-1   priority
//	bits 2-7   owning CPU index
//	bits 8-63  task id
const (
	prioBits = 2
	cpuBits  = 6
	idBits   = 64 - prioBits - cpuBits

	prioMask = 1<<prioBits - 1
	cpuMask  = 1<<cpuBits - 1

	cpuShift = prioBits
	idShift  = prioBits + cpuBits
)

// MaxCPUs is the number of CPU indices a token can address.
const MaxCPUs = 1 << cpuBits

// NoCPU is the "from" index used by producers that do not run on any
// executor (timer driver, device simulators, tests acting as interrupts).
const NoCPU = -1

// Token is a wakeup token: {priority, owning CPU, task id} packed into one
// word. Copying a Token clones it; there is nothing to release.
type Token uint64

// Pack encodes a token. cpu must be < MaxCPUs and id <= MaxTaskID; out of
// range bits are masked off.
func Pack(id TaskID, prio Priority, cpu int) Token {
	return Token(uint64(id)<<idShift |
		uint64(cpu&cpuMask)<<cpuShift |
		uint64(prio&prioMask))
}

// Unpack decodes a token. A priority pattern that names no tier decodes as
// Normal so foreign bits never make wake delivery fail.
func (t Token) Unpack() (TaskID, Priority, int) {
	return t.ID(), t.Priority(), t.CPU()
}

func (t Token) ID() TaskID { return TaskID(uint64(t) >> idShift) }

func (t Token) CPU() int { return int(uint64(t) >> cpuShift & cpuMask) }

func (t Token) Priority() Priority {
	p := Priority(uint64(t) & prioMask)
	if p >= numPriorities {
		return Normal
	}
	return p
}

func (t Token) String() string {
	id, prio, cpu := t.Unpack()
	return fmt.Sprintf("token{id=%d prio=%s cpu=%d}", id, prio, cpu)
}

// Waker pairs a token with the system whose per-CPU registry resolves it.
// It holds no reference to any executor.
type Waker struct {
	sys *System
	tok Token
}

func (w Waker) Token() Token { return w.tok }

// Wake marks the task ready on its owning CPU. from is the caller's CPU
// index, or NoCPU.
func (w Waker) Wake(from int) {
	if w.sys == nil {
		return
	}
	w.sys.Wake(w.tok, from)
}
