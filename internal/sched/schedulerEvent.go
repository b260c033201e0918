// internal/sched/schedulerEvent.go

package sched

import (
	"time"
)

// StatusKind represents the type of scheduler event
type StatusKind int

const (
	StatusSpawn StatusKind = iota
	StatusWake
	StatusDispatch
	StatusPending
	StatusFinish
	StatusMiss
	StatusSteal
	StatusBudget
	StatusHalt
	StatusTick
	StatusPanic
)

// StatusEvent is emitted on key executor actions.
type StatusEvent struct {
	Time     time.Time
	Tick     uint64
	CPU      int
	Kind     StatusKind
	TaskID   TaskID
	Priority Priority
	Name     string
	From     int // victim CPU for steals, waker CPU for wakes
}

func (sk StatusKind) String() string {
	switch sk {
	case StatusSpawn:
		return "Spawn"
	case StatusWake:
		return "Wake"
	case StatusDispatch:
		return "Dispatch"
	case StatusPending:
		return "Pending"
	case StatusFinish:
		return "Finish"
	case StatusMiss:
		return "Miss"
	case StatusSteal:
		return "Steal"
	case StatusBudget:
		return "BudgetBreak"
	case StatusHalt:
		return "Halt"
	case StatusTick:
		return "Tick"
	case StatusPanic:
		return "Panic"
	default:
		return "Unknown"
	}
}
