package sched

import (
	"fmt"
	"strings"
)

// TaskID identifies a task within a single executor. It is not unique across
// CPUs; the owning CPU index travels separately in the wakeup token.
type TaskID uint64

// MaxTaskID is the largest id that still fits the token's id field.
const MaxTaskID TaskID = 1<<idBits - 1

// Priority is the dispatch tier of a task. Lower numeric value runs first.
type Priority uint8

const (
	Critical   Priority = iota // interrupt bottom halves, completion signalling
	Normal                     // default kernel services
	Background                 // housekeeping

	numPriorities = 3
)

func (p Priority) String() string {
	switch p {
	case Critical:
		return "Critical"
	case Normal:
		return "Normal"
	case Background:
		return "Background"
	default:
		return "Unknown"
	}
}

// ParsePriority accepts the names printed by String, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return Critical, nil
	case "normal", "":
		return Normal, nil
	case "background":
		return Background, nil
	default:
		return Normal, fmt.Errorf("unknown priority %q", s)
	}
}

// NoAffinity marks a task that may migrate between CPUs.
const NoAffinity = -1

// Task is one entry of a task table: the computation plus its metadata.
// It is owned by exactly one executor's table at a time, and is taken out of
// the table while it is being polled.
type Task struct {
	ID       TaskID
	Priority Priority
	Name     string
	Affinity int // NoAffinity, or the CPU this task is pinned to
	Body     Future

	Polls       uint64 // times the body has been polled
	SpawnedTick uint64
}

// Pinned reports whether the task must stay on its current CPU.
func (t *Task) Pinned() bool { return t.Affinity != NoAffinity }

// SpawnOption configures optional task metadata at spawn time.
type SpawnOption func(*Task)

// WithName attaches a human readable name used in logs and traces.
func WithName(name string) SpawnOption {
	return func(t *Task) { t.Name = name }
}

// WithAffinity pins the task to cpu; pinned tasks are never stolen.
func WithAffinity(cpu int) SpawnOption {
	return func(t *Task) { t.Affinity = cpu }
}

// newTask builds a table entry. NOTE: ID is assigned by the executor.
func newTask(body Future, prio Priority, opts ...SpawnOption) *Task {
	if prio >= numPriorities {
		prio = Normal
	}
	t := &Task{
		Priority: prio,
		Affinity: NoAffinity,
		Body:     body,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}
