// internal/sched/readyqueue.go

package sched

import (
	"github.com/emirpasic/gods/lists/doublylinkedlist"
)

// DefaultStarvationLimit is how many consecutive Normal dispatches may pass
// before one waiting Background task is forced through.
const DefaultStarvationLimit = 100

// ReadyQueues holds one FIFO per priority tier. It is not safe for concurrent
// use; the executor guards it with its ready lock.
type ReadyQueues struct {
	tiers  [numPriorities]*doublylinkedlist.List // values are TaskID
	queued map[TaskID]Priority                   // ids present in any tier

	normalStreak int
	limit        int
}

// NewReadyQueues creates empty queues. limit <= 0 selects the default.
func NewReadyQueues(limit int) *ReadyQueues {
	if limit <= 0 {
		limit = DefaultStarvationLimit
	}
	rq := &ReadyQueues{
		queued: make(map[TaskID]Priority),
		limit:  limit,
	}
	for i := range rq.tiers {
		rq.tiers[i] = doublylinkedlist.New()
	}
	return rq
}

// Push appends id to the tail of its tier. An id that is already queued is
// left where it is and Push reports false, so waking a task twice before it
// runs yields a single dispatch.
func (rq *ReadyQueues) Push(prio Priority, id TaskID) bool {
	if prio >= numPriorities {
		prio = Normal
	}
	if _, dup := rq.queued[id]; dup {
		return false
	}
	rq.tiers[prio].Add(id)
	rq.queued[id] = prio
	return true
}

// Pop returns the next task to dispatch.
func (rq *ReadyQueues) Pop() (Priority, TaskID, bool) {
	if !rq.tiers[Critical].Empty() {
		rq.normalStreak = 0
		return Critical, rq.popFront(Critical), true
	}
	if !rq.tiers[Normal].Empty() {
		if rq.normalStreak >= rq.limit && !rq.tiers[Background].Empty() {
			rq.normalStreak = 0
			return Background, rq.popFront(Background), true
		}
		rq.normalStreak++
		return Normal, rq.popFront(Normal), true
	}
	if !rq.tiers[Background].Empty() {
		return Background, rq.popFront(Background), true
	}
	return 0, 0, false
}

// StealBack removes the entry nearest the tail of a stealable tier for which
// eligible returns true. Entries it skips keep their place. Critical work
// stays on the CPU where its interrupt fired and is never returned.
func (rq *ReadyQueues) StealBack(prio Priority, eligible func(TaskID) bool) (TaskID, bool) {
	if prio == Critical || prio >= numPriorities {
		return 0, false
	}
	l := rq.tiers[prio]
	it := l.Iterator()
	for it.End(); it.Prev(); {
		id := it.Value().(TaskID)
		if eligible != nil && !eligible(id) {
			continue
		}
		l.Remove(it.Index())
		delete(rq.queued, id)
		return id, true
	}
	return 0, false
}

// Len is the number of queued tasks across all tiers.
func (rq *ReadyQueues) Len() int { return len(rq.queued) }

// LenOf is the number of queued tasks in one tier.
func (rq *ReadyQueues) LenOf(prio Priority) int {
	if prio >= numPriorities {
		return 0
	}
	return rq.tiers[prio].Size()
}

func (rq *ReadyQueues) Empty() bool { return len(rq.queued) == 0 }

// Queued reports whether id is waiting in any tier.
func (rq *ReadyQueues) Queued(id TaskID) bool {
	_, ok := rq.queued[id]
	return ok
}

// Streak exposes the starvation counter for diagnostics.
func (rq *ReadyQueues) Streak() int { return rq.normalStreak }

func (rq *ReadyQueues) popFront(prio Priority) TaskID {
	l := rq.tiers[prio]
	v, _ := l.Get(0)
	l.Remove(0)
	id := v.(TaskID)
	delete(rq.queued, id)
	return id
}
