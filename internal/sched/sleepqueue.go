// internal/sched/sleepqueue.go

package sched

import (
	"sync"

	"github.com/emirpasic/gods/trees/binaryheap"
)

// sleepEntry is one registered deadline. seq keeps equal deadlines in
// registration order.
type sleepEntry struct {
	deadline uint64
	seq      uint64
	tok      Token
}

// SleepQueue is a min-heap of deadlines serviced by the timer tick.
type SleepQueue struct {
	mu   sync.Mutex
	heap *binaryheap.Heap
	seq  uint64
}

func NewSleepQueue() *SleepQueue {
	return &SleepQueue{heap: binaryheap.NewWith(cmpSleepEntry)}
}

// Register arranges for tok to be woken on the first tick >= deadline.
func (q *SleepQueue) Register(deadline uint64, tok Token) {
	q.mu.Lock()
	q.seq++
	q.heap.Push(sleepEntry{deadline: deadline, seq: q.seq, tok: tok})
	q.mu.Unlock()
}

// Expire removes and returns the tokens of entries whose deadline is <= now.
// When limit > 0 at most limit entries are removed; the rest stay for the
// next tick. Entries not yet due are never touched.
func (q *SleepQueue) Expire(now uint64, limit int) []Token {
	q.mu.Lock()
	defer q.mu.Unlock()

	var fired []Token
	for limit <= 0 || len(fired) < limit {
		top, ok := q.heap.Peek()
		if !ok || top.(sleepEntry).deadline > now {
			break
		}
		q.heap.Pop()
		fired = append(fired, top.(sleepEntry).tok)
	}
	return fired
}

// Len is the number of pending entries.
func (q *SleepQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.heap.Size()
}

// NextDeadline returns the earliest pending deadline.
func (q *SleepQueue) NextDeadline() (uint64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	top, ok := q.heap.Peek()
	if !ok {
		return 0, false
	}
	return top.(sleepEntry).deadline, true
}

func cmpSleepEntry(a, b any) int {
	ea, eb := a.(sleepEntry), b.(sleepEntry)
	switch {
	case ea.deadline < eb.deadline:
		return -1
	case ea.deadline > eb.deadline:
		return 1
	case ea.seq < eb.seq:
		return -1
	case ea.seq > eb.seq:
		return 1
	default:
		return 0
	}
}
