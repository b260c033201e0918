package sched

import (
	"sync"
	"sync/atomic"
)

// inbox is a lock-free multi-producer single-consumer stack of wakeup tokens.
// Producers may run in interrupt context, so push never blocks and never
// takes a lock the interrupted code could be holding. The owning executor
// drains it into its ready queues.
type inbox struct {
	head atomic.Pointer[wakeNode]
}

type wakeNode struct {
	tok  Token
	next *wakeNode
}

var wakeNodePool = sync.Pool{New: func() any { return new(wakeNode) }}

func (in *inbox) push(tok Token) {
	n := wakeNodePool.Get().(*wakeNode)
	n.tok = tok
	for {
		old := in.head.Load()
		n.next = old
		if in.head.CompareAndSwap(old, n) {
			return
		}
	}
}

func (in *inbox) empty() bool { return in.head.Load() == nil }

// drain detaches everything pushed so far and hands it to fn oldest first.
// Nodes are only ever detached as a whole list, so recycling them cannot
// confuse a concurrent push.
func (in *inbox) drain(fn func(Token)) int {
	n := in.head.Swap(nil)
	if n == nil {
		return 0
	}
	var rev *wakeNode
	for n != nil {
		next := n.next
		n.next = rev
		rev = n
		n = next
	}
	count := 0
	for rev != nil {
		next := rev.next
		fn(rev.tok)
		rev.next = nil
		wakeNodePool.Put(rev)
		rev = next
		count++
	}
	return count
}
