package sched

import (
	"github.com/emirpasic/gods/trees/redblacktree"
)

// TaskTable maps task ids to entries for one CPU. It is ordered by id so that
// snapshots come out deterministic. Not safe for concurrent use.
type TaskTable struct {
	rbt *redblacktree.Tree
}

func NewTaskTable() *TaskTable {
	return &TaskTable{rbt: redblacktree.NewWith(cmpTaskID)}
}

// Insert stores t under t.ID, replacing any previous entry.
func (tt *TaskTable) Insert(t *Task) { tt.rbt.Put(t.ID, t) }

// Remove takes the entry for id out of the table.
func (tt *TaskTable) Remove(id TaskID) (*Task, bool) {
	v, ok := tt.rbt.Get(id)
	if !ok {
		return nil, false
	}
	tt.rbt.Remove(id)
	return v.(*Task), true
}

func (tt *TaskTable) Get(id TaskID) (*Task, bool) {
	v, ok := tt.rbt.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Task), true
}

func (tt *TaskTable) Len() int { return tt.rbt.Size() }

// IDs returns the tracked ids in ascending order.
func (tt *TaskTable) IDs() []TaskID {
	keys := tt.rbt.Keys()
	ids := make([]TaskID, len(keys))
	for i, k := range keys {
		ids[i] = k.(TaskID)
	}
	return ids
}

func cmpTaskID(a, b any) int {
	ka, kb := a.(TaskID), b.(TaskID)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	default:
		return 0
	}
}
