package sched

// stealOrder lists the tiers a thief may take from, in preference order.
var stealOrder = [...]Priority{Normal, Background}

// trySteal migrates one task from another CPU into this one. Victims are
// visited round-robin from a random offset so idle CPUs spread their probes.
func (e *Executor) trySteal() bool {
	n := e.sys.NumCPU()
	if n < 2 {
		return false
	}
	start := e.rng.IntN(n - 1)
	for i := 0; i < n-1; i++ {
		victim := e.sys.executors[(e.cpu+1+(start+i)%(n-1))%n]
		t, ok := victim.stealOne()
		if !ok {
			continue
		}
		from := victim.cpu
		victim.stats.stolen.Add(1)
		e.stats.steals.Add(1)
		e.logger.Debug("stole task", "from", from, "task", t.ID, "priority", t.Priority)

		id := e.admit(t, false)
		e.sys.emit(StatusEvent{CPU: e.cpu, Kind: StatusSteal, TaskID: id, Priority: t.Priority, Name: t.Name, From: from})
		return true
	}
	return false
}

// stealOne removes the tail-most stealable entry of this CPU's Normal or
// Background queue along with its table entry. Both locks are only tried,
// ready queues first, so a busy victim never stalls a thief. Pinned tasks stay
// put, as does a task whose entry is out of the table because it is being
// polled. Critical tasks stay put even when a wake has queued them in a lower
// tier.
func (e *Executor) stealOne() (*Task, bool) {
	if !e.readyMu.TryLock() {
		return nil, false
	}
	defer e.readyMu.Unlock()
	if !e.tableMu.TryLock() {
		return nil, false
	}
	defer e.tableMu.Unlock()

	movable := func(id TaskID) bool {
		t, found := e.table.Get(id)
		return found && !t.Pinned() && t.Priority != Critical
	}
	for _, prio := range stealOrder {
		id, ok := e.ready.StealBack(prio, movable)
		if !ok {
			continue
		}
		t, _ := e.table.Remove(id)
		return t, true
	}
	return nil, false
}
