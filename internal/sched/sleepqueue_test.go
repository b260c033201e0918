package sched

import "testing"

func TestSleepQueueFiresAtDeadline(t *testing.T) {
	q := NewSleepQueue()
	tok := Pack(1, Normal, 0)
	q.Register(5, tok)

	for now := uint64(0); now < 5; now++ {
		if fired := q.Expire(now, 0); len(fired) != 0 {
			t.Fatalf("tick %d fired %v before deadline", now, fired)
		}
	}
	fired := q.Expire(5, 0)
	if len(fired) != 1 || fired[0] != tok {
		t.Fatalf("tick 5 fired %v, want [%s]", fired, tok)
	}
	if fired := q.Expire(6, 0); len(fired) != 0 {
		t.Fatalf("entry fired twice: %v", fired)
	}
}

func TestSleepQueueOrderAndLateTick(t *testing.T) {
	q := NewSleepQueue()
	q.Register(9, Pack(3, Normal, 0))
	q.Register(2, Pack(1, Normal, 0))
	q.Register(4, Pack(2, Normal, 0))
	q.Register(4, Pack(4, Normal, 0))
	q.Register(20, Pack(5, Normal, 0))

	// a tick that arrives late fires everything already past due, in order
	fired := q.Expire(10, 0)
	want := []TaskID{1, 2, 4, 3}
	if len(fired) != len(want) {
		t.Fatalf("fired %d entries, want %d", len(fired), len(want))
	}
	for i, tok := range fired {
		if tok.ID() != want[i] {
			t.Fatalf("fired[%d] = %d, want %d", i, tok.ID(), want[i])
		}
	}
	if q.Len() != 1 {
		t.Fatalf("Len = %d, want 1", q.Len())
	}
	if d, ok := q.NextDeadline(); !ok || d != 20 {
		t.Fatalf("NextDeadline = %d,%v", d, ok)
	}
}

func TestSleepQueueDrainBatch(t *testing.T) {
	q := NewSleepQueue()
	for i := TaskID(1); i <= 5; i++ {
		q.Register(1, Pack(i, Normal, 0))
	}
	if n := len(q.Expire(1, 2)); n != 2 {
		t.Fatalf("first batch fired %d, want 2", n)
	}
	if n := len(q.Expire(2, 2)); n != 2 {
		t.Fatalf("second batch fired %d, want 2", n)
	}
	if n := len(q.Expire(3, 2)); n != 1 {
		t.Fatalf("third batch fired %d, want 1", n)
	}
	if _, ok := q.NextDeadline(); ok {
		t.Fatal("queue should be empty")
	}
}
