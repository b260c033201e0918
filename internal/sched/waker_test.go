package sched

import (
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	ids := []TaskID{0, 1, 2, 255, 1 << 20, 1<<40 + 7, MaxTaskID - 1, MaxTaskID}
	for _, id := range ids {
		for _, prio := range []Priority{Critical, Normal, Background} {
			for cpu := 0; cpu < MaxCPUs; cpu++ {
				gotID, gotPrio, gotCPU := Pack(id, prio, cpu).Unpack()
				if gotID != id || gotPrio != prio || gotCPU != cpu {
					t.Fatalf("Pack(%d,%s,%d) unpacked to (%d,%s,%d)", id, prio, cpu, gotID, gotPrio, gotCPU)
				}
			}
		}
	}
}

func TestTokenUnknownPriorityDegradesToNormal(t *testing.T) {
	// priority bits 0b11 name no tier
	tok := Pack(42, Critical, 7) | Token(prioMask)
	id, prio, cpu := tok.Unpack()
	if prio != Normal {
		t.Errorf("expected Normal, got %s", prio)
	}
	if id != 42 || cpu != 7 {
		t.Errorf("other fields disturbed: id=%d cpu=%d", id, cpu)
	}

	// arbitrary foreign bit patterns must decode without panicking
	for _, raw := range []uint64{0, ^uint64(0), 0xdeadbeefcafebabe, 3} {
		_, p, c := Token(raw).Unpack()
		if p >= numPriorities || c < 0 || c >= MaxCPUs {
			t.Errorf("Token(%#x) decoded out of range: prio=%d cpu=%d", raw, p, c)
		}
	}
}

func TestTokenCopyIsClone(t *testing.T) {
	a := Pack(9, Background, 3)
	b := a
	if a != b || b.ID() != 9 || b.CPU() != 3 || b.Priority() != Background {
		t.Fatalf("copy differs: %s vs %s", a, b)
	}
}

func TestPackDoesNotAllocate(t *testing.T) {
	allocs := testing.AllocsPerRun(100, func() {
		tok := Pack(123, Normal, 5)
		_, _, _ = tok.Unpack()
	})
	if allocs != 0 {
		t.Fatalf("Pack/Unpack allocated %.0f times", allocs)
	}
}

func TestZeroWakerIsNoop(t *testing.T) {
	var w Waker
	w.Wake(NoCPU) // must not panic
}
