package sched

import (
	"context"
	"testing"
)

func TestSleepForIsRelativeToFirstPoll(t *testing.T) {
	sys, _ := newTestSystem(t, testConfig(1))
	e := sys.Executor(0)
	sys.Tick()
	sys.Tick() // now = 2

	done := false
	sys.Spawn(0, Chain(SleepFor(2), Do(func(*Context) { done = true })), Normal)
	ctx := context.Background()
	e.Step(ctx)

	sys.Tick() // 3
	e.Step(ctx)
	if done {
		t.Fatal("woke one tick early")
	}
	sys.Tick() // 4
	e.Step(ctx)
	if !done {
		t.Fatal("did not wake at first poll + 2")
	}
}

func TestSpuriousWakeReRegistersSleep(t *testing.T) {
	sys, _ := newTestSystem(t, testConfig(1))
	e := sys.Executor(0)
	sleeper := SleepUntil(5)
	var tok Token
	sys.Spawn(0, FutureFunc(func(cx *Context) PollResult {
		tok = cx.Token()
		return sleeper.Poll(cx)
	}), Normal)

	ctx := context.Background()
	e.Step(ctx)
	sys.Wake(tok, NoCPU) // spurious
	e.Step(ctx)
	if sys.Sleepers() != 2 {
		t.Fatalf("sleepers = %d, want a fresh registration", sys.Sleepers())
	}
}

func TestChainAndYield(t *testing.T) {
	sys, _ := newTestSystem(t, testConfig(1))
	var trace []string
	sys.Spawn(0, Chain(
		Do(func(*Context) { trace = append(trace, "a") }),
		Yield(),
		Do(func(*Context) { trace = append(trace, "b") }),
	), Normal)
	sys.Spawn(0, Do(func(*Context) { trace = append(trace, "other") }), Normal)

	sys.Executor(0).Step(context.Background())
	want := []string{"a", "other", "b"}
	if len(trace) != len(want) {
		t.Fatalf("trace %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace %v, want %v", trace, want)
		}
	}
}

func TestTaskTableOrdered(t *testing.T) {
	tt := NewTaskTable()
	for _, id := range []TaskID{5, 1, 3} {
		tt.Insert(&Task{ID: id})
	}
	ids := tt.IDs()
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 3 || ids[2] != 5 {
		t.Fatalf("IDs = %v", ids)
	}
	if _, ok := tt.Remove(3); !ok {
		t.Fatal("Remove(3) missed")
	}
	if _, ok := tt.Remove(3); ok {
		t.Fatal("Remove(3) twice succeeded")
	}
	if tt.Len() != 2 {
		t.Fatalf("Len = %d", tt.Len())
	}
}
