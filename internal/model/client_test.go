package model

import "testing"

func TestAdjustSessionCounters_LeftFloorsAtZero(t *testing.T) {
	c := Client{SessionsLeft: 3}
	if err := c.AdjustSessionCounters(CounterLeft, -5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.SessionsLeft != 0 {
		t.Fatalf("SessionsLeft=%d, want 0", c.SessionsLeft)
	}
	if err := c.AdjustSessionCounters(CounterLeft, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.SessionsLeft != 4 {
		t.Fatalf("SessionsLeft=%d, want 4", c.SessionsLeft)
	}
}

func TestAdjustSessionCounters_CompleteTruncatesToBalance(t *testing.T) {
	c := Client{SessionsLeft: 2, SessionsCompleted: 1}
	if err := c.AdjustSessionCounters(CounterCompleted, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only 2 were left to consume.
	if c.SessionsLeft != 0 || c.SessionsCompleted != 3 {
		t.Fatalf("after complete: left=%d completed=%d, want 0/3", c.SessionsLeft, c.SessionsCompleted)
	}
}

func TestAdjustSessionCounters_UndoTruncatesToCompleted(t *testing.T) {
	c := Client{SessionsLeft: 1, SessionsCompleted: 2}
	if err := c.AdjustSessionCounters(CounterCompleted, -4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.SessionsLeft != 3 || c.SessionsCompleted != 0 {
		t.Fatalf("after undo: left=%d completed=%d, want 3/0", c.SessionsLeft, c.SessionsCompleted)
	}
}

func TestAdjustSessionCounters_TotalConserved(t *testing.T) {
	c := Client{SessionsLeft: 5, SessionsCompleted: 2}
	start := c.SessionsLeft + c.SessionsCompleted
	for _, d := range []int{3, -1, 10, -10, 2, -2, 1} {
		if err := c.AdjustSessionCounters(CounterCompleted, d); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.SessionsLeft < 0 || c.SessionsCompleted < 0 {
			t.Fatalf("negative counter after delta %d: left=%d completed=%d", d, c.SessionsLeft, c.SessionsCompleted)
		}
		if total := c.SessionsLeft + c.SessionsCompleted; total > start {
			t.Fatalf("total grew from %d to %d after delta %d", start, total, d)
		}
	}
	if total := c.SessionsLeft + c.SessionsCompleted; total != start {
		t.Fatalf("complete/undo sequence changed the package size: %d != %d", total, start)
	}
}

func TestAdjustSessionCounters_UnknownTarget(t *testing.T) {
	c := Client{}
	if err := c.AdjustSessionCounters("bogus", 1); err != ErrUnknownCounter {
		t.Fatalf("err=%v, want ErrUnknownCounter", err)
	}
}

func TestCompleteSession_NoBalance(t *testing.T) {
	c := Client{SessionsLeft: 0, SessionsCompleted: 4}
	c.CompleteSession()
	if c.SessionsLeft != 0 || c.SessionsCompleted != 4 {
		t.Fatalf("completing with no balance changed counters: left=%d completed=%d", c.SessionsLeft, c.SessionsCompleted)
	}
}
