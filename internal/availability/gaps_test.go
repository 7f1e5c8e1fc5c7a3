package availability

import "testing"

const (
	workStart = 6 * 60  // 06:00
	workEnd   = 22 * 60 // 22:00
)

func TestComputeGaps_EmptyDay(t *testing.T) {
	gaps := ComputeGaps(nil, workStart, workEnd)
	if len(gaps) != 1 {
		t.Fatalf("empty day: %d gaps, want 1", len(gaps))
	}
	if gaps[0].StartMin != workStart || gaps[0].EndMin != workEnd {
		t.Fatalf("empty day gap = %+v, want full window", gaps[0])
	}
}

func TestComputeGaps_FullyBooked(t *testing.T) {
	occupied := []Interval{{StartMin: workStart, DurationMin: workEnd - workStart}}
	if gaps := ComputeGaps(occupied, workStart, workEnd); len(gaps) != 0 {
		t.Fatalf("fully booked day: got %v, want no gaps", gaps)
	}
}

func TestComputeGaps_WalkAndTrailing(t *testing.T) {
	occupied := []Interval{
		{StartMin: 9 * 60, DurationMin: 60},       // 09:00–10:00
		{StartMin: 9*60 + 30, DurationMin: 60},    // 09:30–10:30 overlapping
		{StartMin: 14 * 60, DurationMin: 30},      // 14:00–14:30
		{StartMin: 5 * 60, DurationMin: 30},       // before window, dropped
		{StartMin: 21*60 + 30, DurationMin: 120},  // clamped to 21:30–22:00
		{StartMin: 12 * 60, DurationMin: 0},       // zero length, dropped
	}
	gaps := ComputeGaps(occupied, workStart, workEnd)
	want := []Gap{
		{StartMin: 6 * 60, EndMin: 9 * 60},
		{StartMin: 10*60 + 30, EndMin: 14 * 60},
		{StartMin: 14*60 + 30, EndMin: 21*60 + 30},
	}
	if len(gaps) != len(want) {
		t.Fatalf("got %v, want %v", gaps, want)
	}
	for i := range want {
		if gaps[i] != want[i] {
			t.Fatalf("gap[%d] = %+v, want %+v", i, gaps[i], want[i])
		}
	}
}

func TestComputeGaps_ContainedIntervalDoesNotRewindCursor(t *testing.T) {
	occupied := []Interval{
		{StartMin: 9 * 60, DurationMin: 180}, // 09:00–12:00
		{StartMin: 10 * 60, DurationMin: 30}, // contained
	}
	gaps := ComputeGaps(occupied, workStart, workEnd)
	want := []Gap{
		{StartMin: 6 * 60, EndMin: 9 * 60},
		{StartMin: 12 * 60, EndMin: 22 * 60},
	}
	if len(gaps) != 2 || gaps[0] != want[0] || gaps[1] != want[1] {
		t.Fatalf("got %v, want %v", gaps, want)
	}
}
