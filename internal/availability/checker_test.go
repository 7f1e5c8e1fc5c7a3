package availability

import "testing"

func TestOverlaps_HalfOpen(t *testing.T) {
	a := Interval{StartMin: 540, DurationMin: 60} // 09:00–10:00
	cases := []struct {
		name string
		b    Interval
		want bool
	}{
		{"inside", Interval{StartMin: 570, DurationMin: 30}, true},
		{"straddles start", Interval{StartMin: 510, DurationMin: 60}, true},
		{"straddles end", Interval{StartMin: 590, DurationMin: 60}, true},
		{"covers", Interval{StartMin: 480, DurationMin: 180}, true},
		{"touches end", Interval{StartMin: 600, DurationMin: 30}, false},
		{"touches start", Interval{StartMin: 480, DurationMin: 60}, false},
		{"before", Interval{StartMin: 400, DurationMin: 60}, false},
		{"after", Interval{StartMin: 700, DurationMin: 60}, false},
		{"zero duration", Interval{StartMin: 570, DurationMin: 0}, false},
	}
	for _, tc := range cases {
		if got := a.Overlaps(tc.b); got != tc.want {
			t.Fatalf("%s: Overlaps=%v, want %v", tc.name, got, tc.want)
		}
		if got := tc.b.Overlaps(a); got != tc.want {
			t.Fatalf("%s (reversed): Overlaps=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCheck_BookingConflictScenario(t *testing.T) {
	// Booking A at 09:00 for 60 min exists; a new 09:30/30min request
	// conflicts, a 10:00/30min request touches the boundary and does not.
	existing := []BookingSlot{
		{ID: 1, ClientName: "Alice Johnson", Interval: Interval{StartMin: 540, DurationMin: 60}},
	}

	res := Check(CheckRequest{Target: Interval{StartMin: 570, DurationMin: 30}}, existing, nil)
	if res.Status != StatusBookingConflict {
		t.Fatalf("09:30 request: status=%v, want StatusBookingConflict", res.Status)
	}
	if len(res.Conflicts) != 1 {
		t.Fatalf("09:30 request: %d conflicts, want 1", len(res.Conflicts))
	}
	if res.Conflicts[0].Description != "Alice Johnson @ 09:00 – 10:00" {
		t.Fatalf("unexpected description %q", res.Conflicts[0].Description)
	}
	if res.Conflicts[0].RelatedID != 1 {
		t.Fatalf("related id = %d, want 1", res.Conflicts[0].RelatedID)
	}

	res = Check(CheckRequest{Target: Interval{StartMin: 600, DurationMin: 30}}, existing, nil)
	if !res.OK() || len(res.Conflicts) != 0 {
		t.Fatalf("10:00 request: status=%v conflicts=%d, want OK with none", res.Status, len(res.Conflicts))
	}
}

func TestCheck_OverrideCancelsBookings(t *testing.T) {
	existing := []BookingSlot{
		{ID: 7, ClientName: "Ben Carter", Interval: Interval{StartMin: 540, DurationMin: 60}},
		{ID: 8, ClientName: "Eva Lin", Interval: Interval{StartMin: 555, DurationMin: 60}},
	}
	res := Check(CheckRequest{Target: Interval{StartMin: 560, DurationMin: 45}, Override: true}, existing, nil)
	if !res.OK() {
		t.Fatalf("override check: status=%v, want OK", res.Status)
	}
	if len(res.CancelIDs) != 2 {
		t.Fatalf("cancel ids = %v, want both clashing bookings", res.CancelIDs)
	}
}

func TestCheck_BlockNeverOverridable(t *testing.T) {
	// TrainerBlock 12:00–13:00 "Lunch"; a 12:15–12:45 request stays a
	// block conflict even with override set.
	blocks := []BlockSlot{
		{ID: 3, Note: "Lunch", Interval: Interval{StartMin: 720, DurationMin: 60}},
	}
	res := Check(CheckRequest{Target: Interval{StartMin: 735, DurationMin: 30}, Override: true}, nil, blocks)
	if res.Status != StatusBlockConflict {
		t.Fatalf("status=%v, want StatusBlockConflict", res.Status)
	}
	if len(res.CancelIDs) != 0 {
		t.Fatalf("block conflict must not permit cancellation, got %v", res.CancelIDs)
	}
	if res.Conflicts[0].Description != "Lunch @ 12:00 – 13:00" {
		t.Fatalf("unexpected description %q", res.Conflicts[0].Description)
	}
}

func TestCheck_ExcludesSelfWhenRescheduling(t *testing.T) {
	existing := []BookingSlot{
		{ID: 5, ClientName: "Diego Park", Interval: Interval{StartMin: 540, DurationMin: 60}},
	}
	res := Check(CheckRequest{
		Target:  Interval{StartMin: 550, DurationMin: 60},
		Exclude: []uint64{5},
	}, existing, nil)
	if !res.OK() {
		t.Fatalf("moving a booking within its own slot must not self-conflict, got %v", res.Status)
	}
}

func TestCheck_ZeroDurationNeverConflicts(t *testing.T) {
	existing := []BookingSlot{
		{ID: 1, ClientName: "Alice Johnson", Interval: Interval{StartMin: 540, DurationMin: 60}},
	}
	blocks := []BlockSlot{
		{ID: 2, Note: "Lunch", Interval: Interval{StartMin: 720, DurationMin: 60}},
	}
	res := Check(CheckRequest{Target: Interval{StartMin: 540, DurationMin: 0}}, existing, blocks)
	if !res.OK() || len(res.Conflicts) != 0 {
		t.Fatalf("zero-duration target: status=%v conflicts=%d, want OK with none", res.Status, len(res.Conflicts))
	}
}

func TestSelfOverlapResult_CollidingPlacements(t *testing.T) {
	// Two bookings from different days both landing on 2026-03-04 at
	// 09:00–10:00, as a date-only bulk move produces.
	placements := []Placement{
		{ID: 5, Date: "2026-03-04", Interval: Interval{StartMin: 540, DurationMin: 60}},
		{ID: 6, Date: "2026-03-04", Interval: Interval{StartMin: 540, DurationMin: 60}},
	}

	res := SelfOverlapResult(placements, SelfOverlapAdvisory, false)
	if !res.OK() {
		t.Fatalf("advisory policy: self-overlap alone must not block, got %v", res.Status)
	}
	if len(res.Conflicts) != 1 || res.Conflicts[0].Kind != KindSelfOverlap {
		t.Fatalf("expected a single self-overlap conflict, got %+v", res.Conflicts)
	}
	if res.Conflicts[0].Description != "Selected bookings overlap each other on 2026-03-04 @ 09:00 – 10:00" {
		t.Fatalf("unexpected description %q", res.Conflicts[0].Description)
	}

	res = SelfOverlapResult(placements, SelfOverlapBlocking, false)
	if res.Status != StatusBookingConflict {
		t.Fatalf("blocking policy: status=%v, want StatusBookingConflict", res.Status)
	}

	res = SelfOverlapResult(placements, SelfOverlapBlocking, true)
	if !res.OK() {
		t.Fatalf("blocking policy with override: status=%v, want OK", res.Status)
	}
}

func TestSelfOverlapResult_DisjointPlacements(t *testing.T) {
	cases := []struct {
		name string
		a, b Placement
	}{
		{"different dates", Placement{ID: 1, Date: "2026-03-04", Interval: Interval{StartMin: 540, DurationMin: 60}},
			Placement{ID: 2, Date: "2026-03-05", Interval: Interval{StartMin: 540, DurationMin: 60}}},
		{"boundary touch", Placement{ID: 1, Date: "2026-03-04", Interval: Interval{StartMin: 540, DurationMin: 60}},
			Placement{ID: 2, Date: "2026-03-04", Interval: Interval{StartMin: 600, DurationMin: 60}}},
	}
	for _, tc := range cases {
		res := SelfOverlapResult([]Placement{tc.a, tc.b}, SelfOverlapBlocking, false)
		if !res.OK() || len(res.Conflicts) != 0 {
			t.Fatalf("%s: status=%v conflicts=%d, want OK with none", tc.name, res.Status, len(res.Conflicts))
		}
	}
}

func TestSelfOverlapResult_FlagsEveryCollidingPair(t *testing.T) {
	// Three bookings stacked on one slot collide pairwise: 3 pairs.
	placements := []Placement{
		{ID: 1, Date: "2026-03-04", Interval: Interval{StartMin: 540, DurationMin: 60}},
		{ID: 2, Date: "2026-03-04", Interval: Interval{StartMin: 570, DurationMin: 60}},
		{ID: 3, Date: "2026-03-04", Interval: Interval{StartMin: 540, DurationMin: 120}},
	}
	res := SelfOverlapResult(placements, SelfOverlapAdvisory, false)
	if len(res.Conflicts) != 3 {
		t.Fatalf("want 3 pairwise conflicts, got %d: %+v", len(res.Conflicts), res.Conflicts)
	}
}

func TestMergeResults_HardestStatusWins(t *testing.T) {
	merged := MergeResults(
		Result{Status: StatusOK, CancelIDs: []uint64{4}},
		Result{Status: StatusBookingConflict, Conflicts: []Conflict{{Kind: KindBooking, RelatedID: 9}}},
	)
	if merged.Status != StatusBookingConflict {
		t.Fatalf("merged status=%v, want StatusBookingConflict", merged.Status)
	}
	if merged.CancelIDs != nil {
		t.Fatalf("rejected merge must not carry cancel ids, got %v", merged.CancelIDs)
	}

	merged = MergeResults(
		Result{Status: StatusOK, CancelIDs: []uint64{4, 9}},
		Result{Status: StatusOK, CancelIDs: []uint64{9}},
	)
	if merged.Status != StatusOK || len(merged.CancelIDs) != 2 {
		t.Fatalf("merged=%+v, want OK with cancel ids deduplicated", merged)
	}
}
