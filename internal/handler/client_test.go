package handler

import "testing"

func TestNormalizeCounterAdjust(t *testing.T) {
	cases := []struct {
		target     string
		delta      int
		wantTarget string
		wantDelta  int
	}{
		{"left", 3, "left", 3},
		{"  Left ", 99, "left", 5},
		{"COMPLETED", -99, "completed", -5},
		{"completed", -1, "completed", -1},
		{"left", 0, "left", 0},
	}
	for _, tc := range cases {
		target, delta := normalizeCounterAdjust(tc.target, tc.delta)
		if target != tc.wantTarget || delta != tc.wantDelta {
			t.Fatalf("normalizeCounterAdjust(%q, %d) = %q, %d; want %q, %d",
				tc.target, tc.delta, target, delta, tc.wantTarget, tc.wantDelta)
		}
	}
}
