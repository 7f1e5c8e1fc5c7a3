package availability

import "sort"

// Gap is a free sub-interval of the working window, in minutes from
// midnight.
type Gap struct {
	StartMin int `json:"start_min"`
	EndMin   int `json:"end_min"`
}

// ComputeGaps returns the free sub-intervals of [windowStart, windowEnd)
// left uncovered by the occupied intervals (a day's bookings plus
// blocks).  Occupied intervals are clamped into the window first;
// anything empty after clamping is dropped.  The remaining intervals are
// walked in start order with a free cursor: a gap is emitted whenever the
// next occupied interval starts after the cursor, and the cursor advances
// to the later of itself and that interval's end.  Any span left before
// the window end becomes a final gap.
func ComputeGaps(occupied []Interval, windowStart, windowEnd int) []Gap {
	if windowEnd <= windowStart {
		return nil
	}

	clamped := make([]Interval, 0, len(occupied))
	for _, iv := range occupied {
		if c, ok := iv.Clamp(windowStart, windowEnd); ok {
			clamped = append(clamped, c)
		}
	}
	sort.Slice(clamped, func(i, j int) bool {
		if clamped[i].StartMin != clamped[j].StartMin {
			return clamped[i].StartMin < clamped[j].StartMin
		}
		return clamped[i].EndMin() < clamped[j].EndMin()
	})

	gaps := []Gap{}
	cursor := windowStart
	for _, iv := range clamped {
		if iv.StartMin > cursor {
			gaps = append(gaps, Gap{StartMin: cursor, EndMin: iv.StartMin})
		}
		if iv.EndMin() > cursor {
			cursor = iv.EndMin()
		}
	}
	if cursor < windowEnd {
		gaps = append(gaps, Gap{StartMin: cursor, EndMin: windowEnd})
	}
	return gaps
}
