// Package availability contains the scheduling core of the trainer booking
// system: interval overlap checks, the two-tier booking/block conflict
// checker, the month calendar grid builder and free-gap computation for the
// day view.  Everything in this package is a pure function over data the
// caller has already fetched; persistence and HTTP concerns live in the
// repository and handler layers.
package availability

// Interval is a span of time within a single calendar day, expressed as
// minutes from midnight plus a duration in minutes.  The end of the
// interval is derived and never stored.
type Interval struct {
	StartMin    int // minutes from midnight
	DurationMin int // length in minutes
}

// EndMin returns the exclusive end of the interval in minutes from midnight.
func (iv Interval) EndMin() int { return iv.StartMin + iv.DurationMin }

// Overlaps reports whether two half-open intervals [s1, s1+d1) and
// [s2, s2+d2) on the same date intersect.  An interval ending exactly when
// another starts does not overlap.  Zero or negative durations never
// overlap anything.
func (iv Interval) Overlaps(other Interval) bool {
	if iv.DurationMin <= 0 || other.DurationMin <= 0 {
		return false
	}
	return iv.StartMin < other.EndMin() && iv.EndMin() > other.StartMin
}

// Clamp restricts the interval to the window [windowStart, windowEnd).
// The second return value is false when nothing of the interval remains
// inside the window; such intervals must be dropped by the caller.
func (iv Interval) Clamp(windowStart, windowEnd int) (Interval, bool) {
	start := iv.StartMin
	end := iv.EndMin()
	if start < windowStart {
		start = windowStart
	}
	if end > windowEnd {
		end = windowEnd
	}
	if end <= start {
		return Interval{}, false
	}
	return Interval{StartMin: start, DurationMin: end - start}, true
}

// MinutesOfDay formats minutes-from-midnight as "HH:MM" for conflict
// descriptions and day-view payloads.
func MinutesOfDay(min int) string {
	if min < 0 {
		min = 0
	}
	h := min / 60
	m := min % 60
	return twoDigits(h) + ":" + twoDigits(m)
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10%10), byte('0' + n%10)})
}
