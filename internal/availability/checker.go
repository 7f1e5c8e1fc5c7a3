package availability

import "fmt"

// Status is the outcome of an availability check.
type Status int

const (
	// StatusOK means the target interval can be placed as requested.
	StatusOK Status = iota
	// StatusBookingConflict means the target overlaps other scheduled
	// bookings.  The operation may be retried with Override set, which
	// soft-cancels the clashing bookings.
	StatusBookingConflict
	// StatusBlockConflict means the target overlaps trainer-unavailable
	// time.  Block conflicts are hard: they reject the operation
	// regardless of the override flag.
	StatusBlockConflict
)

// Conflict kinds carried on each entry of Result.Conflicts.
const (
	KindBooking     = "booking"
	KindBlock       = "block"
	KindSelfOverlap = "self_overlap"
)

// SelfOverlapPolicy decides how self-overlaps inside a bulk-move set
// are treated.  Callers choose per request.
type SelfOverlapPolicy int

const (
	// SelfOverlapAdvisory includes the overlaps in the conflict list but
	// never lets them alone reject the operation.
	SelfOverlapAdvisory SelfOverlapPolicy = iota
	// SelfOverlapBlocking treats the overlaps like booking conflicts:
	// the operation is rejected until the caller overrides.
	SelfOverlapBlocking
)

// Conflict describes one existing entry the target interval collides with.
type Conflict struct {
	Kind        string `json:"kind"`
	RelatedID   uint64 `json:"related_id,omitempty"`
	Description string `json:"description"`
}

// BookingSlot is the slice of a scheduled booking the checker needs:
// its id, the owning client's display name and its interval.
type BookingSlot struct {
	ID         uint64
	ClientName string
	Interval
}

// BlockSlot is a trainer-unavailable interval with its note.
type BlockSlot struct {
	ID   uint64
	Note string
	Interval
}

// CheckRequest carries the proposed placement.  The caller is responsible
// for validating date/start/duration before calling; the checker assumes
// well-formed values.  Exclude lists the booking ids being moved so they
// are not compared against themselves; collisions inside the moving set
// are the job of SelfOverlapResult.
type CheckRequest struct {
	Target   Interval
	Exclude  []uint64
	Override bool
}

// Result is the structured outcome of Check.  CancelIDs lists the
// distinct clashing bookings the caller must soft-cancel before
// proceeding; it is only populated when the check passes by override.
type Result struct {
	Status    Status     `json:"status"`
	Conflicts []Conflict `json:"conflicts,omitempty"`
	CancelIDs []uint64   `json:"-"`
}

// OK reports whether the caller may proceed with the mutation.
func (r Result) OK() bool { return r.Status == StatusOK }

// Check decides whether the target interval can be placed on its date.
// Same-day bookings and blocks are supplied by the caller (fetched once
// per day, compared in memory).  Bookings listed in req.Exclude are
// skipped; cancelled and completed bookings must already be filtered out
// by the caller.
//
// Block conflicts are always hard.  Booking conflicts are soft: without
// Override the result lists them for display, with Override the result is
// OK and CancelIDs names the bookings to soft-cancel.  A zero-duration
// target never conflicts with anything.
func Check(req CheckRequest, bookings []BookingSlot, blocks []BlockSlot) Result {
	var res Result
	if req.Target.DurationMin <= 0 {
		return res
	}

	excluded := make(map[uint64]struct{}, len(req.Exclude))
	for _, id := range req.Exclude {
		excluded[id] = struct{}{}
	}

	blockHit := false
	for _, bl := range blocks {
		if !req.Target.Overlaps(bl.Interval) {
			continue
		}
		blockHit = true
		note := bl.Note
		if note == "" {
			note = "Blocked"
		}
		res.Conflicts = append(res.Conflicts, Conflict{
			Kind:        KindBlock,
			RelatedID:   bl.ID,
			Description: fmt.Sprintf("%s @ %s – %s", note, MinutesOfDay(bl.StartMin), MinutesOfDay(bl.EndMin())),
		})
	}

	var clashing []uint64
	for _, bk := range bookings {
		if _, skip := excluded[bk.ID]; skip {
			continue
		}
		if !req.Target.Overlaps(bk.Interval) {
			continue
		}
		clashing = append(clashing, bk.ID)
		name := bk.ClientName
		if name == "" {
			name = "Unknown"
		}
		res.Conflicts = append(res.Conflicts, Conflict{
			Kind:        KindBooking,
			RelatedID:   bk.ID,
			Description: fmt.Sprintf("%s @ %s – %s", name, MinutesOfDay(bk.StartMin), MinutesOfDay(bk.EndMin())),
		})
	}

	switch {
	case blockHit:
		res.Status = StatusBlockConflict
	case len(clashing) > 0 && !req.Override:
		res.Status = StatusBookingConflict
	default:
		res.Status = StatusOK
		if req.Override {
			res.CancelIDs = dedupe(clashing)
		}
	}
	return res
}

// Placement is one booking's proposed position in a bulk move.
type Placement struct {
	ID   uint64
	Date string
	Interval
}

// SelfOverlapResult checks a bulk-move set against itself.  The moving
// bookings are excluded from the per-day conflict population, so a pair
// of them landing on top of each other would otherwise go unseen.
// Every colliding pair on the same date yields a conflict.  Under the
// advisory policy the conflicts inform but never reject; under the
// blocking policy they reject like booking conflicts until the caller
// overrides.
func SelfOverlapResult(placements []Placement, policy SelfOverlapPolicy, override bool) Result {
	var res Result
	for i := 0; i < len(placements); i++ {
		for j := i + 1; j < len(placements); j++ {
			a, b := placements[i], placements[j]
			if a.Date != b.Date || !a.Overlaps(b.Interval) {
				continue
			}
			res.Conflicts = append(res.Conflicts, Conflict{
				Kind:      KindSelfOverlap,
				RelatedID: b.ID,
				Description: fmt.Sprintf("Selected bookings overlap each other on %s @ %s – %s",
					a.Date, MinutesOfDay(max(a.StartMin, b.StartMin)), MinutesOfDay(min(a.EndMin(), b.EndMin()))),
			})
		}
	}
	if len(res.Conflicts) > 0 && policy == SelfOverlapBlocking && !override {
		res.Status = StatusBookingConflict
	}
	return res
}

// MergeResults folds per-booking results from a bulk move into one.  The
// hardest status wins; conflicts are concatenated and cancel ids
// deduplicated across the set.
func MergeResults(results ...Result) Result {
	var merged Result
	var cancel []uint64
	for _, r := range results {
		if r.Status > merged.Status {
			merged.Status = r.Status
		}
		merged.Conflicts = append(merged.Conflicts, r.Conflicts...)
		cancel = append(cancel, r.CancelIDs...)
	}
	merged.CancelIDs = dedupe(cancel)
	if merged.Status != StatusOK {
		merged.CancelIDs = nil
	}
	return merged
}

func dedupe(ids []uint64) []uint64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
