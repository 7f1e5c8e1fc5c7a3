package model

import "time"

// TrainerBlock is trainer-declared unavailable time on a single date.
// Unlike bookings, a block is a hard constraint: a booking that
// conflicts with one can never be forced through with an override.
type TrainerBlock struct {
	ID          uint64    `json:"id"`
	Date        string    `json:"date"` // "2006-01-02"
	StartMin    int       `json:"start_min"`
	DurationMin int       `json:"duration_min"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EndMin returns the derived end offset in minutes from midnight.
func (b TrainerBlock) EndMin() int { return b.StartMin + b.DurationMin }
