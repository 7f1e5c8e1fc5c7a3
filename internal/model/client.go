package model

import (
	"errors"
	"time"
)

// Client is a person the trainer works with.  Clients are created via
// the onboarding form and mutated by profile edits, counter adjustments
// and booking completion.  They are never hard-deleted: duplicate
// records are merged instead, with bookings re-pointed to the surviving
// record.
//
// Fields:
//  ID                – primary key identifier.
//  Name              – display name.
//  Gym               – where sessions usually take place.
//  Phone, Email      – contact details (optional).
//  PreferredTime     – free-text label, comma-separated chips.
//  Notes             – trainer's notes.
//  Flags             – legacy free-text flags column.
//  OnHoliday         – client is away; shown on lists.
//  SessionsLeft      – prepaid sessions remaining (never negative).
//  SessionsCompleted – sessions delivered (never negative).
type Client struct {
	ID                uint64    `json:"id"`
	Name              string    `json:"name"`
	Gym               string    `json:"gym,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	Email             string    `json:"email,omitempty"`
	PreferredTime     string    `json:"preferred_time,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	Flags             string    `json:"flags,omitempty"`
	OnHoliday         bool      `json:"on_holiday"`
	SessionsLeft      int       `json:"sessions_left"`
	SessionsCompleted int       `json:"sessions_completed"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Counter adjustment targets accepted by AdjustSessionCounters.
const (
	CounterLeft      = "left"
	CounterCompleted = "completed"
)

// ErrUnknownCounter is returned for an unrecognized adjustment target.
var ErrUnknownCounter = errors.New("unknown counter target")

// AdjustSessionCounters applies a counter delta to the client.  The
// "left" target adjusts the prepaid balance directly (floored at zero,
// e.g. the client buys more sessions).  The "completed" target transfers
// between the two counters: completing consumes from SessionsLeft and
// undoing gives back to it, each truncated to what is actually
// available rather than rejected.  Neither counter ever goes negative,
// and a complete/undo sequence never increases left+completed beyond
// its starting total.
func (c *Client) AdjustSessionCounters(target string, delta int) error {
	switch target {
	case CounterLeft:
		c.SessionsLeft += delta
		if c.SessionsLeft < 0 {
			c.SessionsLeft = 0
		}
	case CounterCompleted:
		if delta > 0 {
			take := min(delta, c.SessionsLeft)
			c.SessionsCompleted += take
			c.SessionsLeft -= take
		} else if delta < 0 {
			give := min(-delta, c.SessionsCompleted)
			c.SessionsCompleted -= give
			c.SessionsLeft += give
		}
	default:
		return ErrUnknownCounter
	}
	return nil
}

// CompleteSession records one delivered session: the standard transfer
// used when a booking is marked completed.
func (c *Client) CompleteSession() {
	_ = c.AdjustSessionCounters(CounterCompleted, 1)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
