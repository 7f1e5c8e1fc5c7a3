package model

import "time"

// Booking statuses.  Status is the single soft-delete representation:
// cancellation flips the status, the row is never removed (except by the
// bulk import replace path).
const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// ValidStatus reports whether s is one of the booking status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Booking is one training session on the calendar.  Date is date-only;
// the session's place in the day is the start offset plus duration, and
// the end is always derived, never stored.
//
// Fields:
//  ID          – primary key identifier.
//  ClientID    – owning client (required; the FK restricts deletes).
//  ClientName  – joined for display, not a column of bookings.
//  Date        – calendar date, "2006-01-02".
//  StartMin    – minutes from midnight.
//  DurationMin – length in minutes.
//  SessionType – short free-text label ("Training", "Consultation").
//  Status      – SCHEDULED, COMPLETED or CANCELLED.
type Booking struct {
	ID          uint64    `json:"id"`
	ClientID    uint64    `json:"client_id"`
	ClientName  string    `json:"client_name,omitempty"`
	Date        string    `json:"date"`
	StartMin    int       `json:"start_min"`
	DurationMin int       `json:"duration_min"`
	SessionType string    `json:"session_type,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EndMin returns the derived end offset in minutes from midnight.
func (b Booking) EndMin() int { return b.StartMin + b.DurationMin }
