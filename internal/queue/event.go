// Package queue defines message payloads exchanged over the message broker.
package queue

// Actions carried by SessionEvent.  One queue serves all booking
// lifecycle notifications; consumers branch on the action.
const (
	ActionBooked      = "booked"
	ActionRescheduled = "rescheduled"
	ActionCancelled   = "cancelled"
)

// SessionEvent is published whenever a booking is created, moved or
// cancelled.  It carries enough information for downstream consumers to
// compose a client notification without querying the primary database.
type SessionEvent struct {
	Action      string `json:"action"`
	BookingID   uint64 `json:"booking_id"`
	ClientID    uint64 `json:"client_id"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone,omitempty"`
	Date        string `json:"date"`       // civil date, YYYY-MM-DD
	StartTime   string `json:"start_time"` // HH:MM
	DurationMin int    `json:"duration_min"`
	SessionType string `json:"session_type,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}
