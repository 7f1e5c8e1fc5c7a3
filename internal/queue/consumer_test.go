package queue

import (
	"strings"
	"testing"
)

func TestComposeMessage_PerAction(t *testing.T) {
	ev := SessionEvent{
		Action:      ActionBooked,
		ClientName:  "Alice Johnson",
		Date:        "2026-03-02",
		StartTime:   "09:30",
		DurationMin: 60,
		SessionType: "PT",
	}

	booked := ComposeMessage(ev)
	if !strings.Contains(booked, "booked in for a PT on 2026-03-02 at 09:30") {
		t.Fatalf("booked message wrong: %q", booked)
	}

	ev.Action = ActionRescheduled
	moved := ComposeMessage(ev)
	if !strings.Contains(moved, "moved to 2026-03-02 at 09:30") {
		t.Fatalf("rescheduled message wrong: %q", moved)
	}

	ev.Action = ActionCancelled
	cancelled := ComposeMessage(ev)
	if !strings.Contains(cancelled, "has been cancelled") {
		t.Fatalf("cancelled message wrong: %q", cancelled)
	}
}

func TestComposeMessage_DefaultsSessionKind(t *testing.T) {
	ev := SessionEvent{Action: ActionBooked, ClientName: "Ben", Date: "2026-03-02", StartTime: "10:00", DurationMin: 45}
	if got := ComposeMessage(ev); !strings.Contains(got, "a session on") {
		t.Fatalf("want generic session kind, got %q", got)
	}
}
