package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/jparkin/trainer-booking/internal/model"
)

func TestRenderCalendar_EventTimes(t *testing.T) {
	bookings := []model.Booking{
		{ID: 7, ClientName: "Alice Johnson", Date: "2026-03-02", StartMin: 9*60 + 30, DurationMin: 60, SessionType: "PT"},
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	out := RenderCalendar(bookings, now)

	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"BEGIN:VEVENT\r\n",
		"DTSTART:20260302T093000\r\n",
		"DTEND:20260302T103000\r\n",
		"SUMMARY:PT: Alice Johnson\r\n",
		"DTSTAMP:20260301T120000Z\r\n",
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("calendar missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCalendar_StableUIDs(t *testing.T) {
	b := model.Booking{ID: 42, ClientName: "Ben Carter", Date: "2026-03-02", StartMin: 600, DurationMin: 45}
	now := time.Now()

	first := RenderCalendar([]model.Booking{b}, now)
	second := RenderCalendar([]model.Booking{b}, now.Add(time.Hour))

	uid := EventUID(42)
	if !strings.Contains(first, "UID:"+uid+"\r\n") {
		t.Fatalf("first render missing UID %s", uid)
	}
	if !strings.Contains(second, "UID:"+uid+"\r\n") {
		t.Fatalf("second render changed UID; want %s", uid)
	}
	if uid == EventUID(43) {
		t.Fatal("distinct bookings must get distinct UIDs")
	}
}

func TestRenderCalendar_EscapesSummary(t *testing.T) {
	b := model.Booking{ID: 1, ClientName: "Smith; Jones, Ltd", Date: "2026-03-02", StartMin: 600, DurationMin: 30}

	out := RenderCalendar([]model.Booking{b}, time.Now())

	if !strings.Contains(out, `SUMMARY:Smith\; Jones\, Ltd`) {
		t.Fatalf("summary not escaped:\n%s", out)
	}
}

func TestRenderCalendar_SkipsUnparseableDates(t *testing.T) {
	bookings := []model.Booking{
		{ID: 1, ClientName: "Good", Date: "2026-03-02", StartMin: 600, DurationMin: 30},
		{ID: 2, ClientName: "Bad", Date: "not-a-date", StartMin: 600, DurationMin: 30},
	}

	out := RenderCalendar(bookings, time.Now())

	if got := strings.Count(out, "BEGIN:VEVENT"); got != 1 {
		t.Fatalf("want 1 event, got %d:\n%s", got, out)
	}
}
