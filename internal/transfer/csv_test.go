package transfer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jparkin/trainer-booking/internal/model"
)

func TestWriteThenReadBookings(t *testing.T) {
	in := []model.Booking{
		{ID: 1, ClientID: 3, ClientName: "Alice Johnson", Date: "2026-03-02", StartMin: 540, DurationMin: 60, SessionType: "PT", Status: model.StatusScheduled},
		{ID: 2, ClientID: 4, ClientName: "Ben, Carter", Date: "2026-03-03", StartMin: 600, DurationMin: 45, Status: model.StatusCompleted},
	}

	var buf bytes.Buffer
	if err := WriteBookings(&buf, in); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := ReadBookings(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("want 2 bookings, got %d", len(out))
	}
	if out[0].ClientID != 3 || out[0].Date != "2026-03-02" || out[0].StartMin != 540 || out[0].DurationMin != 60 {
		t.Fatalf("first booking mangled: %+v", out[0])
	}
	if out[1].ClientName != "Ben, Carter" {
		t.Fatalf("quoted comma not round-tripped: %q", out[1].ClientName)
	}
	if out[1].Status != model.StatusCompleted {
		t.Fatalf("status not preserved: %q", out[1].Status)
	}
}

func TestReadBookings_RejectsBadRows(t *testing.T) {
	cases := []struct {
		name string
		row  string
	}{
		{"zero client id", `5,0,Alice,2026-03-02,540,60,PT,SCHEDULED`},
		{"bad date", `5,3,Alice,02/03/2026,540,60,PT,SCHEDULED`},
		{"negative start", `5,3,Alice,2026-03-02,-10,60,PT,SCHEDULED`},
		{"start past midnight", `5,3,Alice,2026-03-02,1440,60,PT,SCHEDULED`},
		{"zero duration", `5,3,Alice,2026-03-02,540,0,PT,SCHEDULED`},
		{"unknown status", `5,3,Alice,2026-03-02,540,60,PT,PENDING`},
	}
	header := strings.Join([]string{"id", "client_id", "client_name", "date", "start_min", "duration_min", "session_type", "status"}, ",")

	for _, tc := range cases {
		_, err := ReadBookings(strings.NewReader(header + "\n" + tc.row + "\n"))
		if err == nil {
			t.Fatalf("%s: expected error, got none", tc.name)
		}
		if !strings.Contains(err.Error(), "line 2") {
			t.Fatalf("%s: error does not name the line: %v", tc.name, err)
		}
	}
}

func TestReadBookings_RejectsWrongHeader(t *testing.T) {
	_, err := ReadBookings(strings.NewReader("a,b,c,d,e,f,g,h\n"))
	if err == nil {
		t.Fatal("expected header error")
	}
}

func TestReadBookings_EmptyStatusDefaultsToScheduled(t *testing.T) {
	csv := "id,client_id,client_name,date,start_min,duration_min,session_type,status\n" +
		"1,3,Alice,2026-03-02,540,60,PT,\n"

	out, err := ReadBookings(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out[0].Status != model.StatusScheduled {
		t.Fatalf("want default SCHEDULED, got %q", out[0].Status)
	}
}

func TestWriteClients_Header(t *testing.T) {
	var buf bytes.Buffer
	err := WriteClients(&buf, []model.Client{
		{ID: 1, Name: "Alice Johnson", Gym: "Riverside Gym", OnHoliday: true, SessionsLeft: 5, SessionsCompleted: 12},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != "id,name,gym,phone,email,preferred_time,notes,flags,on_holiday,sessions_left,sessions_completed" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], ",1,5,12") {
		t.Fatalf("row missing holiday flag and counters: %s", lines[1])
	}
}
