// Package transfer implements CSV export and import of the schedule,
// used for backups and for moving data off the old spreadsheet.
package transfer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jparkin/trainer-booking/internal/model"
)

var bookingHeader = []string{"id", "client_id", "client_name", "date", "start_min", "duration_min", "session_type", "status"}

var clientHeader = []string{"id", "name", "gym", "phone", "email", "preferred_time", "notes", "flags", "on_holiday", "sessions_left", "sessions_completed"}

// WriteBookings streams bookings as CSV with a header row.
func WriteBookings(w io.Writer, bookings []model.Booking) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(bookingHeader); err != nil {
		return err
	}
	for _, b := range bookings {
		rec := []string{
			strconv.FormatUint(b.ID, 10),
			strconv.FormatUint(b.ClientID, 10),
			b.ClientName,
			b.Date,
			strconv.Itoa(b.StartMin),
			strconv.Itoa(b.DurationMin),
			b.SessionType,
			b.Status,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteClients streams clients as CSV with a header row.
func WriteClients(w io.Writer, clients []model.Client) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(clientHeader); err != nil {
		return err
	}
	for _, c := range clients {
		onHoliday := "0"
		if c.OnHoliday {
			onHoliday = "1"
		}
		rec := []string{
			strconv.FormatUint(c.ID, 10),
			c.Name,
			c.Gym,
			c.Phone,
			c.Email,
			c.PreferredTime,
			c.Notes,
			c.Flags,
			onHoliday,
			strconv.Itoa(c.SessionsLeft),
			strconv.Itoa(c.SessionsCompleted),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadBookings parses a booking CSV produced by WriteBookings.  The id
// column is ignored on import; every other field is validated.  The
// returned error names the offending line so a hand-edited file can be
// fixed.
func ReadBookings(r io.Reader) ([]model.Booking, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(bookingHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, want := range bookingHeader {
		if header[i] != want {
			return nil, fmt.Errorf("header column %d: got %q, want %q", i+1, header[i], want)
		}
	}

	bookings := make([]model.Booking, 0)
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		b, err := parseBookingRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func parseBookingRecord(rec []string) (model.Booking, error) {
	var b model.Booking

	clientID, err := strconv.ParseUint(rec[1], 10, 64)
	if err != nil || clientID == 0 {
		return b, fmt.Errorf("invalid client_id %q", rec[1])
	}
	if _, err := time.Parse("2006-01-02", rec[3]); err != nil {
		return b, fmt.Errorf("invalid date %q", rec[3])
	}
	startMin, err := strconv.Atoi(rec[4])
	if err != nil || startMin < 0 || startMin >= 24*60 {
		return b, fmt.Errorf("invalid start_min %q", rec[4])
	}
	durationMin, err := strconv.Atoi(rec[5])
	if err != nil || durationMin <= 0 {
		return b, fmt.Errorf("invalid duration_min %q", rec[5])
	}
	status := rec[7]
	if status == "" {
		status = model.StatusScheduled
	}
	if !model.ValidStatus(status) {
		return b, fmt.Errorf("invalid status %q", rec[7])
	}

	b.ClientID = clientID
	b.ClientName = rec[2]
	b.Date = rec[3]
	b.StartMin = startMin
	b.DurationMin = durationMin
	b.SessionType = rec[6]
	b.Status = status
	return b, nil
}
