// Package feed renders the trainer's schedule as an iCalendar feed so
// bookings show up in a phone calendar subscription.
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jparkin/trainer-booking/internal/model"
)

// calNamespace seeds deterministic event UIDs: the same booking always
// yields the same UID, so calendar clients update events in place
// instead of duplicating them on every refresh.
var calNamespace = uuid.MustParse("9d9305aa-4511-46b0-9a43-2c6a08b4a85f")

const dateLayout = "2006-01-02"

// EventUID returns the stable iCalendar UID for a booking.
func EventUID(bookingID uint64) string {
	return uuid.NewSHA1(calNamespace, []byte(fmt.Sprintf("booking-%d", bookingID))).String() + "@trainer-booking"
}

// RenderCalendar produces a VCALENDAR document for the given bookings.
// Times are emitted as floating local times: the trainer works in one
// place and the source data has no timezone.
func RenderCalendar(bookings []model.Booking, now time.Time) string {
	var b strings.Builder
	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:-//trainer-booking//schedule//EN")
	writeLine(&b, "CALSCALE:GREGORIAN")

	stamp := now.UTC().Format("20060102T150405Z")
	for _, bk := range bookings {
		day, err := time.Parse(dateLayout, bk.Date)
		if err != nil {
			continue
		}
		start := day.Add(time.Duration(bk.StartMin) * time.Minute)
		end := day.Add(time.Duration(bk.EndMin()) * time.Minute)

		summary := bk.ClientName
		if bk.SessionType != "" {
			summary = bk.SessionType + ": " + summary
		}

		writeLine(&b, "BEGIN:VEVENT")
		writeLine(&b, "UID:"+EventUID(bk.ID))
		writeLine(&b, "DTSTAMP:"+stamp)
		writeLine(&b, "DTSTART:"+start.Format("20060102T150405"))
		writeLine(&b, "DTEND:"+end.Format("20060102T150405"))
		writeLine(&b, "SUMMARY:"+escapeText(summary))
		writeLine(&b, "END:VEVENT")
	}

	writeLine(&b, "END:VCALENDAR")
	return b.String()
}

// writeLine appends a content line with the CRLF terminator RFC 5545
// requires.
func writeLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteString("\r\n")
}

// escapeText escapes TEXT values per RFC 5545: backslash, semicolon,
// comma and newlines.
func escapeText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\r\n", `\n`,
		"\n", `\n`,
	)
	return r.Replace(s)
}
