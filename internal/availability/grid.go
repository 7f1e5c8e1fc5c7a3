package availability

import "time"

// DateLayout is the civil-date format used throughout the service for
// date-only values ("2006-01-02").
const DateLayout = "2006-01-02"

// DayCell is one slot of the 42-cell month view.
type DayCell struct {
	Date           string `json:"date"`
	InCurrentMonth bool   `json:"in_current_month"`
	BookingCount   int    `json:"booking_count"`
}

// BuildMonthGrid produces the calendar presentation structure for the
// given year and 1-indexed month: exactly 42 consecutive day cells (six
// full weeks) starting from the Monday on or before the 1st.  Cells
// belonging to the displayed month are annotated with the scheduled
// booking count for that date; counts is keyed by DateLayout dates and is
// expected to be fetched once for the whole month, not per cell.
func BuildMonthGrid(year int, month time.Month, counts map[string]int) []DayCell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// Offset back to Monday: weekday 0=Sunday..6=Saturday, normalized so
	// Monday=0.
	back := (int(first.Weekday()) + 6) % 7
	start := first.AddDate(0, 0, -back)

	cells := make([]DayCell, 0, 42)
	for i := 0; i < 42; i++ {
		d := start.AddDate(0, 0, i)
		cell := DayCell{
			Date:           d.Format(DateLayout),
			InCurrentMonth: d.Month() == month && d.Year() == year,
		}
		if cell.InCurrentMonth {
			cell.BookingCount = counts[cell.Date]
		}
		cells = append(cells, cell)
	}
	return cells
}
