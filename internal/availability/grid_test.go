package availability

import (
	"testing"
	"time"
)

func TestBuildMonthGrid_Shape(t *testing.T) {
	for _, tc := range []struct {
		year  int
		month time.Month
	}{
		{2024, time.June},      // 1st is a Saturday
		{2024, time.July},      // 1st is a Monday
		{2024, time.September}, // 1st is a Sunday
		{2024, time.February},  // leap month
		{2025, time.December},
	} {
		cells := BuildMonthGrid(tc.year, tc.month, nil)
		if len(cells) != 42 {
			t.Fatalf("%d-%02d: %d cells, want 42", tc.year, tc.month, len(cells))
		}
		first, err := time.Parse(DateLayout, cells[0].Date)
		if err != nil {
			t.Fatalf("%d-%02d: bad first cell date %q", tc.year, tc.month, cells[0].Date)
		}
		if first.Weekday() != time.Monday {
			t.Fatalf("%d-%02d: grid starts on %s, want Monday", tc.year, tc.month, first.Weekday())
		}
		// The whole displayed month must be covered by in-month cells,
		// including the 1st.
		inMonth := 0
		sawFirst := false
		for _, c := range cells {
			if !c.InCurrentMonth {
				continue
			}
			inMonth++
			d, err := time.Parse(DateLayout, c.Date)
			if err != nil {
				t.Fatalf("bad cell date %q", c.Date)
			}
			if d.Month() != tc.month || d.Year() != tc.year {
				t.Fatalf("in-month cell %s outside %d-%02d", c.Date, tc.year, tc.month)
			}
			if d.Day() == 1 {
				sawFirst = true
			}
		}
		days := time.Date(tc.year, tc.month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
		if inMonth != days {
			t.Fatalf("%d-%02d: %d in-month cells, want %d", tc.year, tc.month, inMonth, days)
		}
		if !sawFirst {
			t.Fatalf("%d-%02d: 1st of month missing from in-month cells", tc.year, tc.month)
		}
	}
}

func TestBuildMonthGrid_CountsAnnotateInMonthOnly(t *testing.T) {
	counts := map[string]int{
		"2024-06-10": 3,
		"2024-05-31": 9, // leading day from the previous month
	}
	cells := BuildMonthGrid(2024, time.June, counts)
	for _, c := range cells {
		switch c.Date {
		case "2024-06-10":
			if !c.InCurrentMonth || c.BookingCount != 3 {
				t.Fatalf("2024-06-10 cell = %+v, want in-month count 3", c)
			}
		case "2024-05-31":
			if c.InCurrentMonth {
				t.Fatalf("2024-05-31 must be a leading out-of-month cell")
			}
			if c.BookingCount != 0 {
				t.Fatalf("out-of-month cell annotated with count %d", c.BookingCount)
			}
		}
	}
}
