// Package handler contains the HTTP handlers for the booking API.
package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

// pathID parses the :id path parameter as an unsigned integer.  Zero is
// never a valid row id.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// validDate reports whether s is a well-formed civil date.
func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// validSlot reports whether a start/duration pair fits inside one day.
// Zero-duration slots are allowed at the API edge; the conflict checker
// treats them as never clashing.
func validSlot(startMin, durationMin int) bool {
	if startMin < 0 || startMin >= 24*60 {
		return false
	}
	if durationMin < 0 || startMin+durationMin > 24*60 {
		return false
	}
	return true
}
