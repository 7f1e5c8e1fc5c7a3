package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jparkin/trainer-booking/internal/feed"
	"github.com/jparkin/trainer-booking/internal/repository"
)

// FeedHandler serves the iCalendar subscription.
type FeedHandler struct {
	Bookings *repository.BookingRepo
}

// Calendar handles GET /calendar.ics: scheduled bookings from a week
// back onward, so recently passed sessions stay visible in the
// subscribed calendar.
func (h *FeedHandler) Calendar(c echo.Context) error {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -7).Format(dateLayout)
	bookings, err := h.Bookings.ListScheduledFrom(c.Request().Context(), from, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load bookings"})
	}

	c.Response().Header().Set("Content-Disposition", `attachment; filename="schedule.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed.RenderCalendar(bookings, now)))
}
