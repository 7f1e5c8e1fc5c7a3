package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jparkin/trainer-booking/internal/availability"
	"github.com/jparkin/trainer-booking/internal/model"
	"github.com/jparkin/trainer-booking/internal/repository"
)

// CalendarHandler serves the month grid and the day schedule.  Both
// sit behind the response cache.
type CalendarHandler struct {
	Bookings *repository.BookingRepo
	Blocks   *repository.BlockRepo

	WorkDayStartMin int
	WorkDayEndMin   int
}

// Month handles GET /v1/calendar/month?year=YYYY&month=M.  Without
// parameters it renders the current month.  Booking counts for the
// whole grid come from a single grouped query.
func (h *CalendarHandler) Month(c echo.Context) error {
	now := time.Now().UTC()
	year := now.Year()
	month := now.Month()

	if s := c.QueryParam("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 1 || y > 9999 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid year"})
		}
		year = y
	}
	if s := c.QueryParam("month"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil || m < 1 || m > 12 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid month"})
		}
		month = time.Month(m)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	from := first.Format(dateLayout)
	to := first.AddDate(0, 1, 0).Format(dateLayout)

	counts, err := h.Bookings.CountScheduledByDay(c.Request().Context(), from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not count bookings"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"year":  year,
		"month": int(month),
		"cells": availability.BuildMonthGrid(year, month, counts),
	})
}

// Day handles GET /v1/calendar/day?date=YYYY-MM-DD.  The response
// carries the day's bookings (all statuses), its blocks, and the free
// gaps inside the working window.  Gaps only consider scheduled
// bookings and blocks.
func (h *CalendarHandler) Day(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		date = time.Now().UTC().Format(dateLayout)
	}
	if !validDate(date) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid date"})
	}
	ctx := c.Request().Context()

	bookings, err := h.Bookings.ListByDate(ctx, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load bookings"})
	}
	blocks, err := h.Blocks.ListByDate(ctx, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load blocks"})
	}

	occupied := make([]availability.Interval, 0, len(bookings)+len(blocks))
	for _, b := range bookings {
		if b.Status != model.StatusScheduled {
			continue
		}
		occupied = append(occupied, availability.Interval{StartMin: b.StartMin, DurationMin: b.DurationMin})
	}
	for _, b := range blocks {
		occupied = append(occupied, availability.Interval{StartMin: b.StartMin, DurationMin: b.DurationMin})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"date":     date,
		"bookings": bookings,
		"blocks":   blocks,
		"gaps":     availability.ComputeGaps(occupied, h.WorkDayStartMin, h.WorkDayEndMin),
	})
}
