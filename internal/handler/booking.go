package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jparkin/trainer-booking/internal/availability"
	"github.com/jparkin/trainer-booking/internal/model"
	"github.com/jparkin/trainer-booking/internal/queue"
	"github.com/jparkin/trainer-booking/internal/repository"
	queue_publisher "github.com/jparkin/trainer-booking/internal/service"
)

// BookingHandler serves the booking lifecycle endpoints.  Every
// placement goes through the same conflict check: trainer blocks are
// hard conflicts, other bookings are soft and overridable.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Blocks   *repository.BlockRepo
	Clients  *repository.ClientRepo

	// DefaultDurationMin fills in the session length when a request
	// omits it.
	DefaultDurationMin int
}

// checkDay loads the conflict population for a date (scheduled bookings
// minus the ones being moved, plus all blocks) and runs the check.
func (h *BookingHandler) checkDay(ctx context.Context, date string, req availability.CheckRequest) (availability.Result, error) {
	bookings, err := h.Bookings.ListScheduledByDate(ctx, date, req.Exclude)
	if err != nil {
		return availability.Result{}, err
	}
	blocks, err := h.Blocks.ListByDate(ctx, date)
	if err != nil {
		return availability.Result{}, err
	}
	return availability.Check(req, bookingSlots(bookings), blockSlots(blocks)), nil
}

func bookingSlots(bookings []model.Booking) []availability.BookingSlot {
	slots := make([]availability.BookingSlot, 0, len(bookings))
	for _, b := range bookings {
		slots = append(slots, availability.BookingSlot{
			ID:         b.ID,
			ClientName: b.ClientName,
			Interval:   availability.Interval{StartMin: b.StartMin, DurationMin: b.DurationMin},
		})
	}
	return slots
}

func blockSlots(blocks []model.TrainerBlock) []availability.BlockSlot {
	slots := make([]availability.BlockSlot, 0, len(blocks))
	for _, b := range blocks {
		slots = append(slots, availability.BlockSlot{
			ID:       b.ID,
			Note:     b.Note,
			Interval: availability.Interval{StartMin: b.StartMin, DurationMin: b.DurationMin},
		})
	}
	return slots
}

// conflictResponse writes the 409 payload for a failed check.
func conflictResponse(c echo.Context, res availability.Result) error {
	msg := "time overlaps existing bookings"
	if res.Status == availability.StatusBlockConflict {
		msg = "time overlaps trainer-unavailable block"
	}
	return c.JSON(http.StatusConflict, map[string]any{
		"error":     msg,
		"conflicts": res.Conflicts,
	})
}

// notify publishes a session event without blocking the request.  The
// broker being down only costs the notification.
func (h *BookingHandler) notify(action string, b *model.Booking, phone string) {
	ev := queue.SessionEvent{
		Action:      action,
		BookingID:   b.ID,
		ClientID:    b.ClientID,
		ClientName:  b.ClientName,
		ClientPhone: phone,
		Date:        b.Date,
		StartTime:   availability.MinutesOfDay(b.StartMin),
		DurationMin: b.DurationMin,
		SessionType: b.SessionType,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishSessionEvent(ctx, ev)
	}()
}

// CreateBooking handles POST /v1/bookings.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var body struct {
		ClientID    uint64 `json:"client_id"`
		Date        string `json:"date"`
		StartMin    int    `json:"start_min"`
		DurationMin int    `json:"duration_min"`
		SessionType string `json:"session_type"`
		Override    bool   `json:"override"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if body.ClientID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "client_id is required"})
	}
	if !validDate(body.Date) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid date"})
	}
	if body.DurationMin == 0 {
		body.DurationMin = h.DefaultDurationMin
	}
	if !validSlot(body.StartMin, body.DurationMin) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid start or duration"})
	}

	ctx := c.Request().Context()
	client, err := h.Clients.GetByID(ctx, body.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "client not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load client"})
	}

	res, err := h.checkDay(ctx, body.Date, availability.CheckRequest{
		Target:   availability.Interval{StartMin: body.StartMin, DurationMin: body.DurationMin},
		Override: body.Override,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not check availability"})
	}
	if !res.OK() {
		return conflictResponse(c, res)
	}

	booking := &model.Booking{
		ClientID:    body.ClientID,
		Date:        body.Date,
		StartMin:    body.StartMin,
		DurationMin: body.DurationMin,
		SessionType: body.SessionType,
		Status:      model.StatusScheduled,
	}

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cancelled, err := h.Bookings.CancelTx(ctx, tx, res.CancelIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not cancel clashing bookings"})
	}
	if err := h.Bookings.CreateTx(ctx, tx, booking); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create booking"})
	}
	committed = true

	fresh, err := h.Bookings.GetByID(ctx, booking.ID)
	if err != nil {
		fresh = booking
		fresh.ClientName = client.Name
	}
	h.notify(queue.ActionBooked, fresh, client.Phone)

	return c.JSON(http.StatusCreated, map[string]any{
		"booking":   fresh,
		"cancelled": cancelled,
	})
}

// ListBookings handles GET /v1/bookings?date=YYYY-MM-DD and returns
// the day's bookings in all statuses.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	date := c.QueryParam("date")
	if !validDate(date) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid date"})
	}
	bookings, err := h.Bookings.ListByDate(c.Request().Context(), date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not list bookings"})
	}
	return c.JSON(http.StatusOK, map[string]any{"bookings": bookings})
}

// GetBooking handles GET /v1/bookings/:id.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid booking id"})
	}
	booking, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load booking"})
	}
	return c.JSON(http.StatusOK, booking)
}

// rescheduleTarget resolves a partial reschedule request against the
// booking's current slot: any field the caller omitted keeps its
// current value.
func rescheduleTarget(b *model.Booking, date string, startMin *int, durationMin int) (string, int, int) {
	if date == "" {
		date = b.Date
	}
	start := b.StartMin
	if startMin != nil {
		start = *startMin
	}
	if durationMin == 0 {
		durationMin = b.DurationMin
	}
	return date, start, durationMin
}

// Reschedule handles PUT /v1/bookings/:id/reschedule.  The booking
// being moved is excluded from its own conflict check.
func (h *BookingHandler) Reschedule(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid booking id"})
	}
	var body struct {
		Date        string `json:"date"`
		StartMin    *int   `json:"start_min"`
		DurationMin int    `json:"duration_min"`
		Override    bool   `json:"override"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	booking, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load booking"})
	}
	if booking.Status != model.StatusScheduled {
		return c.JSON(http.StatusConflict, map[string]string{"error": "only scheduled bookings can be moved"})
	}

	date, startMin, durationMin := rescheduleTarget(booking, body.Date, body.StartMin, body.DurationMin)
	if !validDate(date) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid date"})
	}
	if !validSlot(startMin, durationMin) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid start or duration"})
	}

	res, err := h.checkDay(ctx, date, availability.CheckRequest{
		Target:   availability.Interval{StartMin: startMin, DurationMin: durationMin},
		Exclude:  []uint64{id},
		Override: body.Override,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not check availability"})
	}
	if !res.OK() {
		return conflictResponse(c, res)
	}

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cancelled, err := h.Bookings.CancelTx(ctx, tx, res.CancelIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not cancel clashing bookings"})
	}
	err = h.Bookings.UpdateScheduleTx(ctx, tx, id, date, startMin, durationMin)
	switch {
	case errors.Is(err, repository.ErrNoChange):
		// The slot itself is unchanged, but any override cancellations
		// above still have to stick.
		if err := tx.Commit(); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not reschedule booking"})
		}
		committed = true
		return c.JSON(http.StatusOK, map[string]any{"message": "no changes", "cancelled": cancelled})
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "booking not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, map[string]string{"error": "only scheduled bookings can be moved"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not reschedule booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not reschedule booking"})
	}
	committed = true

	fresh, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load booking"})
	}
	phone := ""
	if client, err := h.Clients.GetByID(ctx, fresh.ClientID); err == nil {
		phone = client.Phone
	}
	h.notify(queue.ActionRescheduled, fresh, phone)

	return c.JSON(http.StatusOK, map[string]any{
		"booking":   fresh,
		"cancelled": cancelled,
	})
}

// BulkAmend handles POST /v1/bookings/bulk-amend: move a set of
// bookings in one operation, either to an absolute date/start (all
// selected land on the same slot) or by relative day/minute shifts.
// All selected bookings are excluded from the conflict population, and
// the post-move set is additionally checked against itself so moves
// that stack selected bookings on top of each other are caught.  The
// severity of those self-overlaps is chosen per request.
func (h *BookingHandler) BulkAmend(c echo.Context) error {
	var body struct {
		BookingIDs  []uint64 `json:"booking_ids"`
		Date        string   `json:"date"`
		StartMin    *int     `json:"start_min"`
		DayOffset   int      `json:"day_offset"`
		MinuteShift int      `json:"minute_shift"`
		Override    bool     `json:"override"`
		SelfOverlap string   `json:"self_overlap"` // "advisory" (default) or "blocking"
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if len(body.BookingIDs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "booking_ids is required"})
	}
	if body.Date != "" && !validDate(body.Date) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid date"})
	}
	if body.Date == "" && body.StartMin == nil && body.DayOffset == 0 && body.MinuteShift == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "nothing to amend"})
	}
	policy := availability.SelfOverlapAdvisory
	switch body.SelfOverlap {
	case "", "advisory":
	case "blocking":
		policy = availability.SelfOverlapBlocking
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid self_overlap policy"})
	}

	ctx := c.Request().Context()

	type move struct {
		booking  *model.Booking
		date     string
		startMin int
	}
	moves := make([]move, 0, len(body.BookingIDs))
	for _, id := range body.BookingIDs {
		booking, err := h.Bookings.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrBookingNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "booking not found"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load bookings"})
		}
		if booking.Status != model.StatusScheduled {
			return c.JSON(http.StatusConflict, map[string]string{"error": "only scheduled bookings can be moved"})
		}
		newDate := body.Date
		if newDate == "" {
			day, _ := time.Parse(dateLayout, booking.Date)
			newDate = day.AddDate(0, 0, body.DayOffset).Format(dateLayout)
		}
		newStart := booking.StartMin + body.MinuteShift
		if body.StartMin != nil {
			newStart = *body.StartMin
		}
		if !validSlot(newStart, booking.DurationMin) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "shift moves a booking outside the day"})
		}
		moves = append(moves, move{booking: booking, date: newDate, startMin: newStart})
	}

	// One combined result across the set: each move checked against the
	// day's remaining population, plus the post-move set checked
	// pairwise against itself.  The selected ids are excluded from the
	// day populations, so the pairwise pass is the only thing that can
	// see two selected bookings landing on top of each other.
	results := make([]availability.Result, 0, len(moves)+1)
	placements := make([]availability.Placement, 0, len(moves))
	for _, m := range moves {
		placements = append(placements, availability.Placement{
			ID:       m.booking.ID,
			Date:     m.date,
			Interval: availability.Interval{StartMin: m.startMin, DurationMin: m.booking.DurationMin},
		})
		res, err := h.checkDay(ctx, m.date, availability.CheckRequest{
			Target:   availability.Interval{StartMin: m.startMin, DurationMin: m.booking.DurationMin},
			Exclude:  body.BookingIDs,
			Override: body.Override,
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not check availability"})
		}
		results = append(results, res)
	}
	results = append(results, availability.SelfOverlapResult(placements, policy, body.Override))
	merged := availability.MergeResults(results...)
	if !merged.OK() {
		return conflictResponse(c, merged)
	}

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cancelled, err := h.Bookings.CancelTx(ctx, tx, merged.CancelIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not cancel clashing bookings"})
	}
	for _, m := range moves {
		err := h.Bookings.UpdateScheduleTx(ctx, tx, m.booking.ID, m.date, m.startMin, m.booking.DurationMin)
		if err != nil && !errors.Is(err, repository.ErrNoChange) {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not move bookings"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not move bookings"})
	}
	committed = true

	moved := make([]model.Booking, 0, len(moves))
	for _, m := range moves {
		fresh, err := h.Bookings.GetByID(ctx, m.booking.ID)
		if err != nil {
			continue
		}
		moved = append(moved, *fresh)
		phone := ""
		if client, err := h.Clients.GetByID(ctx, fresh.ClientID); err == nil {
			phone = client.Phone
		}
		h.notify(queue.ActionRescheduled, fresh, phone)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"bookings":  moved,
		"cancelled": cancelled,
		"conflicts": merged.Conflicts,
	})
}

// Complete handles POST /v1/bookings/:id/complete.  The status change
// and the session-counter transfer commit together.
func (h *BookingHandler) Complete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	clientID, err := h.Bookings.CompleteTx(ctx, tx, id)
	switch {
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "booking not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, map[string]string{"error": "booking is not scheduled"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not complete booking"})
	}

	client, err := h.Clients.GetForUpdateTx(ctx, tx, clientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load client"})
	}
	client.CompleteSession()
	if err := h.Clients.SetCountersTx(ctx, tx, clientID, client.SessionsLeft, client.SessionsCompleted); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not update counters"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not complete booking"})
	}
	committed = true

	return c.JSON(http.StatusOK, map[string]any{
		"sessions_left":      client.SessionsLeft,
		"sessions_completed": client.SessionsCompleted,
	})
}

// Cancel handles POST /v1/bookings/:id/cancel.  Cancellation is a
// status flip; the row stays for history.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()

	booking, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load booking"})
	}
	if booking.Status != model.StatusScheduled {
		return c.JSON(http.StatusConflict, map[string]string{"error": "booking is not scheduled"})
	}

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := h.Bookings.CancelTx(ctx, tx, []uint64{id}); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not cancel booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not cancel booking"})
	}
	committed = true

	booking.Status = model.StatusCancelled
	phone := ""
	if client, err := h.Clients.GetByID(ctx, booking.ClientID); err == nil {
		phone = client.Phone
	}
	h.notify(queue.ActionCancelled, booking, phone)

	return c.JSON(http.StatusOK, map[string]string{"message": "booking cancelled"})
}
