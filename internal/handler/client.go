package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jparkin/trainer-booking/internal/model"
	"github.com/jparkin/trainer-booking/internal/repository"
)

// maxCounterDelta bounds a single counter adjustment.  Larger jumps are
// almost always a typo, and blocks of sessions are sold five at a time.
const maxCounterDelta = 5

// normalizeCounterAdjust cleans up a counter adjustment request: the
// target is trimmed and lowercased, and the delta clamped into
// [-maxCounterDelta, maxCounterDelta] rather than rejected.
func normalizeCounterAdjust(target string, delta int) (string, int) {
	if delta > maxCounterDelta {
		delta = maxCounterDelta
	} else if delta < -maxCounterDelta {
		delta = -maxCounterDelta
	}
	return strings.ToLower(strings.TrimSpace(target)), delta
}

// ClientHandler serves the client roster endpoints.
type ClientHandler struct {
	Clients  *repository.ClientRepo
	Bookings *repository.BookingRepo
}

// CreateClient handles POST /v1/clients.
func (h *ClientHandler) CreateClient(c echo.Context) error {
	var body struct {
		Name          string `json:"name"`
		Gym           string `json:"gym"`
		Phone         string `json:"phone"`
		Email         string `json:"email"`
		PreferredTime string `json:"preferred_time"`
		Notes         string `json:"notes"`
		Flags         string `json:"flags"`
		SessionsLeft  int    `json:"sessions_left"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	if body.SessionsLeft < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "sessions_left cannot be negative"})
	}

	client := &model.Client{
		Name:          name,
		Gym:           strings.TrimSpace(body.Gym),
		Phone:         strings.TrimSpace(body.Phone),
		Email:         strings.TrimSpace(body.Email),
		PreferredTime: strings.TrimSpace(body.PreferredTime),
		Notes:         body.Notes,
		Flags:         strings.TrimSpace(body.Flags),
		SessionsLeft:  body.SessionsLeft,
	}
	if err := h.Clients.Create(c.Request().Context(), client); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create client"})
	}
	return c.JSON(http.StatusCreated, client)
}

// ListClients handles GET /v1/clients.
func (h *ClientHandler) ListClients(c echo.Context) error {
	clients, err := h.Clients.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not list clients"})
	}
	return c.JSON(http.StatusOK, map[string]any{"clients": clients})
}

// GetClient handles GET /v1/clients/:id.  The detail view carries the
// client's booking history plus scheduled-session tallies for the
// current week and month.
func (h *ClientHandler) GetClient(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid client id"})
	}
	ctx := c.Request().Context()

	client, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "client not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load client"})
	}

	history, err := h.Bookings.ListByClient(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load bookings"})
	}

	now := time.Now().UTC()
	today := now.Format(dateLayout)

	// History comes newest-first; upcoming is the scheduled part from
	// today onward flipped back into chronological order, nearest first.
	upcoming := make([]model.Booking, 0)
	recent := make([]model.Booking, 0, 10)
	for _, b := range history {
		if b.Status == model.StatusScheduled && b.Date >= today {
			upcoming = append(upcoming, b)
			continue
		}
		if len(recent) < cap(recent) {
			recent = append(recent, b)
		}
	}
	for i, j := 0, len(upcoming)-1; i < j; i, j = i+1, j-1 {
		upcoming[i], upcoming[j] = upcoming[j], upcoming[i]
	}
	if len(upcoming) > 10 {
		upcoming = upcoming[:10]
	}

	weekStart := now.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7)) // Monday
	weekFrom := weekStart.Format(dateLayout)
	weekTo := weekStart.AddDate(0, 0, 7).Format(dateLayout)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthFrom := monthStart.Format(dateLayout)
	monthTo := monthStart.AddDate(0, 1, 0).Format(dateLayout)

	weekCount, err := h.Bookings.CountForClientBetween(ctx, id, weekFrom, weekTo)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not count sessions"})
	}
	monthCount, err := h.Bookings.CountForClientBetween(ctx, id, monthFrom, monthTo)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not count sessions"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"client":               client,
		"upcoming":             upcoming,
		"recent":               recent,
		"scheduled_this_week":  weekCount,
		"scheduled_this_month": monthCount,
	})
}

// UpdateClient handles PUT /v1/clients/:id.  Session counters are not
// writable here; they change through the counters endpoint so every
// adjustment goes through the clamping rules.
func (h *ClientHandler) UpdateClient(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid client id"})
	}
	var body struct {
		Name          string `json:"name"`
		Gym           string `json:"gym"`
		Phone         string `json:"phone"`
		Email         string `json:"email"`
		PreferredTime string `json:"preferred_time"`
		Notes         string `json:"notes"`
		Flags         string `json:"flags"`
		OnHoliday     bool   `json:"on_holiday"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	client := &model.Client{
		ID:            id,
		Name:          name,
		Gym:           strings.TrimSpace(body.Gym),
		Phone:         strings.TrimSpace(body.Phone),
		Email:         strings.TrimSpace(body.Email),
		PreferredTime: strings.TrimSpace(body.PreferredTime),
		Notes:         body.Notes,
		Flags:         strings.TrimSpace(body.Flags),
		OnHoliday:     body.OnHoliday,
	}
	err := h.Clients.UpdateProfile(c.Request().Context(), client)
	switch {
	case errors.Is(err, repository.ErrClientNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "client not found"})
	case errors.Is(err, repository.ErrNoChange):
		return c.JSON(http.StatusOK, map[string]string{"message": "no changes"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not update client"})
	}

	fresh, err := h.Clients.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusOK, client)
	}
	return c.JSON(http.StatusOK, fresh)
}

// AdjustCounters handles POST /v1/clients/:id/counters.  The body names
// a counter ("left" or "completed") and a signed delta.  Transfers
// follow the clamping rules in the model; the delta itself is clamped
// to maxCounterDelta in either direction.
func (h *ClientHandler) AdjustCounters(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid client id"})
	}
	var body struct {
		Target string `json:"target"`
		Delta  int    `json:"delta"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	target, delta := normalizeCounterAdjust(body.Target, body.Delta)
	if delta == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "delta must be non-zero"})
	}

	ctx := c.Request().Context()
	tx, err := h.Clients.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	client, err := h.Clients.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "client not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load client"})
	}
	if err := client.AdjustSessionCounters(target, delta); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown counter target"})
	}
	if err := h.Clients.SetCountersTx(ctx, tx, id, client.SessionsLeft, client.SessionsCompleted); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not update counters"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not update counters"})
	}
	committed = true

	return c.JSON(http.StatusOK, map[string]any{
		"sessions_left":      client.SessionsLeft,
		"sessions_completed": client.SessionsCompleted,
	})
}

// PreviewDuplicates handles GET /v1/clients/duplicates and returns the
// merge groups without changing anything.
func (h *ClientHandler) PreviewDuplicates(c echo.Context) error {
	groups, err := h.Clients.FindDuplicateGroups(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not scan for duplicates"})
	}
	return c.JSON(http.StatusOK, map[string]any{"groups": groups})
}

// MergeDuplicates handles POST /v1/clients/merge-duplicates.  Bookings
// of each duplicate are re-homed onto the surviving client before the
// duplicate rows are removed.
func (h *ClientHandler) MergeDuplicates(c echo.Context) error {
	removed, err := h.Clients.MergeDuplicates(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "merge failed"})
	}
	return c.JSON(http.StatusOK, map[string]any{"removed": removed})
}
