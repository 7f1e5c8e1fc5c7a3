package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jparkin/trainer-booking/internal/model"
	"github.com/jparkin/trainer-booking/internal/repository"
)

// BlockHandler serves trainer-unavailable time.  Blocks are created
// without a conflict check: marking time off over existing bookings is
// allowed, and those bookings then show as clashing on the day view.
type BlockHandler struct {
	Blocks *repository.BlockRepo
}

func (h *BlockHandler) bindBlock(c echo.Context) (*model.TrainerBlock, string) {
	var body struct {
		Date        string `json:"date"`
		StartMin    int    `json:"start_min"`
		DurationMin int    `json:"duration_min"`
		Note        string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return nil, "invalid request body"
	}
	if !validDate(body.Date) {
		return nil, "invalid date"
	}
	if body.DurationMin <= 0 || !validSlot(body.StartMin, body.DurationMin) {
		return nil, "invalid start or duration"
	}
	return &model.TrainerBlock{
		Date:        body.Date,
		StartMin:    body.StartMin,
		DurationMin: body.DurationMin,
		Note:        strings.TrimSpace(body.Note),
	}, ""
}

// CreateBlock handles POST /v1/blocks.
func (h *BlockHandler) CreateBlock(c echo.Context) error {
	block, msg := h.bindBlock(c)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}
	if err := h.Blocks.Create(c.Request().Context(), block); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create block"})
	}
	return c.JSON(http.StatusCreated, block)
}

// ListBlocks handles GET /v1/blocks?date=YYYY-MM-DD.
func (h *BlockHandler) ListBlocks(c echo.Context) error {
	date := c.QueryParam("date")
	if !validDate(date) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid date"})
	}
	blocks, err := h.Blocks.ListByDate(c.Request().Context(), date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not list blocks"})
	}
	return c.JSON(http.StatusOK, map[string]any{"blocks": blocks})
}

// UpdateBlock handles PUT /v1/blocks/:id.
func (h *BlockHandler) UpdateBlock(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid block id"})
	}
	block, msg := h.bindBlock(c)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}
	block.ID = id

	err := h.Blocks.Update(c.Request().Context(), block)
	switch {
	case errors.Is(err, repository.ErrBlockNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "block not found"})
	case errors.Is(err, repository.ErrNoChange):
		return c.JSON(http.StatusOK, map[string]string{"message": "no changes"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not update block"})
	}

	fresh, err := h.Blocks.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusOK, block)
	}
	return c.JSON(http.StatusOK, fresh)
}

// DeleteBlock handles DELETE /v1/blocks/:id.
func (h *BlockHandler) DeleteBlock(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid block id"})
	}
	err := h.Blocks.Delete(c.Request().Context(), id)
	switch {
	case errors.Is(err, repository.ErrBlockNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "block not found"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not delete block"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "block deleted"})
}
