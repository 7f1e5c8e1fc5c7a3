package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jparkin/trainer-booking/internal/repository"
	"github.com/jparkin/trainer-booking/internal/transfer"
)

// TransferHandler serves the CSV backup endpoints.
type TransferHandler struct {
	Bookings *repository.BookingRepo
	Clients  *repository.ClientRepo
}

// ExportBookings handles GET /v1/export/bookings.csv.
func (h *TransferHandler) ExportBookings(c echo.Context) error {
	bookings, err := h.Bookings.ExportAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load bookings"})
	}
	c.Response().Header().Set("Content-Disposition", `attachment; filename="bookings.csv"`)
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return transfer.WriteBookings(c.Response(), bookings)
}

// ExportClients handles GET /v1/export/clients.csv.
func (h *TransferHandler) ExportClients(c echo.Context) error {
	clients, err := h.Clients.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load clients"})
	}
	c.Response().Header().Set("Content-Disposition", `attachment; filename="clients.csv"`)
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return transfer.WriteClients(c.Response(), clients)
}

// ImportBookings handles POST /v1/import/bookings.  The request body is
// a CSV in the export format; the whole bookings table is replaced in
// one transaction, so a bad file changes nothing.
func (h *TransferHandler) ImportBookings(c echo.Context) error {
	bookings, err := transfer.ReadBookings(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
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
	if err := h.Bookings.ReplaceAllTx(ctx, tx, bookings); err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "file references unknown clients"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "import failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "import failed"})
	}
	committed = true

	return c.JSON(http.StatusOK, map[string]any{"imported": len(bookings)})
}
