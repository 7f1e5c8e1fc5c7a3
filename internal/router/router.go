// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/jparkin/trainer-booking/internal/handler"
)

// RegisterRoutes registers the operational endpoints on the provided
// Echo instance.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers or monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterClients registers the client roster endpoints under /v1.
func RegisterClients(e *echo.Echo, h *handler.ClientHandler) {
	g := e.Group("/v1/clients")
	g.POST("", h.CreateClient)
	g.GET("", h.ListClients)
	// Registered before /:id so the literal path wins.
	g.GET("/duplicates", h.PreviewDuplicates)
	g.POST("/merge-duplicates", h.MergeDuplicates)
	g.GET("/:id", h.GetClient)
	g.PUT("/:id", h.UpdateClient)
	g.POST("/:id/counters", h.AdjustCounters)
}

// RegisterBookings registers the booking lifecycle endpoints under /v1.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler) {
	g := e.Group("/v1/bookings")
	g.POST("", h.CreateBooking)
	g.GET("", h.ListBookings)
	g.POST("/bulk-amend", h.BulkAmend)
	g.GET("/:id", h.GetBooking)
	g.PUT("/:id/reschedule", h.Reschedule)
	g.POST("/:id/complete", h.Complete)
	g.POST("/:id/cancel", h.Cancel)
}

// RegisterBlocks registers the trainer-unavailable-time endpoints.
func RegisterBlocks(e *echo.Echo, h *handler.BlockHandler) {
	g := e.Group("/v1/blocks")
	g.POST("", h.CreateBlock)
	g.GET("", h.ListBlocks)
	g.PUT("/:id", h.UpdateBlock)
	g.DELETE("/:id", h.DeleteBlock)
}

// RegisterCalendar registers the month grid and day view, optionally
// behind the response cache middleware.
func RegisterCalendar(e *echo.Echo, h *handler.CalendarHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/calendar")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("/month", h.Month)
	g.GET("/day", h.Day)
}

// RegisterFeed registers the iCalendar subscription endpoint.  It lives
// at the root so calendar apps get a clean URL.
func RegisterFeed(e *echo.Echo, h *handler.FeedHandler) {
	e.GET("/calendar.ics", h.Calendar)
}

// RegisterTransfer registers the CSV backup endpoints.
func RegisterTransfer(e *echo.Echo, h *handler.TransferHandler) {
	e.GET("/v1/export/bookings.csv", h.ExportBookings)
	e.GET("/v1/export/clients.csv", h.ExportClients)
	e.POST("/v1/import/bookings", h.ImportBookings)
}
