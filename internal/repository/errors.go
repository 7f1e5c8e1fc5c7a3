// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values let the handler layer distinguish
// failure scenarios without inspecting SQL errors: a missing row, an
// update that would not change anything, or a mutation rejected because
// of dependent records.
package repository

import "errors"

// ErrClientNotFound indicates that a client was not located in the DB.
var ErrClientNotFound = errors.New("client not found")

// ErrBookingNotFound indicates that a booking was not located in the DB.
var ErrBookingNotFound = errors.New("booking not found")

// ErrBlockNotFound indicates that a trainer block was not located in the DB.
var ErrBlockNotFound = errors.New("trainer block not found")

// ErrNoChange indicates an UPDATE attempted to set fields equal to the
// current values.  Handlers typically surface it as a 409.
var ErrNoChange = errors.New("no change")

// ErrConflict is returned when a mutation cannot proceed because of
// conflicting state, such as importing bookings that reference unknown
// clients.  Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
