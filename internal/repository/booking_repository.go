package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jparkin/trainer-booking/internal/model"
)

// BookingRepo provides persistence for bookings.  Bookings are never
// hard-deleted: cancel and complete are status transitions, so history
// survives for the client detail view and exports.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying sql.DB for cross-repository transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `b.id, b.client_id, c.name, b.date, b.start_min, b.duration_min,
	b.session_type, b.status, b.created_at, b.updated_at`

const dateLayout = "2006-01-02"

func scanBooking(row interface{ Scan(...any) error }, b *model.Booking) error {
	var day time.Time
	var sessionType sql.NullString
	err := row.Scan(
		&b.ID, &b.ClientID, &b.ClientName, &day, &b.StartMin, &b.DurationMin,
		&sessionType, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return err
	}
	b.Date = day.Format(dateLayout)
	b.SessionType = sessionType.String
	return nil
}

// Create inserts a booking and reads the full row back, including the
// joined client name.  A missing client surfaces as ErrClientNotFound
// via the foreign key.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (client_id, date, start_min, duration_min, session_type, status)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		b.ClientID, b.Date, b.StartMin, b.DurationMin, nullStr(b.SessionType), b.Status)
	if err != nil {
		if isFKViolation(err) {
			return ErrClientNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return scanBooking(r.db.QueryRowContext(ctx, selectBookingByID, b.ID), b)
}

// CreateTx inserts a booking inside the caller's transaction and sets
// the generated id.  The caller reloads the full row after commit.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (client_id, date, start_min, duration_min, session_type, status)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.ClientID, b.Date, b.StartMin, b.DurationMin, nullStr(b.SessionType), b.Status)
	if err != nil {
		if isFKViolation(err) {
			return ErrClientNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

const selectBookingByID = `SELECT ` + bookingColumns + `
	FROM bookings b JOIN clients c ON c.id = b.client_id
	WHERE b.id = ?`

// GetByID retrieves one booking with its client name joined in.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	var b model.Booking
	if err := scanBooking(r.db.QueryRowContext(ctx, selectBookingByID, id), &b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepo) queryBookings(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// ListByDate returns every booking on the given civil date regardless
// of status, ordered by start time.
func (r *BookingRepo) ListByDate(ctx context.Context, date string) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings b JOIN clients c ON c.id = b.client_id
	           WHERE b.date = ?
	           ORDER BY b.start_min ASC, b.id ASC`
	return r.queryBookings(ctx, q, date)
}

// ListScheduledByDate returns the SCHEDULED bookings on a date, minus
// the excluded ids.  This is the conflict-check population: cancelled
// and completed sessions never block a slot.
func (r *BookingRepo) ListScheduledByDate(ctx context.Context, date string, exclude []uint64) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + `
	      FROM bookings b JOIN clients c ON c.id = b.client_id
	      WHERE b.date = ? AND b.status = ?`
	args := []any{date, model.StatusScheduled}
	if len(exclude) > 0 {
		placeholders := make([]string, len(exclude))
		for i, id := range exclude {
			placeholders[i] = "?"
			args = append(args, id)
		}
		q += ` AND b.id NOT IN (` + strings.Join(placeholders, ",") + `)`
	}
	q += ` ORDER BY b.start_min ASC, b.id ASC`
	return r.queryBookings(ctx, q, args...)
}

// ListByClient returns a client's bookings newest-day-first for the
// detail view.
func (r *BookingRepo) ListByClient(ctx context.Context, clientID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings b JOIN clients c ON c.id = b.client_id
	           WHERE b.client_id = ?
	           ORDER BY b.date DESC, b.start_min DESC, b.id DESC`
	return r.queryBookings(ctx, q, clientID)
}

// ListScheduledFrom returns SCHEDULED bookings on or after the given
// date, ordered chronologically.  Feeds the iCalendar export and the
// upcoming list.
func (r *BookingRepo) ListScheduledFrom(ctx context.Context, date string, limit int) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + `
	      FROM bookings b JOIN clients c ON c.id = b.client_id
	      WHERE b.date >= ? AND b.status = ?
	      ORDER BY b.date ASC, b.start_min ASC, b.id ASC`
	args := []any{date, model.StatusScheduled}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.queryBookings(ctx, q, args...)
}

// ExportAll returns every booking ordered chronologically for the CSV
// export.
func (r *BookingRepo) ExportAll(ctx context.Context) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings b JOIN clients c ON c.id = b.client_id
	           ORDER BY b.date ASC, b.start_min ASC, b.id ASC`
	return r.queryBookings(ctx, q)
}

// UpdateScheduleTx moves a booking to a new date/time inside the
// caller's transaction.  Only SCHEDULED bookings can move.
func (r *BookingRepo) UpdateScheduleTx(ctx context.Context, tx *sql.Tx, id uint64, date string, startMin, durationMin int) error {
	const q = `UPDATE bookings
	           SET date = ?, start_min = ?, duration_min = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, date, startMin, durationMin, id, model.StatusScheduled)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return bookingMissingOrNotScheduledTx(ctx, tx, id, date, startMin, durationMin)
	}
	return nil
}

// bookingMissingOrNotScheduledTx distinguishes a missing row, a
// non-SCHEDULED row, and a genuine no-op move.
func bookingMissingOrNotScheduledTx(ctx context.Context, tx *sql.Tx, id uint64, date string, startMin, durationMin int) error {
	var status string
	var day time.Time
	var s, d int
	err := tx.QueryRowContext(ctx,
		`SELECT status, date, start_min, duration_min FROM bookings WHERE id = ?`, id).
		Scan(&status, &day, &s, &d)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		return err
	}
	if status != model.StatusScheduled {
		return ErrConflict
	}
	if day.Format(dateLayout) == date && s == startMin && d == durationMin {
		return ErrNoChange
	}
	return ErrBookingNotFound
}

// CancelTx soft-cancels the given bookings inside the caller's
// transaction and returns how many rows moved to CANCELLED.  Already
// cancelled or completed bookings are left untouched.
func (r *BookingRepo) CancelTx(ctx context.Context, tx *sql.Tx, ids []uint64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(ids))
	args := []any{model.StatusCancelled}
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	args = append(args, model.StatusScheduled)
	q := `UPDATE bookings SET status = ?, updated_at = CURRENT_TIMESTAMP
	      WHERE id IN (` + strings.Join(placeholders, ",") + `) AND status = ?`
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// CompleteTx marks a SCHEDULED booking COMPLETED and returns its client
// id so the caller can run the session-counter transfer in the same
// transaction.  A booking that is not SCHEDULED yields ErrConflict.
func (r *BookingRepo) CompleteTx(ctx context.Context, tx *sql.Tx, id uint64) (uint64, error) {
	var clientID uint64
	var status string
	err := tx.QueryRowContext(ctx,
		`SELECT client_id, status FROM bookings WHERE id = ? FOR UPDATE`, id).
		Scan(&clientID, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrBookingNotFound
		}
		return 0, err
	}
	if status != model.StatusScheduled {
		return 0, ErrConflict
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		model.StatusCompleted, id)
	if err != nil {
		return 0, err
	}
	return clientID, nil
}

// CountScheduledByDay counts SCHEDULED bookings per civil date inside
// [from, to).  A single grouped query covers a whole month-grid render.
func (r *BookingRepo) CountScheduledByDay(ctx context.Context, from, to string) (map[string]int, error) {
	const q = `SELECT date, COUNT(*) FROM bookings
	           WHERE status = ? AND date >= ? AND date < ?
	           GROUP BY date`
	rows, err := r.db.QueryContext(ctx, q, model.StatusScheduled, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		counts[day.Format(dateLayout)] = n
	}
	return counts, rows.Err()
}

// CountForClientBetween counts a client's SCHEDULED bookings inside
// [from, to).  Used for the week/month tallies on the client detail
// view.
func (r *BookingRepo) CountForClientBetween(ctx context.Context, clientID uint64, from, to string) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings
	           WHERE client_id = ? AND status = ? AND date >= ? AND date < ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, clientID, model.StatusScheduled, from, to).Scan(&n)
	return n, err
}

// Count returns the total number of booking rows.
func (r *BookingRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&n)
	return n, err
}

// ReplaceAllTx deletes every booking and inserts the given set.  The
// CSV import uses it for whole-table restore; client ids must already
// exist.
func (r *BookingRepo) ReplaceAllTx(ctx context.Context, tx *sql.Tx, bookings []model.Booking) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings`); err != nil {
		return err
	}
	const q = `INSERT INTO bookings (client_id, date, start_min, duration_min, session_type, status)
	           VALUES (?, ?, ?, ?, ?, ?)`
	for _, b := range bookings {
		_, err := tx.ExecContext(ctx, q,
			b.ClientID, b.Date, b.StartMin, b.DurationMin, nullStr(b.SessionType), b.Status)
		if err != nil {
			if isFKViolation(err) {
				return ErrClientNotFound
			}
			return err
		}
	}
	return nil
}

// isFKViolation reports whether err is a MySQL foreign key failure
// (error 1452, "a foreign key constraint fails").
func isFKViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "foreign key constraint fails")
}
