package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/jparkin/trainer-booking/internal/model"
	"github.com/jparkin/trainer-booking/internal/repository"
)

func newBookingHandler(t *testing.T) (*BookingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &BookingHandler{
		Bookings:           repository.NewBookingRepo(db),
		Blocks:             repository.NewBlockRepo(db),
		Clients:            repository.NewClientRepo(db),
		DefaultDurationMin: 60,
	}, mock
}

func bookingColumns() []string {
	return []string{"id", "client_id", "name", "date", "start_min", "duration_min",
		"session_type", "status", "created_at", "updated_at"}
}

func blockColumns() []string {
	return []string{"id", "date", "start_min", "duration_min", "note", "created_at", "updated_at"}
}

func scheduledRow(id, clientID uint64, name string, day time.Time, startMin, durationMin int) *sqlmock.Rows {
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(bookingColumns()).
		AddRow(id, clientID, name, day, startMin, durationMin, nil, model.StatusScheduled, now, now)
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestRescheduleTarget_OmittedFieldsKeepCurrent(t *testing.T) {
	booking := &model.Booking{Date: "2026-03-02", StartMin: 540, DurationMin: 45}

	date, start, dur := rescheduleTarget(booking, "", nil, 0)
	if date != "2026-03-02" || start != 540 || dur != 45 {
		t.Fatalf("empty request changed the slot: got %s %d/%d", date, start, dur)
	}

	newStart := 600
	date, start, dur = rescheduleTarget(booking, "2026-03-05", &newStart, 0)
	if date != "2026-03-05" || start != 600 || dur != 45 {
		t.Fatalf("partial request resolved wrong: got %s %d/%d", date, start, dur)
	}

	midnight := 0
	_, start, _ = rescheduleTarget(booking, "", &midnight, 0)
	if start != 0 {
		t.Fatalf("explicit midnight start was not kept: got %d", start)
	}
}

// Two bookings from different days moved onto the same date with only
// the date supplied keep their original start times, so they land on
// top of each other.  The blocking policy has to refuse the move.
func TestBulkAmend_DateOnlyMoveDetectsCollision(t *testing.T) {
	h, mock := newBookingHandler(t)

	day5 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	day6 := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM bookings b JOIN clients c").WithArgs(5).
		WillReturnRows(scheduledRow(5, 1, "Dana", day5, 540, 60))
	mock.ExpectQuery("FROM bookings b JOIN clients c").WithArgs(6).
		WillReturnRows(scheduledRow(6, 2, "Omer", day6, 540, 60))
	for i := 0; i < 2; i++ {
		mock.ExpectQuery("FROM bookings b JOIN clients c").
			WillReturnRows(sqlmock.NewRows(bookingColumns()))
		mock.ExpectQuery("FROM trainer_blocks").
			WillReturnRows(sqlmock.NewRows(blockColumns()))
	}

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/v1/bookings/bulk-amend",
		`{"booking_ids":[5,6],"date":"2026-03-04","self_overlap":"blocking"}`)
	rec := httptest.NewRecorder()
	if err := h.BulkAmend(e.NewContext(req, rec)); err != nil {
		t.Fatalf("BulkAmend: %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"kind":"self_overlap"`) {
		t.Fatalf("409 body missing self-overlap conflict: %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database traffic: %v", err)
	}
}

// An override reschedule that resolves to the booking's current slot
// still cancels the clashing booking, so the transaction has to commit
// even though the slot update itself is a no-op.
func TestReschedule_NoChangeKeepsOverrideCancellations(t *testing.T) {
	h, mock := newBookingHandler(t)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM bookings b JOIN clients c").WithArgs(5).
		WillReturnRows(scheduledRow(5, 1, "Dana", day, 540, 60))
	mock.ExpectQuery("FROM bookings b JOIN clients c").
		WillReturnRows(scheduledRow(9, 2, "Omer", day, 570, 30))
	mock.ExpectQuery("FROM trainer_blocks").
		WillReturnRows(sqlmock.NewRows(blockColumns()))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(model.StatusCancelled, 9, model.StatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings SET date =").
		WithArgs("2026-03-02", 540, 60, 5, model.StatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status, date, start_min, duration_min FROM bookings").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"status", "date", "start_min", "duration_min"}).
			AddRow(model.StatusScheduled, day, 540, 60))
	mock.ExpectCommit()

	e := echo.New()
	req := jsonRequest(http.MethodPut, "/", `{"override":true}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/bookings/:id/reschedule")
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.Reschedule(c); err != nil {
		t.Fatalf("Reschedule: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"cancelled":1`) {
		t.Fatalf("response missing cancellation count: %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("cancellation was not committed: %v", err)
	}
}
