package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jparkin/trainer-booking/internal/model"
)

// ClientRepo provides CRUD operations for clients plus the counter and
// duplicate-merge mutations.  All timestamp columns are stored in UTC.
type ClientRepo struct {
	db *sql.DB
}

// NewClientRepo constructs a ClientRepo bound to the given database.
func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *ClientRepo) DB() *sql.DB { return r.db }

const clientColumns = `id, name, gym, phone, email, preferred_time, notes, flags,
	on_holiday, sessions_left, sessions_completed, created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }, c *model.Client) error {
	var gym, phone, email, preferred, notes, flags sql.NullString
	err := row.Scan(
		&c.ID, &c.Name, &gym, &phone, &email, &preferred, &notes, &flags,
		&c.OnHoliday, &c.SessionsLeft, &c.SessionsCompleted, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	c.Gym = gym.String
	c.Phone = phone.String
	c.Email = email.String
	c.PreferredTime = preferred.String
	c.Notes = notes.String
	c.Flags = flags.String
	return nil
}

// Create inserts a new client and populates the generated ID and
// DB-default fields on the provided struct.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) error {
	const q = `INSERT INTO clients (name, gym, phone, email, preferred_time, notes, flags, on_holiday, sessions_left, sessions_completed)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		c.Name, nullStr(c.Gym), nullStr(c.Phone), nullStr(c.Email), nullStr(c.PreferredTime),
		nullStr(c.Notes), nullStr(c.Flags), c.OnHoliday, c.SessionsLeft, c.SessionsCompleted,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`
	return scanClient(r.db.QueryRowContext(ctx, sel, c.ID), c)
}

// GetByID retrieves a client by its ID.  It returns ErrClientNotFound
// when there is no matching row.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (*model.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`
	var c model.Client
	if err := scanClient(r.db.QueryRowContext(ctx, q, id), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns all clients ordered by name.  When no clients exist it
// returns an empty slice and nil error.
func (r *ClientRepo) List(ctx context.Context) ([]model.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM clients ORDER BY name ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Client, 0)
	for rows.Next() {
		var c model.Client
		if err := scanClient(rows, &c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Count returns the number of client rows.  Used by the seed gate and
// the management overview.
func (r *ClientRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n)
	return n, err
}

// UpdateProfile updates a client's profile fields.  It only performs the
// UPDATE when at least one field differs; otherwise it returns
// ErrNoChange.  When the row does not exist it returns
// ErrClientNotFound.  Session counters are deliberately excluded: they
// change only through SetCountersTx.
func (r *ClientRepo) UpdateProfile(ctx context.Context, c *model.Client) error {
	const q = `UPDATE clients
	           SET name = ?, gym = ?, phone = ?, email = ?, preferred_time = ?, notes = ?, flags = ?, on_holiday = ?,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?
	             AND (name <> ? OR NOT (gym <=> ?) OR NOT (phone <=> ?) OR NOT (email <=> ?)
	                  OR NOT (preferred_time <=> ?) OR NOT (notes <=> ?) OR NOT (flags <=> ?) OR on_holiday <> ?)`
	res, err := r.db.ExecContext(ctx, q,
		c.Name, nullStr(c.Gym), nullStr(c.Phone), nullStr(c.Email), nullStr(c.PreferredTime), nullStr(c.Notes), nullStr(c.Flags), c.OnHoliday,
		c.ID,
		c.Name, nullStr(c.Gym), nullStr(c.Phone), nullStr(c.Email), nullStr(c.PreferredTime), nullStr(c.Notes), nullStr(c.Flags), c.OnHoliday,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	// Determine whether the row is missing or simply unchanged.
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM clients WHERE id = ? LIMIT 1`, c.ID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrClientNotFound
		}
		return err
	}
	return ErrNoChange
}

// SetCountersTx writes both session counters inside the caller's
// transaction.  The clamping and transfer rules are applied in the
// model layer before calling; this method only persists the result.
func (r *ClientRepo) SetCountersTx(ctx context.Context, tx *sql.Tx, id uint64, left, completed int) error {
	const q = `UPDATE clients SET sessions_left = ?, sessions_completed = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, left, completed, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Row may exist with identical values; treat that as success.
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM clients WHERE id = ? LIMIT 1`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrClientNotFound
			}
			return err
		}
	}
	return nil
}

// GetForUpdateTx loads a client's counters with a row lock so the
// complete/undo transfer cannot race a concurrent adjustment.
func (r *ClientRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Client, error) {
	const q = `SELECT id, name, sessions_left, sessions_completed FROM clients WHERE id = ? FOR UPDATE`
	var c model.Client
	err := tx.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.SessionsLeft, &c.SessionsCompleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &c, nil
}

// DuplicateGroup is one set of clients considered the same person: the
// lowest-id record survives, the rest are merged into it.
type DuplicateGroup struct {
	Keep       model.Client   `json:"keep"`
	Duplicates []model.Client `json:"duplicates"`
}

// FindDuplicateGroups loads all clients and buckets them by trimmed,
// lower-cased (name, email, phone).  Grouping happens in memory; client
// volumes are small-business scale and the same pass also feeds the
// merge preview.
func (r *ClientRepo) FindDuplicateGroups(ctx context.Context) ([]DuplicateGroup, error) {
	clients, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	type key struct{ name, email, phone string }
	buckets := make(map[key][]model.Client)
	order := make([]key, 0)
	for _, c := range clients {
		k := key{
			name:  strings.ToLower(strings.TrimSpace(c.Name)),
			email: strings.ToLower(strings.TrimSpace(c.Email)),
			phone: strings.TrimSpace(c.Phone),
		}
		if _, seen := buckets[k]; !seen {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], c)
	}
	groups := make([]DuplicateGroup, 0)
	for _, k := range order {
		g := buckets[k]
		if len(g) < 2 {
			continue
		}
		keep := g[0]
		for _, c := range g[1:] {
			if c.ID < keep.ID {
				keep = c
			}
		}
		dups := make([]model.Client, 0, len(g)-1)
		for _, c := range g {
			if c.ID != keep.ID {
				dups = append(dups, c)
			}
		}
		groups = append(groups, DuplicateGroup{Keep: keep, Duplicates: dups})
	}
	return groups, nil
}

// MergeDuplicates re-homes bookings from duplicate clients onto the
// surviving record of each group and removes the losers, all within a
// single transaction.  Clients are never hard-deleted anywhere else.
// It returns the number of clients removed.
func (r *ClientRepo) MergeDuplicates(ctx context.Context) (int, error) {
	groups, err := r.FindDuplicateGroups(ctx)
	if err != nil {
		return 0, err
	}
	if len(groups) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	removed := 0
	for _, g := range groups {
		ids := make([]any, 0, len(g.Duplicates))
		placeholders := make([]string, 0, len(g.Duplicates))
		for _, d := range g.Duplicates {
			ids = append(ids, d.ID)
			placeholders = append(placeholders, "?")
		}
		in := strings.Join(placeholders, ",")
		// Bookings move first; the restrict FK would reject the delete
		// otherwise.
		rehome := `UPDATE bookings SET client_id = ?, updated_at = CURRENT_TIMESTAMP WHERE client_id IN (` + in + `)`
		if _, err := tx.ExecContext(ctx, rehome, append([]any{g.Keep.ID}, ids...)...); err != nil {
			return 0, err
		}
		del := `DELETE FROM clients WHERE id IN (` + in + `)`
		res, err := tx.ExecContext(ctx, del, ids...)
		if err != nil {
			return 0, err
		}
		if n, err := res.RowsAffected(); err == nil {
			removed += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return removed, nil
}

// nullStr maps empty strings to SQL NULL so optional text columns stay
// NULL instead of collecting empty values.
func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
