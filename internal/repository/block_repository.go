package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jparkin/trainer-booking/internal/model"
)

// BlockRepo persists trainer availability blocks.  Blocks are simple
// rows with no status lifecycle: deleting one removes it outright.
type BlockRepo struct {
	db *sql.DB
}

// NewBlockRepo constructs a BlockRepo bound to the given database.
func NewBlockRepo(db *sql.DB) *BlockRepo { return &BlockRepo{db: db} }

const blockColumns = `id, date, start_min, duration_min, note, created_at, updated_at`

func scanBlock(row interface{ Scan(...any) error }, b *model.TrainerBlock) error {
	var day time.Time
	var note sql.NullString
	err := row.Scan(&b.ID, &day, &b.StartMin, &b.DurationMin, &note, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return err
	}
	b.Date = day.Format(dateLayout)
	b.Note = note.String
	return nil
}

// Create inserts a block and populates the generated fields.
func (r *BlockRepo) Create(ctx context.Context, b *model.TrainerBlock) error {
	const q = `INSERT INTO trainer_blocks (date, start_min, duration_min, note) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, b.Date, b.StartMin, b.DurationMin, nullStr(b.Note))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const sel = `SELECT ` + blockColumns + ` FROM trainer_blocks WHERE id = ?`
	return scanBlock(r.db.QueryRowContext(ctx, sel, b.ID), b)
}

// GetByID retrieves a block, returning ErrBlockNotFound when missing.
func (r *BlockRepo) GetByID(ctx context.Context, id uint64) (*model.TrainerBlock, error) {
	const q = `SELECT ` + blockColumns + ` FROM trainer_blocks WHERE id = ?`
	var b model.TrainerBlock
	if err := scanBlock(r.db.QueryRowContext(ctx, q, id), &b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBlockNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ListByDate returns the blocks on a civil date ordered by start time.
func (r *BlockRepo) ListByDate(ctx context.Context, date string) ([]model.TrainerBlock, error) {
	const q = `SELECT ` + blockColumns + ` FROM trainer_blocks WHERE date = ? ORDER BY start_min ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.TrainerBlock, 0)
	for rows.Next() {
		var b model.TrainerBlock
		if err := scanBlock(rows, &b); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// ListBetween returns blocks inside [from, to) for range views.
func (r *BlockRepo) ListBetween(ctx context.Context, from, to string) ([]model.TrainerBlock, error) {
	const q = `SELECT ` + blockColumns + ` FROM trainer_blocks WHERE date >= ? AND date < ? ORDER BY date ASC, start_min ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.TrainerBlock, 0)
	for rows.Next() {
		var b model.TrainerBlock
		if err := scanBlock(rows, &b); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// Update rewrites a block's schedule and note.  ErrNoChange is
// returned when nothing differs; ErrBlockNotFound when the row is
// missing.
func (r *BlockRepo) Update(ctx context.Context, b *model.TrainerBlock) error {
	const q = `UPDATE trainer_blocks
	           SET date = ?, start_min = ?, duration_min = ?, note = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?
	             AND (date <> ? OR start_min <> ? OR duration_min <> ? OR NOT (note <=> ?))`
	res, err := r.db.ExecContext(ctx, q,
		b.Date, b.StartMin, b.DurationMin, nullStr(b.Note),
		b.ID,
		b.Date, b.StartMin, b.DurationMin, nullStr(b.Note))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM trainer_blocks WHERE id = ? LIMIT 1`, b.ID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBlockNotFound
		}
		return err
	}
	return ErrNoChange
}

// Delete removes a block.
func (r *BlockRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trainer_blocks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBlockNotFound
	}
	return nil
}
