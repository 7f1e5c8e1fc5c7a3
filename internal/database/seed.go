package database

import (
	"context"
	"database/sql"
	"math/rand"
	"time"
)

// Seed populates an empty database with demo clients, a month of
// bookings around today, and a couple of trainer blocks.  It is a
// no-op when any client already exists, so repeated invocations are
// safe.  The rng seed is explicit so demo data is reproducible.
// Returns true when seeding actually ran.
func Seed(ctx context.Context, db *sql.DB, rngSeed int64) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	rng := rand.New(rand.NewSource(rngSeed))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	type demoClient struct {
		name, gym, phone, preferred string
		left                        int
	}
	demo := []demoClient{
		{"Alice Johnson", "Riverside Gym", "07700 900001", "morning", 10},
		{"Ben Carter", "Riverside Gym", "07700 900002", "evening", 6},
		{"Chloe Evans", "Hilltop Fitness", "07700 900003", "morning", 12},
		{"Dan Murphy", "Hilltop Fitness", "07700 900004", "lunchtime", 4},
		{"Erin Walsh", "Riverside Gym", "07700 900005", "evening", 8},
		{"Frank Osei", "Hilltop Fitness", "07700 900006", "morning", 5},
	}
	clientIDs := make([]uint64, 0, len(demo))
	for _, c := range demo {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO clients (name, gym, phone, preferred_time, sessions_left) VALUES (?, ?, ?, ?, ?)`,
			c.name, c.gym, c.phone, c.preferred, c.left)
		if err != nil {
			return false, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return false, err
		}
		clientIDs = append(clientIDs, uint64(id))
	}

	// Sprinkle sessions across the current month on the hour between
	// 06:00 and 20:00, roughly two per weekday.
	now := time.Now().UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	for day := 1; day <= daysInMonth; day++ {
		d := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, time.UTC)
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		used := make(map[int]bool)
		sessions := 1 + rng.Intn(3)
		for i := 0; i < sessions; i++ {
			start := (6 + rng.Intn(14)) * 60
			if used[start] {
				continue
			}
			used[start] = true
			clientID := clientIDs[rng.Intn(len(clientIDs))]
			_, err := tx.ExecContext(ctx,
				`INSERT INTO bookings (client_id, date, start_min, duration_min, session_type, status) VALUES (?, ?, ?, 60, 'PT', 'SCHEDULED')`,
				clientID, d.Format("2006-01-02"), start)
			if err != nil {
				return false, err
			}
		}
	}

	// A lunch block tomorrow and a day off next Monday.
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO trainer_blocks (date, start_min, duration_min, note) VALUES (?, 720, 60, 'Lunch')`, tomorrow); err != nil {
		return false, err
	}
	daysToMonday := (8 - int(now.Weekday())) % 7
	if daysToMonday == 0 {
		daysToMonday = 7
	}
	nextMonday := now.AddDate(0, 0, daysToMonday).Format("2006-01-02")
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO trainer_blocks (date, start_min, duration_min, note) VALUES (?, 360, 960, 'Day off')`, nextMonday); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}
