package database

import (
	"context"
	"database/sql"
)

// Migrate creates the schedule tables when they do not exist yet.  The
// statements are idempotent so every start-up runs them.
//
// Design notes on the schema:
//   - bookings.client_id is NOT NULL with ON DELETE RESTRICT: a booking
//     always belongs to a client, and clients with history cannot be
//     removed (duplicate merges re-home bookings first).
//   - bookings.status is an ENUM and the only lifecycle field; there is
//     no separate cancelled flag.
//   - times are minutes from midnight on a civil DATE, so the schema
//     has no timezone-bearing columns apart from audit timestamps.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			name VARCHAR(255) NOT NULL,
			gym VARCHAR(255) NULL,
			phone VARCHAR(64) NULL,
			email VARCHAR(255) NULL,
			preferred_time VARCHAR(64) NULL,
			notes TEXT NULL,
			flags VARCHAR(255) NULL,
			on_holiday TINYINT(1) NOT NULL DEFAULT 0,
			sessions_left INT NOT NULL DEFAULT 0,
			sessions_completed INT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			KEY idx_clients_name (name)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			client_id BIGINT UNSIGNED NOT NULL,
			date DATE NOT NULL,
			start_min INT NOT NULL,
			duration_min INT NOT NULL,
			session_type VARCHAR(64) NULL,
			status ENUM('SCHEDULED','COMPLETED','CANCELLED') NOT NULL DEFAULT 'SCHEDULED',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			KEY idx_bookings_date_status (date, status),
			KEY idx_bookings_client (client_id),
			CONSTRAINT fk_bookings_client FOREIGN KEY (client_id)
				REFERENCES clients (id) ON DELETE RESTRICT
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS trainer_blocks (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			date DATE NOT NULL,
			start_min INT NOT NULL,
			duration_min INT NOT NULL,
			note VARCHAR(255) NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			KEY idx_blocks_date (date)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
