package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the document tables.  Ghat time slots are stored as a JSON
// document that is rewritten whole; version backs optimistic concurrency.
// ticket_id is indexed but not unique: generated ids are not checked for
// collisions.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS ghats (
		id          VARCHAR(64)  NOT NULL PRIMARY KEY,
		name        VARCHAR(128) NOT NULL,
		short_code  VARCHAR(8)   NOT NULL,
		image_url   VARCHAR(512) NOT NULL DEFAULT '',
		image_hint  VARCHAR(128) NOT NULL DEFAULT '',
		time_slots  JSON         NOT NULL,
		version     BIGINT       NOT NULL DEFAULT 1,
		position    INT          NOT NULL DEFAULT 0,
		UNIQUE KEY uq_ghats_short_code (short_code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS registrations (
		id               CHAR(36)     NOT NULL PRIMARY KEY,
		ticket_id        VARCHAR(32)  NOT NULL,
		full_name        VARCHAR(128) NOT NULL,
		mobile_number    VARCHAR(20)  NOT NULL,
		number_of_people INT          NOT NULL,
		visit_date       DATE         NOT NULL,
		ghat_id          VARCHAR(64)  NOT NULL,
		ghat_name        VARCHAR(128) NOT NULL,
		ghat_short_code  VARCHAR(8)   NOT NULL,
		time_slot        VARCHAR(64)  NOT NULL,
		created_at       DATETIME(3)  NOT NULL,
		KEY idx_registrations_ticket (ticket_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS missing_persons (
		id                    CHAR(36)     NOT NULL PRIMARY KEY,
		case_id               VARCHAR(16)  NOT NULL,
		missing_person_name   VARCHAR(128) NOT NULL,
		missing_person_mobile VARCHAR(20)  NOT NULL DEFAULT '',
		reporter_contact      VARCHAR(20)  NOT NULL,
		last_seen_ghat        VARCHAR(128) NOT NULL,
		detailed_location     VARCHAR(255) NOT NULL DEFAULT '',
		description           TEXT         NOT NULL,
		photo_url             VARCHAR(512) NOT NULL DEFAULT '',
		status                VARCHAR(32)  NOT NULL,
		created_at            DATETIME(3)  NOT NULL,
		KEY idx_missing_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS emergency_alerts (
		id          CHAR(36)     NOT NULL PRIMARY KEY,
		issue_type  VARCHAR(64)  NOT NULL,
		location    VARCHAR(255) NOT NULL,
		details     TEXT         NOT NULL,
		status      VARCHAR(32)  NOT NULL,
		created_at  DATETIME(3)  NOT NULL,
		KEY idx_emergency_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.  It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
