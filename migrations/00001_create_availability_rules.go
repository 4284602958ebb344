package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateAvailabilityRules, downCreateAvailabilityRules)
}

func upCreateAvailabilityRules(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE EXTENSION IF NOT EXISTS btree_gist;

		CREATE TABLE availability_rules (
			id BIGSERIAL PRIMARY KEY,
			tutor_id BIGINT NOT NULL,
			day_of_week SMALLINT NOT NULL CHECK (day_of_week BETWEEN 1 AND 7),
			start_minute SMALLINT NOT NULL CHECK (start_minute >= 0),
			end_minute SMALLINT NOT NULL CHECK (end_minute <= 1440),
			lesson_duration_minutes SMALLINT NOT NULL CHECK (lesson_duration_minutes BETWEEN 15 AND 180),
			break_duration_minutes SMALLINT NOT NULL DEFAULT 0 CHECK (break_duration_minutes BETWEEN 0 AND 60),
			is_available BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			CHECK (start_minute < end_minute),
			CHECK (lesson_duration_minutes <= end_minute - start_minute),
			EXCLUDE USING gist (
				tutor_id WITH =,
				day_of_week WITH =,
				int4range(start_minute, end_minute) WITH &&
			) WHERE (is_available)
		);

		CREATE INDEX idx_availability_rules_tutor_day ON availability_rules (tutor_id, day_of_week);
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateAvailabilityRules(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS availability_rules;`)
	return err
}
