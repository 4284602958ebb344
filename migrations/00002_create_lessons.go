package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateLessons, downCreateLessons)
}

func upCreateLessons(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE lessons (
			id BIGSERIAL PRIMARY KEY,
			tutor_id BIGINT NOT NULL,
			student_id BIGINT NOT NULL,
			subject_id BIGINT NOT NULL,
			start_time TIMESTAMP WITH TIME ZONE NOT NULL,
			end_time TIMESTAMP WITH TIME ZONE NOT NULL,
			status VARCHAR(16) NOT NULL
				CHECK (status IN ('upcoming', 'confirmed', 'completed', 'cancelled')),
			lesson_type VARCHAR(16) NOT NULL DEFAULT 'regular'
				CHECK (lesson_type IN ('regular', 'trial')),
			request_id BIGINT,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			CHECK (start_time < end_time),
			EXCLUDE USING gist (
				tutor_id WITH =,
				tstzrange(start_time, end_time, '[)') WITH &&
			) WHERE (status IN ('upcoming', 'confirmed'))
		);

		CREATE INDEX idx_lessons_tutor_start ON lessons (tutor_id, start_time);
		CREATE INDEX idx_lessons_student_start ON lessons (student_id, start_time);
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateLessons(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS lessons;`)
	return err
}
