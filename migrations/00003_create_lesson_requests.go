package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateLessonRequests, downCreateLessonRequests)
}

func upCreateLessonRequests(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE lesson_requests (
			id BIGSERIAL PRIMARY KEY,
			student_id BIGINT NOT NULL,
			tutor_id BIGINT NOT NULL,
			subject_id BIGINT NOT NULL,
			requested_date DATE NOT NULL,
			requested_start_time TIMESTAMP WITH TIME ZONE NOT NULL,
			requested_end_time TIMESTAMP WITH TIME ZONE NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			status VARCHAR(32) NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'time_slots_proposed', 'confirmed', 'rejected', 'cancelled')),
			tutor_response JSONB,
			lesson_id BIGINT REFERENCES lessons(id),
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			responded_at TIMESTAMP WITH TIME ZONE,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			CHECK (requested_start_time < requested_end_time)
		);

		CREATE INDEX idx_lesson_requests_tutor_status ON lesson_requests (tutor_id, status);
		CREATE INDEX idx_lesson_requests_student_status ON lesson_requests (student_id, status);
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateLessonRequests(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS lesson_requests;`)
	return err
}
