package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const requestColumns = `id, student_id, tutor_id, subject_id, requested_date, requested_start_time, requested_end_time, message, status, tutor_response, lesson_id, created_at, responded_at, updated_at`

type LessonRequestRepository struct {
	*base.Repository
}

func NewLessonRequestRepository(db base.DB) *LessonRequestRepository {
	return &LessonRequestRepository{Repository: base.NewRepository(db)}
}

// Create создаёт новую заявку
func (r *LessonRequestRepository) Create(ctx context.Context, req *model.LessonRequest) error {
	query := `
		INSERT INTO lesson_requests (student_id, tutor_id, subject_id, requested_date, requested_start_time, requested_end_time, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.Conn(ctx).QueryRow(
		ctx, query,
		req.StudentID,
		req.TutorID,
		req.SubjectID,
		req.RequestedDate,
		req.RequestedStartTime,
		req.RequestedEndTime,
		req.Message,
		string(req.Status),
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create lesson request: %w", err)
	}

	return nil
}

// GetByID получает заявку по ID
func (r *LessonRequestRepository) GetByID(ctx context.Context, id int64) (*model.LessonRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM lesson_requests WHERE id = $1`

	req, err := scanRequest(r.Conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, model.ErrRequestNotFound
		}
		return nil, fmt.Errorf("get lesson request by id: %w", err)
	}

	return req, nil
}

// Transition сохраняет новое состояние заявки, если в БД она всё ещё в статусе from.
// Повторная или параллельная отправка получает ErrInvalidStateTransition
func (r *LessonRequestRepository) Transition(ctx context.Context, req *model.LessonRequest, from model.RequestStatus) error {
	response, err := model.MarshalTutorResponse(req.TutorResponse)
	if err != nil {
		return fmt.Errorf("encode tutor response: %w", err)
	}

	query := `
		UPDATE lesson_requests
		SET status = $2,
		    tutor_response = $3,
		    requested_date = $4,
		    requested_start_time = $5,
		    requested_end_time = $6,
		    lesson_id = $7,
		    responded_at = $8,
		    updated_at = now()
		WHERE id = $1 AND status = $9
		RETURNING updated_at
	`

	err = r.Conn(ctx).QueryRow(
		ctx, query,
		req.ID,
		string(req.Status),
		response,
		req.RequestedDate,
		req.RequestedStartTime,
		req.RequestedEndTime,
		req.LessonID,
		req.RespondedAt,
		string(from),
	).Scan(&req.UpdatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("lesson request %d is no longer %s: %w", req.ID, from, model.ErrInvalidStateTransition)
		}
		return fmt.Errorf("update lesson request: %w", err)
	}

	return nil
}

// ListByTutor получает заявки учителю; без статусов - все
func (r *LessonRequestRepository) ListByTutor(ctx context.Context, tutorID int64, statuses ...model.RequestStatus) ([]*model.LessonRequest, error) {
	return r.list(ctx, "tutor_id", tutorID, statuses)
}

// ListByStudent получает заявки студента; без статусов - все
func (r *LessonRequestRepository) ListByStudent(ctx context.Context, studentID int64, statuses ...model.RequestStatus) ([]*model.LessonRequest, error) {
	return r.list(ctx, "student_id", studentID, statuses)
}

// list column подставляется только из констант выше
func (r *LessonRequestRepository) list(ctx context.Context, column string, userID int64, statuses []model.RequestStatus) ([]*model.LessonRequest, error) {
	filter := make([]string, 0, len(statuses))
	for _, s := range statuses {
		filter = append(filter, string(s))
	}

	query := `
		SELECT ` + requestColumns + `
		FROM lesson_requests
		WHERE ` + column + ` = $1
		  AND (cardinality($2::text[]) = 0 OR status = ANY($2))
		ORDER BY created_at DESC
	`

	rows, err := r.Conn(ctx).Query(ctx, query, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list lesson requests by %s: %w", column, err)
	}
	defer rows.Close()

	var requests []*model.LessonRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lesson requests: %w", err)
	}

	return requests, nil
}

func scanRequest(row pgx.Row) (*model.LessonRequest, error) {
	var (
		req      model.LessonRequest
		status   string
		response []byte
	)

	err := row.Scan(
		&req.ID,
		&req.StudentID,
		&req.TutorID,
		&req.SubjectID,
		&req.RequestedDate,
		&req.RequestedStartTime,
		&req.RequestedEndTime,
		&req.Message,
		&status,
		&response,
		&req.LessonID,
		&req.CreatedAt,
		&req.RespondedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// DATE приходит полночью UTC, дата считается от начала урока в его поясе
	req.RequestedDate = model.DateOf(req.RequestedStartTime)

	req.Status = model.RequestStatus(status)
	req.TutorResponse, err = model.UnmarshalTutorResponse(response)
	if err != nil {
		return nil, err
	}

	return &req, nil
}
