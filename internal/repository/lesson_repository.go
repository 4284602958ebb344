package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const lessonColumns = `id, tutor_id, student_id, subject_id, start_time, end_time, status, lesson_type, request_id, created_at, updated_at`

type LessonRepository struct {
	*base.Repository
}

func NewLessonRepository(db base.DB) *LessonRepository {
	return &LessonRepository{Repository: base.NewRepository(db)}
}

func tutorLessonsLockKey(tutorID int64) string {
	return fmt.Sprintf("lessons:%d", tutorID)
}

// CreateIfFree создаёт урок, если у учителя нет активного урока, пересекающего [StartTime, EndTime).
// Блокировка учителя, проверка и вставка - одна транзакция; при вызове внутри InTx
// присоединяется к внешней транзакции
func (r *LessonRepository) CreateIfFree(ctx context.Context, lesson *model.Lesson) error {
	return r.InTx(ctx, func(ctx context.Context) error {
		if err := r.LockKey(ctx, tutorLessonsLockKey(lesson.TutorID)); err != nil {
			return err
		}

		busy, err := r.hasActiveOverlap(ctx, lesson.TutorID, lesson.StartTime, lesson.EndTime)
		if err != nil {
			return err
		}
		if busy {
			return model.ErrSlotUnavailable
		}

		query := `
			INSERT INTO lessons (tutor_id, student_id, subject_id, start_time, end_time, status, lesson_type, request_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at
		`

		err = r.Conn(ctx).QueryRow(
			ctx, query,
			lesson.TutorID,
			lesson.StudentID,
			lesson.SubjectID,
			lesson.StartTime,
			lesson.EndTime,
			string(lesson.Status),
			string(lesson.LessonType),
			lesson.RequestID,
		).Scan(&lesson.ID, &lesson.CreatedAt, &lesson.UpdatedAt)
		if err != nil {
			// Ограничение EXCLUDE - последний рубеж, если блокировку кто-то обошёл
			if base.IsExclusionViolation(err) {
				return model.ErrSlotUnavailable
			}
			return fmt.Errorf("create lesson: %w", err)
		}

		return nil
	})
}

func (r *LessonRepository) hasActiveOverlap(ctx context.Context, tutorID int64, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM lessons
			WHERE tutor_id = $1
			  AND status IN ('upcoming', 'confirmed')
			  AND start_time < $3
			  AND end_time > $2
		)
	`

	var exists bool
	if err := r.Conn(ctx).QueryRow(ctx, query, tutorID, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("check lesson overlap: %w", err)
	}

	return exists, nil
}

// GetByID получает урок по ID
func (r *LessonRepository) GetByID(ctx context.Context, id int64) (*model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`

	lesson, err := scanLesson(r.Conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, model.ErrLessonNotFound
		}
		return nil, fmt.Errorf("get lesson by id: %w", err)
	}

	return lesson, nil
}

// ListActiveByTutor получает активные уроки учителя, пересекающие [from, to)
func (r *LessonRepository) ListActiveByTutor(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE tutor_id = $1
		  AND status IN ('upcoming', 'confirmed')
		  AND start_time < $3
		  AND end_time > $2
		ORDER BY start_time
	`

	rows, err := r.Conn(ctx).Query(ctx, query, tutorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list active lessons by tutor: %w", err)
	}

	return collectLessons(rows)
}

// ListByTutor получает все уроки учителя, начинающиеся в [from, to)
func (r *LessonRepository) ListByTutor(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE tutor_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time
	`

	rows, err := r.Conn(ctx).Query(ctx, query, tutorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list lessons by tutor: %w", err)
	}

	return collectLessons(rows)
}

// ListByStudent получает все уроки студента, начинающиеся в [from, to)
func (r *LessonRepository) ListByStudent(ctx context.Context, studentID int64, from, to time.Time) ([]*model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE student_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time
	`

	rows, err := r.Conn(ctx).Query(ctx, query, studentID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list lessons by student: %w", err)
	}

	return collectLessons(rows)
}

// UpdateStatus переводит урок в статус to, только если текущий статус входит в from.
// Возвращает ErrInvalidStateTransition, если урок уже в другом статусе
func (r *LessonRepository) UpdateStatus(ctx context.Context, id int64, from []model.LessonStatus, to model.LessonStatus) (*model.Lesson, error) {
	expected := make([]string, 0, len(from))
	for _, s := range from {
		expected = append(expected, string(s))
	}

	query := `
		UPDATE lessons
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = ANY($3)
		RETURNING ` + lessonColumns

	lesson, err := scanLesson(r.Conn(ctx).QueryRow(ctx, query, id, string(to), expected))
	if err == nil {
		return lesson, nil
	}
	if !base.IsNotFound(err) {
		return nil, fmt.Errorf("update lesson status: %w", err)
	}

	// Строка не обновилась: урока нет или он в другом статусе
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("lesson %d -> %s: %w", id, to, model.ErrInvalidStateTransition)
}

func scanLesson(row pgx.Row) (*model.Lesson, error) {
	var (
		lesson     model.Lesson
		status     string
		lessonType string
	)

	err := row.Scan(
		&lesson.ID,
		&lesson.TutorID,
		&lesson.StudentID,
		&lesson.SubjectID,
		&lesson.StartTime,
		&lesson.EndTime,
		&status,
		&lessonType,
		&lesson.RequestID,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lesson.Status = model.LessonStatus(status)
	lesson.LessonType = model.LessonType(lessonType)

	return &lesson, nil
}

func collectLessons(rows pgx.Rows) ([]*model.Lesson, error) {
	defer rows.Close()

	var lessons []*model.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}

	return lessons, nil
}
