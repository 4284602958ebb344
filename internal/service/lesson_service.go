package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/events"
	"github.com/Freeeeeet/tutor_scheduler/internal/metrics"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"go.uber.org/zap"
)

// CreateLessonInput параметры нового урока
type CreateLessonInput struct {
	TutorID    int64            `validate:"gt=0"`
	StudentID  int64            `validate:"gt=0,nefield=TutorID"`
	SubjectID  int64            `validate:"gt=0"`
	StartTime  time.Time        `validate:"required"`
	EndTime    time.Time        `validate:"required"`
	LessonType model.LessonType `validate:"omitempty,oneof=regular trial"`
	RequestID  *int64
}

// newLesson проверяет ввод и собирает урок. Урок из заявки сразу подтверждён
func newLesson(in CreateLessonInput) (*model.Lesson, error) {
	if err := validateInput(in); err != nil {
		return nil, fmt.Errorf("invalid lesson: %w", err)
	}

	slot := model.TimeSlot{StartTime: in.StartTime, EndTime: in.EndTime}
	if err := slot.Validate(); err != nil {
		return nil, err
	}

	lesson := &model.Lesson{
		TutorID:    in.TutorID,
		StudentID:  in.StudentID,
		SubjectID:  in.SubjectID,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		Status:     model.LessonStatusUpcoming,
		LessonType: in.LessonType,
		RequestID:  in.RequestID,
	}
	if lesson.LessonType == "" {
		lesson.LessonType = model.LessonTypeRegular
	}
	if in.RequestID != nil {
		lesson.Status = model.LessonStatusConfirmed
	}

	return lesson, nil
}

// BookSlotInput прямая запись студента на свободный слот
type BookSlotInput struct {
	StudentID  int64
	TutorID    int64
	SubjectID  int64
	Slot       model.TimeSlot
	LessonType model.LessonType
}

type LessonService struct {
	lessons   LessonRepository
	slots     SlotChecker
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func NewLessonService(
	lessons LessonRepository,
	slots SlotChecker,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *LessonService {
	return &LessonService{
		lessons:   lessons,
		slots:     slots,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateLesson атомарно создаёт урок, если у учителя нет пересекающегося активного урока.
// Проигравший в гонке получает ErrSlotUnavailable
func (s *LessonService) CreateLesson(ctx context.Context, in CreateLessonInput) (*model.Lesson, error) {
	lesson, err := newLesson(in)
	if err != nil {
		return nil, err
	}

	source := metrics.SourceDirect
	if in.RequestID != nil {
		source = metrics.SourceRequest
	}

	if err := s.lessons.CreateIfFree(ctx, lesson); err != nil {
		if errors.Is(err, model.ErrOverlap) {
			s.metrics.LessonConflict(source)
		}
		return nil, fmt.Errorf("create lesson: %w", err)
	}

	s.metrics.LessonCreated(source)
	s.logger.Info("Lesson created",
		zap.Int64("lesson_id", lesson.ID),
		zap.Int64("tutor_id", lesson.TutorID),
		zap.Int64("student_id", lesson.StudentID),
		zap.Time("start", lesson.StartTime),
		zap.String("status", string(lesson.Status)),
	)

	if err := s.publisher.LessonCreated(ctx, lesson); err != nil {
		s.logger.Error("Failed to publish lesson created", zap.Error(err), zap.Int64("lesson_id", lesson.ID))
	}

	return lesson, nil
}

// BookSlot записывает студента на свободный слот из расписания учителя
func (s *LessonService) BookSlot(ctx context.Context, in BookSlotInput) (*model.Lesson, error) {
	if in.StudentID == in.TutorID {
		return nil, fmt.Errorf("student cannot book own slot: %w", model.ErrPermissionDenied)
	}

	if err := validateFutureSlot(in.Slot, s.now()); err != nil {
		return nil, err
	}

	open, err := s.slots.IsOpenSlot(ctx, in.TutorID, in.Slot)
	if err != nil {
		return nil, fmt.Errorf("check slot: %w", err)
	}
	if !open {
		return nil, model.ErrSlotUnavailable
	}

	return s.CreateLesson(ctx, CreateLessonInput{
		TutorID:    in.TutorID,
		StudentID:  in.StudentID,
		SubjectID:  in.SubjectID,
		StartTime:  in.Slot.StartTime,
		EndTime:    in.Slot.EndTime,
		LessonType: in.LessonType,
	})
}

// CancelLesson отменяет активный урок по инициативе учителя или студента.
// Заявка, из которой создан урок, не меняется
func (s *LessonService) CancelLesson(ctx context.Context, actorID, lessonID int64) (*model.Lesson, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}

	if !lesson.IsParticipant(actorID) {
		return nil, fmt.Errorf("user %d is not a participant of lesson %d: %w", actorID, lessonID, model.ErrPermissionDenied)
	}

	if !lesson.IsActive() {
		return nil, fmt.Errorf("lesson %d is %s: %w", lessonID, lesson.Status, model.ErrInvalidStateTransition)
	}

	cancelled, err := s.lessons.UpdateStatus(ctx, lessonID, model.ActiveLessonStatuses, model.LessonStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel lesson: %w", err)
	}

	s.metrics.LessonCancelled()
	s.logger.Info("Lesson cancelled",
		zap.Int64("lesson_id", lessonID),
		zap.Int64("actor_id", actorID),
	)

	if err := s.publisher.LessonCancelled(ctx, cancelled, actorID); err != nil {
		s.logger.Error("Failed to publish lesson cancelled", zap.Error(err), zap.Int64("lesson_id", lessonID))
	}

	return cancelled, nil
}

// CompleteLesson учитель отмечает прошедший урок проведённым
func (s *LessonService) CompleteLesson(ctx context.Context, tutorID, lessonID int64) (*model.Lesson, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}

	if lesson.TutorID != tutorID {
		return nil, fmt.Errorf("lesson %d belongs to another tutor: %w", lessonID, model.ErrPermissionDenied)
	}

	if !lesson.IsActive() || lesson.EndTime.After(s.now()) {
		return nil, fmt.Errorf("lesson %d cannot be completed yet: %w", lessonID, model.ErrInvalidStateTransition)
	}

	completed, err := s.lessons.UpdateStatus(ctx, lessonID, model.ActiveLessonStatuses, model.LessonStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("complete lesson: %w", err)
	}

	s.logger.Info("Lesson completed", zap.Int64("lesson_id", lessonID), zap.Int64("tutor_id", tutorID))

	if err := s.publisher.LessonCompleted(ctx, completed); err != nil {
		s.logger.Error("Failed to publish lesson completed", zap.Error(err), zap.Int64("lesson_id", lessonID))
	}

	return completed, nil
}

func (s *LessonService) GetLesson(ctx context.Context, lessonID int64) (*model.Lesson, error) {
	return s.lessons.GetByID(ctx, lessonID)
}

// ListTutorLessons уроки учителя, начинающиеся в [from, to)
func (s *LessonService) ListTutorLessons(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Lesson, error) {
	return s.lessons.ListByTutor(ctx, tutorID, from, to)
}

// ListStudentLessons уроки студента, начинающиеся в [from, to)
func (s *LessonService) ListStudentLessons(ctx context.Context, studentID int64, from, to time.Time) ([]*model.Lesson, error) {
	return s.lessons.ListByStudent(ctx, studentID, from, to)
}
