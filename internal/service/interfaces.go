package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

// Transactor выполняет fn в одной транзакции. Репозитории, вызванные с этим ctx,
// присоединяются к ней
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RuleRepository хранилище правил доступности
type RuleRepository interface {
	CreateIfFree(ctx context.Context, rule *model.AvailabilityRule) error
	UpdateIfFree(ctx context.Context, rule *model.AvailabilityRule) error
	SetAvailable(ctx context.Context, id int64, isAvailable bool) (*model.AvailabilityRule, error)
	GetByID(ctx context.Context, id int64) (*model.AvailabilityRule, error)
	ListByTutor(ctx context.Context, tutorID int64) ([]*model.AvailabilityRule, error)
	ListActiveByDay(ctx context.Context, tutorID int64, dayOfWeek int) ([]*model.AvailabilityRule, error)
	Delete(ctx context.Context, id int64) error
}

// LessonRepository хранилище уроков
type LessonRepository interface {
	CreateIfFree(ctx context.Context, lesson *model.Lesson) error
	GetByID(ctx context.Context, id int64) (*model.Lesson, error)
	ListActiveByTutor(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Lesson, error)
	ListByTutor(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Lesson, error)
	ListByStudent(ctx context.Context, studentID int64, from, to time.Time) ([]*model.Lesson, error)
	UpdateStatus(ctx context.Context, id int64, from []model.LessonStatus, to model.LessonStatus) (*model.Lesson, error)
}

// RequestRepository хранилище заявок
type RequestRepository interface {
	Create(ctx context.Context, req *model.LessonRequest) error
	GetByID(ctx context.Context, id int64) (*model.LessonRequest, error)
	Transition(ctx context.Context, req *model.LessonRequest, from model.RequestStatus) error
	ListByTutor(ctx context.Context, tutorID int64, statuses ...model.RequestStatus) ([]*model.LessonRequest, error)
	ListByStudent(ctx context.Context, studentID int64, statuses ...model.RequestStatus) ([]*model.LessonRequest, error)
}

// SlotChecker проверяет что интервал совпадает со свободным слотом учителя
type SlotChecker interface {
	IsOpenSlot(ctx context.Context, tutorID int64, slot model.TimeSlot) (bool, error)
}
