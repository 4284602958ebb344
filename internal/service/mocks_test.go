package service

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/events"
	"github.com/Freeeeeet/tutor_scheduler/internal/metrics"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// Понедельник 3 марта 2025. "Сейчас" в тестах - суббота перед ним
var (
	monday   = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	tuesday  = monday.AddDate(0, 0, 1)
	testNow  = monday.AddDate(0, 0, -2).Add(8 * time.Hour)
	fixedNow = func() time.Time { return testNow }
)

func at(day time.Time, hhmm string) time.Time {
	t, err := model.ParseTimeOfDay(hhmm)
	if err != nil {
		panic(err)
	}
	return t.On(day)
}

func slotOn(day time.Time, from, to string) model.TimeSlot {
	return model.TimeSlot{StartTime: at(day, from), EndTime: at(day, to)}
}

type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) CreateIfFree(ctx context.Context, rule *model.AvailabilityRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) UpdateIfFree(ctx context.Context, rule *model.AvailabilityRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) SetAvailable(ctx context.Context, id int64, isAvailable bool) (*model.AvailabilityRule, error) {
	args := m.Called(ctx, id, isAvailable)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AvailabilityRule), args.Error(1)
}

func (m *MockRuleRepository) GetByID(ctx context.Context, id int64) (*model.AvailabilityRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AvailabilityRule), args.Error(1)
}

func (m *MockRuleRepository) ListByTutor(ctx context.Context, tutorID int64) ([]*model.AvailabilityRule, error) {
	args := m.Called(ctx, tutorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AvailabilityRule), args.Error(1)
}

func (m *MockRuleRepository) ListActiveByDay(ctx context.Context, tutorID int64, dayOfWeek int) ([]*model.AvailabilityRule, error) {
	args := m.Called(ctx, tutorID, dayOfWeek)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AvailabilityRule), args.Error(1)
}

func (m *MockRuleRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, req *model.LessonRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id int64) (*model.LessonRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LessonRequest), args.Error(1)
}

func (m *MockRequestRepository) Transition(ctx context.Context, req *model.LessonRequest, from model.RequestStatus) error {
	args := m.Called(ctx, req, from)
	return args.Error(0)
}

func (m *MockRequestRepository) ListByTutor(ctx context.Context, tutorID int64, statuses ...model.RequestStatus) ([]*model.LessonRequest, error) {
	args := m.Called(ctx, tutorID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LessonRequest), args.Error(1)
}

func (m *MockRequestRepository) ListByStudent(ctx context.Context, studentID int64, statuses ...model.RequestStatus) ([]*model.LessonRequest, error) {
	args := m.Called(ctx, studentID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LessonRequest), args.Error(1)
}

type MockSlotChecker struct {
	mock.Mock
}

func (m *MockSlotChecker) IsOpenSlot(ctx context.Context, tutorID int64, slot model.TimeSlot) (bool, error) {
	args := m.Called(ctx, tutorID, slot)
	return args.Bool(0), args.Error(1)
}

// recordingPublisher запоминает темы опубликованных событий
type recordingPublisher struct {
	events.NopPublisher
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) record(subject string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
}

func (p *recordingPublisher) LessonCreated(context.Context, *model.Lesson) error {
	p.record(events.SubjectLessonCreated)
	return nil
}

func (p *recordingPublisher) LessonCancelled(context.Context, *model.Lesson, int64) error {
	p.record(events.SubjectLessonCancelled)
	return nil
}

func (p *recordingPublisher) RequestResponded(context.Context, *model.LessonRequest) error {
	p.record(events.SubjectRequestResponded)
	return nil
}

func (p *recordingPublisher) RequestConfirmed(context.Context, *model.LessonRequest, *model.Lesson) error {
	p.record(events.SubjectRequestConfirmed)
	return nil
}

// testEnv сервисы поверх одного хранилища в памяти
type testEnv struct {
	store        *memoryStore
	lessons      memoryLessons
	publisher    *recordingPublisher
	availability *AvailabilityService
	slots        *SlotGenerator
	lessonSvc    *LessonService
	booking      *BookingService
}

func newTestEnv() *testEnv {
	store := newMemoryStore()
	rules := memoryRules{store}
	lessons := memoryLessons{store}
	requests := memoryRequests{store}
	m := metrics.New()
	logger := zap.NewNop()
	publisher := &recordingPublisher{}

	slots := NewSlotGenerator(rules, lessons, m, logger)

	lessonSvc := NewLessonService(lessons, slots, publisher, m, logger)
	lessonSvc.now = fixedNow

	booking := NewBookingService(store, requests, lessons, slots, publisher, m, logger)
	booking.now = fixedNow

	return &testEnv{
		store:        store,
		lessons:      lessons,
		publisher:    publisher,
		availability: NewAvailabilityService(rules, m, logger),
		slots:        slots,
		lessonSvc:    lessonSvc,
		booking:      booking,
	}
}
