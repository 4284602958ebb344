package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

type txCtxKey struct{}

// memoryStore хранилище в памяти с семантикой репозиториев pgx: проверка пересечений,
// compare-and-set и откат транзакции
type memoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID   int64
	rules    map[int64]model.AvailabilityRule
	lessons  map[int64]model.Lesson
	requests map[int64]model.LessonRequest

	// failTransition заставляет Transition вернуть ошибку (проверка отката)
	failTransition error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		rules:    make(map[int64]model.AvailabilityRule),
		lessons:  make(map[int64]model.Lesson),
		requests: make(map[int64]model.LessonRequest),
	}
}

func (m *memoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memoryStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txCtxKey{}) != nil {
		return fn(ctx)
	}

	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	lessons := make(map[int64]model.Lesson, len(m.lessons))
	for k, v := range m.lessons {
		lessons[k] = v
	}
	requests := make(map[int64]model.LessonRequest, len(m.requests))
	for k, v := range m.requests {
		requests[k] = v
	}
	m.mu.Unlock()

	if err := fn(context.WithValue(ctx, txCtxKey{}, true)); err != nil {
		m.mu.Lock()
		m.lessons = lessons
		m.requests = requests
		m.mu.Unlock()
		return err
	}

	return nil
}

// Правила

type memoryRules struct{ *memoryStore }

func (r memoryRules) overlaps(rule *model.AvailabilityRule) bool {
	for _, other := range r.rules {
		if other.ID != rule.ID && other.IsAvailable && rule.Overlaps(&other) {
			return true
		}
	}
	return false
}

func (r memoryRules) CreateIfFree(_ context.Context, rule *model.AvailabilityRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rule.IsAvailable && r.overlaps(rule) {
		return model.ErrRuleOverlap
	}
	rule.ID = r.id()
	r.rules[rule.ID] = *rule
	return nil
}

func (r memoryRules) UpdateIfFree(_ context.Context, rule *model.AvailabilityRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rules[rule.ID]; !ok {
		return model.ErrRuleNotFound
	}
	if rule.IsAvailable && r.overlaps(rule) {
		return model.ErrRuleOverlap
	}
	r.rules[rule.ID] = *rule
	return nil
}

func (r memoryRules) SetAvailable(_ context.Context, id int64, isAvailable bool) (*model.AvailabilityRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[id]
	if !ok {
		return nil, model.ErrRuleNotFound
	}
	if isAvailable && !rule.IsAvailable {
		rule.IsAvailable = true
		if r.overlaps(&rule) {
			return nil, model.ErrRuleOverlap
		}
	}
	rule.IsAvailable = isAvailable
	r.rules[id] = rule
	return &rule, nil
}

func (r memoryRules) GetByID(_ context.Context, id int64) (*model.AvailabilityRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[id]
	if !ok {
		return nil, model.ErrRuleNotFound
	}
	return &rule, nil
}

func (r memoryRules) ListByTutor(_ context.Context, tutorID int64) ([]*model.AvailabilityRule, error) {
	return r.list(func(rule model.AvailabilityRule) bool { return rule.TutorID == tutorID }), nil
}

func (r memoryRules) ListActiveByDay(_ context.Context, tutorID int64, dayOfWeek int) ([]*model.AvailabilityRule, error) {
	return r.list(func(rule model.AvailabilityRule) bool {
		return rule.TutorID == tutorID && rule.DayOfWeek == dayOfWeek && rule.IsAvailable
	}), nil
}

func (r memoryRules) list(match func(model.AvailabilityRule) bool) []*model.AvailabilityRule {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.AvailabilityRule
	for _, rule := range r.rules {
		if match(rule) {
			rule := rule
			result = append(result, &rule)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DayOfWeek != result[j].DayOfWeek {
			return result[i].DayOfWeek < result[j].DayOfWeek
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result
}

func (r memoryRules) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rules[id]; !ok {
		return model.ErrRuleNotFound
	}
	delete(r.rules, id)
	return nil
}

// Уроки

type memoryLessons struct{ *memoryStore }

func (r memoryLessons) CreateIfFree(_ context.Context, lesson *model.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, other := range r.lessons {
		if other.TutorID == lesson.TutorID && other.IsActive() &&
			model.Overlaps(other.StartTime, other.EndTime, lesson.StartTime, lesson.EndTime) {
			return model.ErrSlotUnavailable
		}
	}
	lesson.ID = r.id()
	r.lessons[lesson.ID] = *lesson
	return nil
}

func (r memoryLessons) GetByID(_ context.Context, id int64) (*model.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lesson, ok := r.lessons[id]
	if !ok {
		return nil, model.ErrLessonNotFound
	}
	return &lesson, nil
}

func (r memoryLessons) ListActiveByTutor(_ context.Context, tutorID int64, from, to time.Time) ([]*model.Lesson, error) {
	return r.list(func(l model.Lesson) bool {
		return l.TutorID == tutorID && l.IsActive() && model.Overlaps(l.StartTime, l.EndTime, from, to)
	}), nil
}

func (r memoryLessons) ListByTutor(_ context.Context, tutorID int64, from, to time.Time) ([]*model.Lesson, error) {
	return r.list(func(l model.Lesson) bool {
		return l.TutorID == tutorID && !l.StartTime.Before(from) && l.StartTime.Before(to)
	}), nil
}

func (r memoryLessons) ListByStudent(_ context.Context, studentID int64, from, to time.Time) ([]*model.Lesson, error) {
	return r.list(func(l model.Lesson) bool {
		return l.StudentID == studentID && !l.StartTime.Before(from) && l.StartTime.Before(to)
	}), nil
}

func (r memoryLessons) list(match func(model.Lesson) bool) []*model.Lesson {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.Lesson
	for _, l := range r.lessons {
		if match(l) {
			l := l
			result = append(result, &l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result
}

func (r memoryLessons) UpdateStatus(_ context.Context, id int64, from []model.LessonStatus, to model.LessonStatus) (*model.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lesson, ok := r.lessons[id]
	if !ok {
		return nil, model.ErrLessonNotFound
	}
	for _, s := range from {
		if lesson.Status == s {
			lesson.Status = to
			r.lessons[id] = lesson
			return &lesson, nil
		}
	}
	return nil, model.ErrInvalidStateTransition
}

// active активные уроки учителя
func (r memoryLessons) active(tutorID int64) []*model.Lesson {
	return r.list(func(l model.Lesson) bool { return l.TutorID == tutorID && l.IsActive() })
}

// Заявки

type memoryRequests struct{ *memoryStore }

func (r memoryRequests) Create(_ context.Context, req *model.LessonRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req.ID = r.id()
	r.requests[req.ID] = *req
	return nil
}

func (r memoryRequests) GetByID(_ context.Context, id int64) (*model.LessonRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, model.ErrRequestNotFound
	}
	return &req, nil
}

func (r memoryRequests) Transition(_ context.Context, req *model.LessonRequest, from model.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failTransition != nil {
		return r.failTransition
	}

	stored, ok := r.requests[req.ID]
	if !ok || stored.Status != from {
		return model.ErrInvalidStateTransition
	}
	r.requests[req.ID] = *req
	return nil
}

func (r memoryRequests) ListByTutor(_ context.Context, tutorID int64, statuses ...model.RequestStatus) ([]*model.LessonRequest, error) {
	return r.list(func(req model.LessonRequest) bool { return req.TutorID == tutorID }, statuses), nil
}

func (r memoryRequests) ListByStudent(_ context.Context, studentID int64, statuses ...model.RequestStatus) ([]*model.LessonRequest, error) {
	return r.list(func(req model.LessonRequest) bool { return req.StudentID == studentID }, statuses), nil
}

func (r memoryRequests) list(match func(model.LessonRequest) bool, statuses []model.RequestStatus) []*model.LessonRequest {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.LessonRequest
	for _, req := range r.requests {
		if !match(req) {
			continue
		}
		if len(statuses) > 0 {
			found := false
			for _, s := range statuses {
				found = found || req.Status == s
			}
			if !found {
				continue
			}
		}
		req := req
		result = append(result, &req)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result
}
