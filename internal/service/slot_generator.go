package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/metrics"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxRangeDays сколько дней подряд можно сгенерировать за один вызов
const MaxRangeDays = 14

// ActiveRuleReader источник включённых правил дня
type ActiveRuleReader interface {
	ListActiveByDay(ctx context.Context, tutorID int64, dayOfWeek int) ([]*model.AvailabilityRule, error)
}

// ActiveLessonReader источник активных уроков учителя
type ActiveLessonReader interface {
	ListActiveByTutor(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Lesson, error)
}

// SlotGenerator разворачивает правила доступности в слоты на конкретную дату
type SlotGenerator struct {
	rules   ActiveRuleReader
	lessons ActiveLessonReader
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewSlotGenerator(rules ActiveRuleReader, lessons ActiveLessonReader, m *metrics.Metrics, logger *zap.Logger) *SlotGenerator {
	return &SlotGenerator{
		rules:   rules,
		lessons: lessons,
		metrics: m,
		logger:  logger,
	}
}

// GenerateSlots слоты учителя на дату. Слот, пересекающий активный урок, помечен занятым.
// Дата берётся в её часовом поясе
func (g *SlotGenerator) GenerateSlots(ctx context.Context, tutorID int64, date time.Time) ([]model.CandidateSlot, error) {
	started := time.Now()
	day := model.DateOf(date)

	var (
		rules   []*model.AvailabilityRule
		lessons []*model.Lesson
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		rules, err = g.rules.ListActiveByDay(egCtx, tutorID, model.ISOWeekday(day))
		if err != nil {
			return fmt.Errorf("load availability rules: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		lessons, err = g.lessons.ListActiveByTutor(egCtx, tutorID, day, day.AddDate(0, 0, 1))
		if err != nil {
			return fmt.Errorf("load lessons: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("generate slots: %w", err)
	}

	slots := BuildSlots(tutorID, day, rules, lessons)

	available := 0
	for _, s := range slots {
		if s.IsAvailable {
			available++
		}
	}
	g.metrics.ObserveSlotGeneration(started, available, len(slots)-available)

	g.logger.Debug("Slots generated",
		zap.Int64("tutor_id", tutorID),
		zap.String("date", day.Format(time.DateOnly)),
		zap.Int("rules", len(rules)),
		zap.Int("slots", len(slots)),
		zap.Int("available", available),
	)

	return slots, nil
}

// GenerateSlotsRange слоты на days дней подряд, начиная с from
func (g *SlotGenerator) GenerateSlotsRange(ctx context.Context, tutorID int64, from time.Time, days int) ([]model.CandidateSlot, error) {
	if days < 1 || days > MaxRangeDays {
		return nil, fmt.Errorf("days must be between 1 and %d, got %d: %w", MaxRangeDays, days, model.ErrInvalidRange)
	}

	var result []model.CandidateSlot
	day := model.DateOf(from)
	for i := 0; i < days; i++ {
		slots, err := g.GenerateSlots(ctx, tutorID, day.AddDate(0, 0, i))
		if err != nil {
			return nil, err
		}
		result = append(result, slots...)
	}

	return result, nil
}

// IsOpenSlot совпадает ли интервал со свободным слотом учителя
func (g *SlotGenerator) IsOpenSlot(ctx context.Context, tutorID int64, slot model.TimeSlot) (bool, error) {
	slots, err := g.GenerateSlots(ctx, tutorID, slot.Date())
	if err != nil {
		return false, err
	}

	for _, c := range slots {
		if c.IsAvailable && c.TimeSlot().Equal(slot) {
			return true, nil
		}
	}

	return false, nil
}

// BuildSlots чистая функция: слоты из правил дня с пометкой занятости по урокам.
// Хвост окна короче урока отбрасывается. Правила с другим днём недели или выключенные пропускаются
func BuildSlots(tutorID int64, date time.Time, rules []*model.AvailabilityRule, lessons []*model.Lesson) []model.CandidateSlot {
	day := model.DateOf(date)
	weekday := model.ISOWeekday(day)

	slots := make([]model.CandidateSlot, 0)
	for _, rule := range rules {
		if !rule.IsAvailable || rule.DayOfWeek != weekday || rule.TutorID != tutorID {
			continue
		}

		step := rule.StepMinutes()
		if rule.LessonDurationMinutes <= 0 || step <= 0 {
			continue
		}

		lesson := model.TimeOfDay(rule.LessonDurationMinutes)
		duration := time.Duration(rule.LessonDurationMinutes) * time.Minute
		for t := rule.StartTime; t+lesson <= rule.EndTime; t += model.TimeOfDay(step) {
			start := t.On(day)
			// В день перевода часов такого времени суток может не быть
			if model.TimeOfDayOf(start) != t {
				continue
			}

			slot := model.CandidateSlot{
				TutorID:     tutorID,
				Date:        day,
				StartTime:   start,
				EndTime:     start.Add(duration),
				IsAvailable: true,
			}

			for _, l := range lessons {
				if l.IsActive() && model.Overlaps(slot.StartTime, slot.EndTime, l.StartTime, l.EndTime) {
					slot.IsAvailable = false
					break
				}
			}

			slots = append(slots, slot)
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})

	return slots
}
