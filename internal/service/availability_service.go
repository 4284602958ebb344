package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/metrics"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"go.uber.org/zap"
)

// AddRuleInput параметры правила доступности
type AddRuleInput struct {
	TutorID               int64           `validate:"gt=0"`
	DayOfWeek             int             `validate:"min=1,max=7"`
	StartTime             model.TimeOfDay `validate:"min=0,max=1439"`
	EndTime               model.TimeOfDay `validate:"gtfield=StartTime,max=1440"`
	LessonDurationMinutes int             `validate:"min=15,max=180"`
	BreakDurationMinutes  int             `validate:"min=0,max=60"`
}

func (in AddRuleInput) validate() error {
	if err := validateInput(in); err != nil {
		return fmt.Errorf("invalid availability rule: %w", err)
	}

	if window := int(in.EndTime - in.StartTime); in.LessonDurationMinutes > window {
		return fmt.Errorf("lesson of %d min does not fit into %s-%s: %w",
			in.LessonDurationMinutes, in.StartTime, in.EndTime, model.ErrInvalidRange)
	}

	return nil
}

type AvailabilityService struct {
	rules   RuleRepository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewAvailabilityService(rules RuleRepository, m *metrics.Metrics, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		rules:   rules,
		metrics: m,
		logger:  logger,
	}
}

// AddRule создаёт включённое правило. Окно не должно пересекаться с другими активными правилами дня
func (s *AvailabilityService) AddRule(ctx context.Context, in AddRuleInput) (*model.AvailabilityRule, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	rule := &model.AvailabilityRule{
		TutorID:               in.TutorID,
		DayOfWeek:             in.DayOfWeek,
		StartTime:             in.StartTime,
		EndTime:               in.EndTime,
		LessonDurationMinutes: in.LessonDurationMinutes,
		BreakDurationMinutes:  in.BreakDurationMinutes,
		IsAvailable:           true,
	}

	if err := s.rules.CreateIfFree(ctx, rule); err != nil {
		if errors.Is(err, model.ErrOverlap) {
			s.metrics.RuleConflict()
		}
		return nil, fmt.Errorf("add availability rule: %w", err)
	}

	s.logger.Info("Availability rule added",
		zap.Int64("rule_id", rule.ID),
		zap.Int64("tutor_id", rule.TutorID),
		zap.Int("day_of_week", rule.DayOfWeek),
		zap.Stringer("start", rule.StartTime),
		zap.Stringer("end", rule.EndTime),
	)

	return rule, nil
}

// UpdateRule меняет окно и длительности правила, сохраняя его состояние включения
func (s *AvailabilityService) UpdateRule(ctx context.Context, tutorID, ruleID int64, in AddRuleInput) (*model.AvailabilityRule, error) {
	in.TutorID = tutorID
	if err := in.validate(); err != nil {
		return nil, err
	}

	rule, err := s.ownedRule(ctx, tutorID, ruleID)
	if err != nil {
		return nil, err
	}

	rule.DayOfWeek = in.DayOfWeek
	rule.StartTime = in.StartTime
	rule.EndTime = in.EndTime
	rule.LessonDurationMinutes = in.LessonDurationMinutes
	rule.BreakDurationMinutes = in.BreakDurationMinutes

	if err := s.rules.UpdateIfFree(ctx, rule); err != nil {
		if errors.Is(err, model.ErrOverlap) {
			s.metrics.RuleConflict()
		}
		return nil, fmt.Errorf("update availability rule: %w", err)
	}

	s.logger.Info("Availability rule updated",
		zap.Int64("rule_id", rule.ID),
		zap.Int64("tutor_id", tutorID),
	)

	return rule, nil
}

// ToggleRule включает или выключает правило. Включение заново проверяет пересечения
func (s *AvailabilityService) ToggleRule(ctx context.Context, tutorID, ruleID int64, isAvailable bool) (*model.AvailabilityRule, error) {
	if _, err := s.ownedRule(ctx, tutorID, ruleID); err != nil {
		return nil, err
	}

	rule, err := s.rules.SetAvailable(ctx, ruleID, isAvailable)
	if err != nil {
		if errors.Is(err, model.ErrOverlap) {
			s.metrics.RuleConflict()
		}
		return nil, fmt.Errorf("toggle availability rule: %w", err)
	}

	s.logger.Info("Availability rule toggled",
		zap.Int64("rule_id", ruleID),
		zap.Int64("tutor_id", tutorID),
		zap.Bool("is_available", isAvailable),
	)

	return rule, nil
}

// RemoveRule удаляет правило. Уже созданные уроки не затрагиваются
func (s *AvailabilityService) RemoveRule(ctx context.Context, tutorID, ruleID int64) error {
	if _, err := s.ownedRule(ctx, tutorID, ruleID); err != nil {
		return err
	}

	if err := s.rules.Delete(ctx, ruleID); err != nil {
		return fmt.Errorf("remove availability rule: %w", err)
	}

	s.logger.Info("Availability rule removed",
		zap.Int64("rule_id", ruleID),
		zap.Int64("tutor_id", tutorID),
	)

	return nil
}

// ListRules все правила учителя по дням и времени
func (s *AvailabilityService) ListRules(ctx context.Context, tutorID int64) ([]*model.AvailabilityRule, error) {
	return s.rules.ListByTutor(ctx, tutorID)
}

func (s *AvailabilityService) GetRule(ctx context.Context, ruleID int64) (*model.AvailabilityRule, error) {
	return s.rules.GetByID(ctx, ruleID)
}

func (s *AvailabilityService) ownedRule(ctx context.Context, tutorID, ruleID int64) (*model.AvailabilityRule, error) {
	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("get availability rule: %w", err)
	}

	if rule.TutorID != tutorID {
		return nil, fmt.Errorf("rule %d belongs to another tutor: %w", ruleID, model.ErrPermissionDenied)
	}

	return rule, nil
}
