package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const ruleColumns = `id, tutor_id, day_of_week, start_minute, end_minute, lesson_duration_minutes, break_duration_minutes, is_available, created_at, updated_at`

// AvailabilityRepository хранит еженедельные правила доступности учителей
type AvailabilityRepository struct {
	*base.Repository
	logger *zap.Logger
}

// NewAvailabilityRepository создаёт новый репозиторий
func NewAvailabilityRepository(db base.DB, logger *zap.Logger) *AvailabilityRepository {
	return &AvailabilityRepository{
		Repository: base.NewRepository(db),
		logger:     logger,
	}
}

func tutorRulesLockKey(tutorID int64) string {
	return fmt.Sprintf("availability_rules:%d", tutorID)
}

// CreateIfFree сохраняет правило, если его окно не пересекается с активными правилами того же дня.
// Проверка и вставка выполняются под блокировкой учителя в одной транзакции
func (r *AvailabilityRepository) CreateIfFree(ctx context.Context, rule *model.AvailabilityRule) error {
	return r.InTx(ctx, func(ctx context.Context) error {
		if err := r.LockKey(ctx, tutorRulesLockKey(rule.TutorID)); err != nil {
			return err
		}

		if rule.IsAvailable {
			overlap, err := r.hasOverlap(ctx, rule)
			if err != nil {
				return err
			}
			if overlap {
				return model.ErrRuleOverlap
			}
		}

		query := `
			INSERT INTO availability_rules (tutor_id, day_of_week, start_minute, end_minute, lesson_duration_minutes, break_duration_minutes, is_available)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at
		`

		err := r.Conn(ctx).QueryRow(
			ctx, query,
			rule.TutorID,
			rule.DayOfWeek,
			int(rule.StartTime),
			int(rule.EndTime),
			rule.LessonDurationMinutes,
			rule.BreakDurationMinutes,
			rule.IsAvailable,
		).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
		if err != nil {
			if base.IsExclusionViolation(err) {
				return model.ErrRuleOverlap
			}
			return fmt.Errorf("create availability rule: %w", err)
		}

		return nil
	})
}

// UpdateIfFree обновляет окно и длительности правила с той же проверкой пересечений
func (r *AvailabilityRepository) UpdateIfFree(ctx context.Context, rule *model.AvailabilityRule) error {
	return r.InTx(ctx, func(ctx context.Context) error {
		if err := r.LockKey(ctx, tutorRulesLockKey(rule.TutorID)); err != nil {
			return err
		}

		if rule.IsAvailable {
			overlap, err := r.hasOverlap(ctx, rule)
			if err != nil {
				return err
			}
			if overlap {
				return model.ErrRuleOverlap
			}
		}

		query := `
			UPDATE availability_rules
			SET day_of_week = $2, start_minute = $3, end_minute = $4,
			    lesson_duration_minutes = $5, break_duration_minutes = $6, is_available = $7,
			    updated_at = now()
			WHERE id = $1
			RETURNING updated_at
		`

		err := r.Conn(ctx).QueryRow(
			ctx, query,
			rule.ID,
			rule.DayOfWeek,
			int(rule.StartTime),
			int(rule.EndTime),
			rule.LessonDurationMinutes,
			rule.BreakDurationMinutes,
			rule.IsAvailable,
		).Scan(&rule.UpdatedAt)
		if err != nil {
			if base.IsNotFound(err) {
				return model.ErrRuleNotFound
			}
			if base.IsExclusionViolation(err) {
				return model.ErrRuleOverlap
			}
			return fmt.Errorf("update availability rule: %w", err)
		}

		return nil
	})
}

// SetAvailable включает или выключает правило. Включение проверяет пересечения
func (r *AvailabilityRepository) SetAvailable(ctx context.Context, id int64, isAvailable bool) (*model.AvailabilityRule, error) {
	var rule *model.AvailabilityRule

	err := r.InTx(ctx, func(ctx context.Context) error {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := r.LockKey(ctx, tutorRulesLockKey(current.TutorID)); err != nil {
			return err
		}

		// Перечитываем под блокировкой: окно могли изменить параллельно
		current, err = r.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if isAvailable && !current.IsAvailable {
			current.IsAvailable = true
			overlap, err := r.hasOverlap(ctx, current)
			if err != nil {
				return err
			}
			if overlap {
				return model.ErrRuleOverlap
			}
		}
		current.IsAvailable = isAvailable

		query := `
			UPDATE availability_rules
			SET is_available = $2, updated_at = now()
			WHERE id = $1
			RETURNING updated_at
		`

		err = r.Conn(ctx).QueryRow(ctx, query, id, isAvailable).Scan(&current.UpdatedAt)
		if err != nil {
			if base.IsExclusionViolation(err) {
				return model.ErrRuleOverlap
			}
			return fmt.Errorf("set availability rule state: %w", err)
		}

		rule = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rule, nil
}

// hasOverlap есть ли другое активное правило того же дня, пересекающее окно
func (r *AvailabilityRepository) hasOverlap(ctx context.Context, rule *model.AvailabilityRule) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM availability_rules
			WHERE tutor_id = $1
			  AND day_of_week = $2
			  AND is_available = true
			  AND id <> $3
			  AND start_minute < $5
			  AND end_minute > $4
		)
	`

	var exists bool
	err := r.Conn(ctx).QueryRow(
		ctx, query,
		rule.TutorID,
		rule.DayOfWeek,
		rule.ID,
		int(rule.StartTime),
		int(rule.EndTime),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check availability rule overlap: %w", err)
	}

	return exists, nil
}

// GetByID получает правило по ID
func (r *AvailabilityRepository) GetByID(ctx context.Context, id int64) (*model.AvailabilityRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM availability_rules WHERE id = $1`

	rule, err := scanRule(r.Conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, model.ErrRuleNotFound
		}
		return nil, fmt.Errorf("get availability rule by id: %w", err)
	}

	return rule, nil
}

// ListByTutor получает все правила учителя, включая выключенные
func (r *AvailabilityRepository) ListByTutor(ctx context.Context, tutorID int64) ([]*model.AvailabilityRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM availability_rules
		WHERE tutor_id = $1
		ORDER BY day_of_week, start_minute
	`

	rows, err := r.Conn(ctx).Query(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list availability rules by tutor: %w", err)
	}

	return collectRules(rows)
}

// ListActiveByDay получает включённые правила учителя на день недели
func (r *AvailabilityRepository) ListActiveByDay(ctx context.Context, tutorID int64, dayOfWeek int) ([]*model.AvailabilityRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM availability_rules
		WHERE tutor_id = $1 AND day_of_week = $2 AND is_available = true
		ORDER BY start_minute
	`

	rows, err := r.Conn(ctx).Query(ctx, query, tutorID, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("list active availability rules: %w", err)
	}

	return collectRules(rows)
}

// Delete удаляет правило
func (r *AvailabilityRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM availability_rules WHERE id = $1`

	tag, err := r.Conn(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete availability rule: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrRuleNotFound
	}

	r.logger.Debug("Availability rule deleted", zap.Int64("rule_id", id))

	return nil
}

func scanRule(row pgx.Row) (*model.AvailabilityRule, error) {
	var (
		rule        model.AvailabilityRule
		startMinute int
		endMinute   int
	)

	err := row.Scan(
		&rule.ID,
		&rule.TutorID,
		&rule.DayOfWeek,
		&startMinute,
		&endMinute,
		&rule.LessonDurationMinutes,
		&rule.BreakDurationMinutes,
		&rule.IsAvailable,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.StartTime = model.TimeOfDay(startMinute)
	rule.EndTime = model.TimeOfDay(endMinute)

	return &rule, nil
}

func collectRules(rows pgx.Rows) ([]*model.AvailabilityRule, error) {
	defer rows.Close()

	var rules []*model.AvailabilityRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan availability rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availability rules: %w", err)
	}

	return rules, nil
}
