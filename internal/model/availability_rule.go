package model

import "time"

// AvailabilityRule еженедельное окно, в котором учитель готов проводить занятия
type AvailabilityRule struct {
	ID                    int64     `json:"id"`
	TutorID               int64     `json:"tutor_id"`
	DayOfWeek             int       `json:"day_of_week"` // 1 = Monday, 7 = Sunday
	StartTime             TimeOfDay `json:"start_time"`
	EndTime               TimeOfDay `json:"end_time"`
	LessonDurationMinutes int       `json:"lesson_duration_minutes"` // 15-180
	BreakDurationMinutes  int       `json:"break_duration_minutes"`  // 0-60
	IsAvailable           bool      `json:"is_available"`            // выключенное правило слотов не даёт
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// WindowMinutes длина окна в минутах
func (r *AvailabilityRule) WindowMinutes() int {
	return int(r.EndTime - r.StartTime)
}

// StepMinutes шаг между началами соседних слотов
func (r *AvailabilityRule) StepMinutes() int {
	return r.LessonDurationMinutes + r.BreakDurationMinutes
}

// Overlaps проверяет пересечение окон двух правил одного дня
func (r *AvailabilityRule) Overlaps(other *AvailabilityRule) bool {
	if r.TutorID != other.TutorID || r.DayOfWeek != other.DayOfWeek {
		return false
	}
	return r.StartTime < other.EndTime && other.StartTime < r.EndTime
}
