package model

import (
	"fmt"
	"time"
)

// TimeSlot конкретный интервал времени [StartTime, EndTime)
type TimeSlot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Date возвращает дату начала слота
func (s TimeSlot) Date() time.Time {
	return DateOf(s.StartTime)
}

func (s TimeSlot) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return Overlaps(s.StartTime, s.EndTime, other.StartTime, other.EndTime)
}

// Equal сравнивает моменты, а не представление (часовой пояс может отличаться)
func (s TimeSlot) Equal(other TimeSlot) bool {
	return s.StartTime.Equal(other.StartTime) && s.EndTime.Equal(other.EndTime)
}

// Validate проверяет что начало раньше конца и слот не переходит через полночь
func (s TimeSlot) Validate() error {
	if !s.StartTime.Before(s.EndTime) {
		return fmt.Errorf("slot start must be before end: %w", ErrInvalidRange)
	}
	if !s.EndTime.Equal(s.Date().AddDate(0, 0, 1)) && !s.Date().Equal(DateOf(s.EndTime)) {
		return fmt.Errorf("slot must fit into one day: %w", ErrInvalidRange)
	}
	return nil
}

// CandidateSlot слот, сгенерированный из правил доступности. В БД не хранится
type CandidateSlot struct {
	TutorID     int64     `json:"tutor_id"`
	Date        time.Time `json:"date"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
}

func (c CandidateSlot) TimeSlot() TimeSlot {
	return TimeSlot{StartTime: c.StartTime, EndTime: c.EndTime}
}
