package model

import "time"

type LessonStatus string

const (
	LessonStatusUpcoming  LessonStatus = "upcoming"  // Прямая запись на свободный слот
	LessonStatusConfirmed LessonStatus = "confirmed" // Подтверждено через заявку
	LessonStatusCompleted LessonStatus = "completed" // Проведено
	LessonStatusCancelled LessonStatus = "cancelled" // Отменено одной из сторон
)

// ActiveLessonStatuses статусы, которые занимают время учителя
var ActiveLessonStatuses = []LessonStatus{LessonStatusUpcoming, LessonStatusConfirmed}

type LessonType string

const (
	LessonTypeRegular LessonType = "regular"
	LessonTypeTrial   LessonType = "trial"
)

type Lesson struct {
	ID         int64        `json:"id"`
	TutorID    int64        `json:"tutor_id"`
	StudentID  int64        `json:"student_id"`
	SubjectID  int64        `json:"subject_id"`
	StartTime  time.Time    `json:"start_time"`
	EndTime    time.Time    `json:"end_time"`
	Status     LessonStatus `json:"status"`
	LessonType LessonType   `json:"lesson_type"`
	RequestID  *int64       `json:"request_id"` // заявка, из которой создан урок; nil при прямой записи
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// IsActive занимает ли урок время учителя
func (l *Lesson) IsActive() bool {
	return l.Status == LessonStatusUpcoming || l.Status == LessonStatusConfirmed
}

func (l *Lesson) TimeSlot() TimeSlot {
	return TimeSlot{StartTime: l.StartTime, EndTime: l.EndTime}
}

// IsParticipant является ли пользователь учителем или студентом урока
func (l *Lesson) IsParticipant(userID int64) bool {
	return l.TutorID == userID || l.StudentID == userID
}
