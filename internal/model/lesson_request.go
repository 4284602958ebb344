package model

import "time"

type RequestStatus string

const (
	RequestStatusPending           RequestStatus = "pending"             // Ожидает ответа учителя
	RequestStatusTimeSlotsProposed RequestStatus = "time_slots_proposed" // Учитель предложил другое время
	RequestStatusConfirmed         RequestStatus = "confirmed"           // Урок создан
	RequestStatusRejected          RequestStatus = "rejected"            // Отклонено учителем
	RequestStatusCancelled         RequestStatus = "cancelled"           // Отменено одной из сторон
)

// requestTransitions допустимые переходы заявки. Терминальных статусов здесь нет
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending: {
		RequestStatusConfirmed,
		RequestStatusRejected,
		RequestStatusTimeSlotsProposed,
		RequestStatusCancelled,
	},
	RequestStatusTimeSlotsProposed: {
		RequestStatusConfirmed,
		RequestStatusCancelled,
	},
}

// IsTerminal confirmed, rejected и cancelled больше не меняются
func (s RequestStatus) IsTerminal() bool {
	_, ok := requestTransitions[s]
	return !ok
}

// CanTransitionTo проверяет допустимость перехода по таблице состояний
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// LessonRequest заявка студента на урок и переговоры по ней
type LessonRequest struct {
	ID                 int64         `json:"id"`
	StudentID          int64         `json:"student_id"`
	TutorID            int64         `json:"tutor_id"`
	SubjectID          int64         `json:"subject_id"`
	RequestedDate      time.Time     `json:"requested_date"`
	RequestedStartTime time.Time     `json:"requested_start_time"`
	RequestedEndTime   time.Time     `json:"requested_end_time"`
	Message            string        `json:"message"`
	Status             RequestStatus `json:"status"`
	TutorResponse      TutorResponse `json:"-"` // nil пока учитель не ответил
	LessonID           *int64        `json:"lesson_id"`
	CreatedAt          time.Time     `json:"created_at"`
	RespondedAt        *time.Time    `json:"responded_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// RequestedSlot запрошенное время в виде слота
func (r *LessonRequest) RequestedSlot() TimeSlot {
	return TimeSlot{StartTime: r.RequestedStartTime, EndTime: r.RequestedEndTime}
}

// SetRequestedSlot перезаписывает запрошенное время выбранным слотом
func (r *LessonRequest) SetRequestedSlot(slot TimeSlot) {
	r.RequestedDate = slot.Date()
	r.RequestedStartTime = slot.StartTime
	r.RequestedEndTime = slot.EndTime
}

// ProposedSlots слоты, предложенные учителем (пусто, если предложения нет)
func (r *LessonRequest) ProposedSlots() []TimeSlot {
	if p, ok := r.TutorResponse.(Proposed); ok {
		return p.Slots
	}
	return nil
}

func (r *LessonRequest) IsParticipant(userID int64) bool {
	return r.TutorID == userID || r.StudentID == userID
}
