package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/events"
	"github.com/Freeeeeet/tutor_scheduler/internal/metrics"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"go.uber.org/zap"
)

// MaxProposedSlots сколько альтернатив учитель может предложить за раз
const MaxProposedSlots = 10

// CreateRequestInput заявка студента на урок
type CreateRequestInput struct {
	StudentID int64 `validate:"gt=0"`
	TutorID   int64 `validate:"gt=0"`
	SubjectID int64 `validate:"gt=0"`
	Slot      model.TimeSlot
	Message   string `validate:"max=1000"`
}

// TutorAction ответ учителя на заявку: AcceptAction, RejectAction или ProposeAction
type TutorAction interface {
	tutorAction()
}

// AcceptAction принять запрошенное время
type AcceptAction struct{}

// RejectAction отклонить заявку с необязательным комментарием
type RejectAction struct {
	Comment string `validate:"max=500"`
}

// ProposeAction предложить другие слоты
type ProposeAction struct {
	Slots []model.TimeSlot
}

func (AcceptAction) tutorAction()  {}
func (RejectAction) tutorAction()  {}
func (ProposeAction) tutorAction() {}

// BookingService ведёт заявку от создания до урока
type BookingService struct {
	tx        Transactor
	requests  RequestRepository
	lessons   LessonRepository
	slots     SlotChecker
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func NewBookingService(
	tx Transactor,
	requests RequestRepository,
	lessons LessonRepository,
	slots SlotChecker,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		tx:        tx,
		requests:  requests,
		lessons:   lessons,
		slots:     slots,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateRequest создаёт заявку в статусе pending. Время вне расписания учителя допускается
func (s *BookingService) CreateRequest(ctx context.Context, in CreateRequestInput) (*model.LessonRequest, error) {
	if err := validateInput(in); err != nil {
		return nil, fmt.Errorf("invalid lesson request: %w", err)
	}

	if in.StudentID == in.TutorID {
		return nil, fmt.Errorf("student cannot request a lesson from themselves: %w", model.ErrPermissionDenied)
	}

	if err := validateFutureSlot(in.Slot, s.now()); err != nil {
		return nil, err
	}

	open, err := s.slots.IsOpenSlot(ctx, in.TutorID, in.Slot)
	if err != nil {
		s.logger.Warn("Failed to match request against tutor slots", zap.Error(err), zap.Int64("tutor_id", in.TutorID))
	}

	req := &model.LessonRequest{
		StudentID: in.StudentID,
		TutorID:   in.TutorID,
		SubjectID: in.SubjectID,
		Message:   in.Message,
		Status:    model.RequestStatusPending,
	}
	req.SetRequestedSlot(in.Slot)

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create lesson request: %w", err)
	}

	s.metrics.RequestTransition("", string(model.RequestStatusPending))
	s.logger.Info("Lesson request created",
		zap.Int64("request_id", req.ID),
		zap.Int64("student_id", req.StudentID),
		zap.Int64("tutor_id", req.TutorID),
		zap.Time("start", req.RequestedStartTime),
		zap.Bool("matches_open_slot", open),
	)

	if err := s.publisher.RequestCreated(ctx, req); err != nil {
		s.logger.Error("Failed to publish request created", zap.Error(err), zap.Int64("request_id", req.ID))
	}

	return req, nil
}

// RespondToRequest ответ учителя на pending-заявку. Для AcceptAction возвращает и созданный урок
func (s *BookingService) RespondToRequest(ctx context.Context, tutorID, requestID int64, action TutorAction) (*model.LessonRequest, *model.Lesson, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("get lesson request: %w", err)
	}

	if req.TutorID != tutorID {
		return nil, nil, fmt.Errorf("request %d is addressed to another tutor: %w", requestID, model.ErrPermissionDenied)
	}

	if req.Status != model.RequestStatusPending {
		return nil, nil, fmt.Errorf("request %d is %s: %w", requestID, req.Status, model.ErrInvalidStateTransition)
	}

	switch a := action.(type) {
	case AcceptAction:
		if err := validateFutureSlot(req.RequestedSlot(), s.now()); err != nil {
			return nil, nil, err
		}
		lesson, err := s.confirm(ctx, req, model.AcceptedDirectly{})
		if err != nil {
			return nil, nil, err
		}
		return req, lesson, nil

	case RejectAction:
		if err := validateInput(a); err != nil {
			return nil, nil, fmt.Errorf("invalid rejection: %w", err)
		}
		if err := s.transition(ctx, req, model.RequestStatusRejected, model.Rejected{Comment: a.Comment}); err != nil {
			return nil, nil, err
		}

	case ProposeAction:
		if err := s.validateProposal(a.Slots); err != nil {
			return nil, nil, err
		}
		if err := s.transition(ctx, req, model.RequestStatusTimeSlotsProposed, model.Proposed{Slots: a.Slots}); err != nil {
			return nil, nil, err
		}

	default:
		return nil, nil, fmt.Errorf("unknown tutor action %T: %w", action, model.ErrInvalidStateTransition)
	}

	if err := s.publisher.RequestResponded(ctx, req); err != nil {
		s.logger.Error("Failed to publish request responded", zap.Error(err), zap.Int64("request_id", req.ID))
	}

	return req, nil, nil
}

// SelectProposedSlot студент выбирает один из предложенных слотов; урок создаётся атомарно с подтверждением
func (s *BookingService) SelectProposedSlot(ctx context.Context, studentID, requestID int64, slot model.TimeSlot) (*model.Lesson, *model.LessonRequest, error) {
	req, err := s.studentRequest(ctx, studentID, requestID)
	if err != nil {
		return nil, nil, err
	}

	if req.Status != model.RequestStatusTimeSlotsProposed {
		return nil, nil, fmt.Errorf("request %d is %s: %w", requestID, req.Status, model.ErrInvalidStateTransition)
	}

	proposed := false
	for _, p := range req.ProposedSlots() {
		if p.Equal(slot) {
			proposed = true
			break
		}
	}
	if !proposed {
		return nil, nil, fmt.Errorf("slot was not proposed for request %d: %w", requestID, model.ErrInvalidRange)
	}

	if err := validateFutureSlot(slot, s.now()); err != nil {
		return nil, nil, err
	}

	req.SetRequestedSlot(slot)
	lesson, err := s.confirm(ctx, req, req.TutorResponse)
	if err != nil {
		return nil, nil, err
	}

	return lesson, req, nil
}

// RejectProposals студент отказывается от всех предложенных слотов, заявка отменяется
func (s *BookingService) RejectProposals(ctx context.Context, studentID, requestID int64) (*model.LessonRequest, error) {
	req, err := s.studentRequest(ctx, studentID, requestID)
	if err != nil {
		return nil, err
	}

	if req.Status != model.RequestStatusTimeSlotsProposed {
		return nil, fmt.Errorf("request %d is %s: %w", requestID, req.Status, model.ErrInvalidStateTransition)
	}

	if err := s.transition(ctx, req, model.RequestStatusCancelled, req.TutorResponse); err != nil {
		return nil, err
	}

	if err := s.publisher.RequestCancelled(ctx, req, studentID); err != nil {
		s.logger.Error("Failed to publish request cancelled", zap.Error(err), zap.Int64("request_id", req.ID))
	}

	return req, nil
}

// CancelRequest отмена незавершённой заявки любой из сторон
func (s *BookingService) CancelRequest(ctx context.Context, actorID, requestID int64) (*model.LessonRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get lesson request: %w", err)
	}

	if !req.IsParticipant(actorID) {
		return nil, fmt.Errorf("user %d is not a participant of request %d: %w", actorID, requestID, model.ErrPermissionDenied)
	}

	if !req.Status.CanTransitionTo(model.RequestStatusCancelled) {
		return nil, fmt.Errorf("request %d is %s: %w", requestID, req.Status, model.ErrInvalidStateTransition)
	}

	if err := s.transition(ctx, req, model.RequestStatusCancelled, req.TutorResponse); err != nil {
		return nil, err
	}

	if err := s.publisher.RequestCancelled(ctx, req, actorID); err != nil {
		s.logger.Error("Failed to publish request cancelled", zap.Error(err), zap.Int64("request_id", req.ID))
	}

	return req, nil
}

func (s *BookingService) GetRequest(ctx context.Context, requestID int64) (*model.LessonRequest, error) {
	return s.requests.GetByID(ctx, requestID)
}

// ListTutorRequests заявки учителю, новые сверху; без статусов - все
func (s *BookingService) ListTutorRequests(ctx context.Context, tutorID int64, statuses ...model.RequestStatus) ([]*model.LessonRequest, error) {
	return s.requests.ListByTutor(ctx, tutorID, statuses...)
}

// ListStudentRequests заявки студента, новые сверху; без статусов - все
func (s *BookingService) ListStudentRequests(ctx context.Context, studentID int64, statuses ...model.RequestStatus) ([]*model.LessonRequest, error) {
	return s.requests.ListByStudent(ctx, studentID, statuses...)
}

func (s *BookingService) studentRequest(ctx context.Context, studentID, requestID int64) (*model.LessonRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get lesson request: %w", err)
	}

	if req.StudentID != studentID {
		return nil, fmt.Errorf("request %d belongs to another student: %w", requestID, model.ErrPermissionDenied)
	}

	return req, nil
}

func (s *BookingService) validateProposal(slots []model.TimeSlot) error {
	if len(slots) == 0 || len(slots) > MaxProposedSlots {
		return fmt.Errorf("propose from 1 to %d slots, got %d: %w", MaxProposedSlots, len(slots), model.ErrInvalidRange)
	}

	now := s.now()
	for i, slot := range slots {
		if err := validateFutureSlot(slot, now); err != nil {
			return err
		}
		for _, prev := range slots[:i] {
			if prev.Equal(slot) {
				return fmt.Errorf("slot %s proposed twice: %w", slot.StartTime.Format(time.RFC3339), model.ErrInvalidRange)
			}
		}
	}

	return nil
}

// transition переводит заявку без создания урока (compare-and-set по текущему статусу)
func (s *BookingService) transition(ctx context.Context, req *model.LessonRequest, to model.RequestStatus, response model.TutorResponse) error {
	from := req.Status
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("request %d %s -> %s: %w", req.ID, from, to, model.ErrInvalidStateTransition)
	}

	updated := *req
	updated.Status = to
	updated.TutorResponse = response
	if from == model.RequestStatusPending && to != model.RequestStatusCancelled {
		now := s.now()
		updated.RespondedAt = &now
	}

	if err := s.requests.Transition(ctx, &updated, from); err != nil {
		return fmt.Errorf("update lesson request: %w", err)
	}
	*req = updated

	s.metrics.RequestTransition(string(from), string(to))
	s.logger.Info("Lesson request updated",
		zap.Int64("request_id", req.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	return nil
}

// confirm в одной транзакции создаёт урок на запрошенное время и переводит заявку в confirmed.
// При пересечении транзакция откатывается и заявка остаётся в прежнем статусе
func (s *BookingService) confirm(ctx context.Context, req *model.LessonRequest, response model.TutorResponse) (*model.Lesson, error) {
	from := req.Status
	requestID := req.ID

	lesson, err := newLesson(CreateLessonInput{
		TutorID:   req.TutorID,
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		StartTime: req.RequestedStartTime,
		EndTime:   req.RequestedEndTime,
		RequestID: &requestID,
	})
	if err != nil {
		return nil, err
	}

	updated := *req
	updated.Status = model.RequestStatusConfirmed
	updated.TutorResponse = response
	now := s.now()
	updated.RespondedAt = &now

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.lessons.CreateIfFree(ctx, lesson); err != nil {
			return fmt.Errorf("create lesson: %w", err)
		}

		updated.LessonID = &lesson.ID
		if err := s.requests.Transition(ctx, &updated, from); err != nil {
			return fmt.Errorf("update lesson request: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrOverlap) {
			s.metrics.LessonConflict(metrics.SourceRequest)
			s.logger.Warn("Requested time is already taken",
				zap.Int64("request_id", requestID),
				zap.Int64("tutor_id", req.TutorID),
				zap.Time("start", lesson.StartTime),
			)
		}
		return nil, fmt.Errorf("confirm lesson request: %w", err)
	}
	*req = updated

	s.metrics.RequestTransition(string(from), string(model.RequestStatusConfirmed))
	s.metrics.LessonCreated(metrics.SourceRequest)
	s.logger.Info("Lesson request confirmed",
		zap.Int64("request_id", requestID),
		zap.Int64("lesson_id", lesson.ID),
		zap.Int64("tutor_id", lesson.TutorID),
		zap.Int64("student_id", lesson.StudentID),
		zap.Time("start", lesson.StartTime),
	)

	if err := s.publisher.LessonCreated(ctx, lesson); err != nil {
		s.logger.Error("Failed to publish lesson created", zap.Error(err), zap.Int64("lesson_id", lesson.ID))
	}
	if err := s.publisher.RequestConfirmed(ctx, req, lesson); err != nil {
		s.logger.Error("Failed to publish request confirmed", zap.Error(err), zap.Int64("request_id", requestID))
	}

	return lesson, nil
}
