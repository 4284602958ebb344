package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Темы NATS
const (
	SubjectLessonCreated    = "lesson.created"
	SubjectLessonCancelled  = "lesson.cancelled"
	SubjectLessonCompleted  = "lesson.completed"
	SubjectRequestCreated   = "lesson_request.created"
	SubjectRequestResponded = "lesson_request.responded"
	SubjectRequestConfirmed = "lesson_request.confirmed"
	SubjectRequestCancelled = "lesson_request.cancelled"
)

// Publisher публикует доменные события после коммита
type Publisher interface {
	LessonCreated(ctx context.Context, lesson *model.Lesson) error
	LessonCancelled(ctx context.Context, lesson *model.Lesson, actorID int64) error
	LessonCompleted(ctx context.Context, lesson *model.Lesson) error
	RequestCreated(ctx context.Context, req *model.LessonRequest) error
	RequestResponded(ctx context.Context, req *model.LessonRequest) error
	RequestConfirmed(ctx context.Context, req *model.LessonRequest, lesson *model.Lesson) error
	RequestCancelled(ctx context.Context, req *model.LessonRequest, actorID int64) error
}

// Event тело сообщения
type Event struct {
	EventID    uuid.UUID       `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	ActorID    int64           `json:"actor_id,omitempty"`
	Lesson     *LessonPayload  `json:"lesson,omitempty"`
	Request    *RequestPayload `json:"request,omitempty"`
}

type LessonPayload struct {
	ID        int64     `json:"id"`
	TutorID   int64     `json:"tutor_id"`
	StudentID int64     `json:"student_id"`
	SubjectID int64     `json:"subject_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
	Type      string    `json:"lesson_type"`
	RequestID *int64    `json:"request_id,omitempty"`
}

type RequestPayload struct {
	ID            int64            `json:"id"`
	StudentID     int64            `json:"student_id"`
	TutorID       int64            `json:"tutor_id"`
	SubjectID     int64            `json:"subject_id"`
	StartTime     time.Time        `json:"requested_start_time"`
	EndTime       time.Time        `json:"requested_end_time"`
	Status        string           `json:"status"`
	Response      string           `json:"response,omitempty"`
	Comment       string           `json:"comment,omitempty"`
	ProposedSlots []model.TimeSlot `json:"proposed_slots,omitempty"`
	LessonID      *int64           `json:"lesson_id,omitempty"`
}

func lessonPayload(l *model.Lesson) *LessonPayload {
	return &LessonPayload{
		ID:        l.ID,
		TutorID:   l.TutorID,
		StudentID: l.StudentID,
		SubjectID: l.SubjectID,
		StartTime: l.StartTime,
		EndTime:   l.EndTime,
		Status:    string(l.Status),
		Type:      string(l.LessonType),
		RequestID: l.RequestID,
	}
}

func requestPayload(r *model.LessonRequest) *RequestPayload {
	p := &RequestPayload{
		ID:        r.ID,
		StudentID: r.StudentID,
		TutorID:   r.TutorID,
		SubjectID: r.SubjectID,
		StartTime: r.RequestedStartTime,
		EndTime:   r.RequestedEndTime,
		Status:    string(r.Status),
		LessonID:  r.LessonID,
	}

	switch resp := r.TutorResponse.(type) {
	case model.Rejected:
		p.Response = string(resp.Kind())
		p.Comment = resp.Comment
	case model.Proposed:
		p.Response = string(resp.Kind())
		p.ProposedSlots = resp.Slots
	case model.AcceptedDirectly:
		p.Response = string(resp.Kind())
	}

	return p
}

// conn часть *nats.Conn, нужная публикатору
type conn interface {
	Publish(subj string, data []byte) error
}

// NatsPublisher отправляет события в NATS в формате JSON
type NatsPublisher struct {
	conn   conn
	nc     *nats.Conn
	now    func() time.Time
	logger *zap.Logger
}

// NewNatsPublisher подключается к NATS
func NewNatsPublisher(natsURL string, logger *zap.Logger) (*NatsPublisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("tutor-scheduler"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	p := newPublisher(nc, logger)
	p.nc = nc
	return p, nil
}

func newPublisher(c conn, logger *zap.Logger) *NatsPublisher {
	return &NatsPublisher{
		conn:   c,
		now:    time.Now,
		logger: logger,
	}
}

// Close дожидается отправки буфера и закрывает соединение
func (p *NatsPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}

func (p *NatsPublisher) publish(ctx context.Context, subject string, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event.EventID = uuid.New()
	event.EventType = subject
	event.OccurredAt = p.now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s event: %w", subject, err)
	}

	p.logger.Debug("Event published",
		zap.String("subject", subject),
		zap.String("event_id", event.EventID.String()),
	)

	return nil
}

func (p *NatsPublisher) LessonCreated(ctx context.Context, lesson *model.Lesson) error {
	return p.publish(ctx, SubjectLessonCreated, Event{Lesson: lessonPayload(lesson)})
}

func (p *NatsPublisher) LessonCancelled(ctx context.Context, lesson *model.Lesson, actorID int64) error {
	return p.publish(ctx, SubjectLessonCancelled, Event{ActorID: actorID, Lesson: lessonPayload(lesson)})
}

func (p *NatsPublisher) LessonCompleted(ctx context.Context, lesson *model.Lesson) error {
	return p.publish(ctx, SubjectLessonCompleted, Event{Lesson: lessonPayload(lesson)})
}

func (p *NatsPublisher) RequestCreated(ctx context.Context, req *model.LessonRequest) error {
	return p.publish(ctx, SubjectRequestCreated, Event{ActorID: req.StudentID, Request: requestPayload(req)})
}

func (p *NatsPublisher) RequestResponded(ctx context.Context, req *model.LessonRequest) error {
	return p.publish(ctx, SubjectRequestResponded, Event{ActorID: req.TutorID, Request: requestPayload(req)})
}

func (p *NatsPublisher) RequestConfirmed(ctx context.Context, req *model.LessonRequest, lesson *model.Lesson) error {
	return p.publish(ctx, SubjectRequestConfirmed, Event{Request: requestPayload(req), Lesson: lessonPayload(lesson)})
}

func (p *NatsPublisher) RequestCancelled(ctx context.Context, req *model.LessonRequest, actorID int64) error {
	return p.publish(ctx, SubjectRequestCancelled, Event{ActorID: actorID, Request: requestPayload(req)})
}

// NopPublisher используется, когда NATS не настроен
type NopPublisher struct{}

func (NopPublisher) LessonCreated(context.Context, *model.Lesson) error {
	return nil
}

func (NopPublisher) LessonCancelled(context.Context, *model.Lesson, int64) error {
	return nil
}

func (NopPublisher) LessonCompleted(context.Context, *model.Lesson) error {
	return nil
}

func (NopPublisher) RequestCreated(context.Context, *model.LessonRequest) error {
	return nil
}

func (NopPublisher) RequestResponded(context.Context, *model.LessonRequest) error {
	return nil
}

func (NopPublisher) RequestConfirmed(context.Context, *model.LessonRequest, *model.Lesson) error {
	return nil
}

func (NopPublisher) RequestCancelled(context.Context, *model.LessonRequest, int64) error {
	return nil
}
