package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/events"
	"github.com/Freeeeeet/tutor_scheduler/internal/metrics"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	tutorID   = int64(1)
	studentID = int64(2)
	subjectID = int64(3)
)

func requestInput(slot model.TimeSlot) CreateRequestInput {
	return CreateRequestInput{
		StudentID: studentID,
		TutorID:   tutorID,
		SubjectID: subjectID,
		Slot:      slot,
		Message:   "Подготовка к экзамену",
	}
}

func TestBooking_HappyPath(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.availability.AddRule(ctx, mondayMorning())
	require.NoError(t, err)

	slots, err := env.slots.GenerateSlots(ctx, tutorID, monday)
	require.NoError(t, err)
	require.Equal(t, []string{"09:00-10:00", "10:15-11:15"}, slotTimes(slots))

	req, err := env.booking.CreateRequest(ctx, requestInput(slots[1].TimeSlot()))
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, req.Status)
	assert.Nil(t, req.TutorResponse)

	confirmed, lesson, err := env.booking.RespondToRequest(ctx, tutorID, req.ID, AcceptAction{})
	require.NoError(t, err)
	require.NotNil(t, lesson)

	assert.Equal(t, model.RequestStatusConfirmed, confirmed.Status)
	assert.Equal(t, model.AcceptedDirectly{}, confirmed.TutorResponse)
	require.NotNil(t, confirmed.LessonID)
	assert.Equal(t, lesson.ID, *confirmed.LessonID)
	require.NotNil(t, confirmed.RespondedAt)

	assert.Equal(t, model.LessonStatusConfirmed, lesson.Status)
	assert.True(t, lesson.StartTime.Equal(at(monday, "10:15")))
	assert.True(t, lesson.EndTime.Equal(at(monday, "11:15")))
	require.NotNil(t, lesson.RequestID)
	assert.Equal(t, req.ID, *lesson.RequestID)

	stored, err := env.booking.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusConfirmed, stored.Status)

	slots, err = env.slots.GenerateSlots(ctx, tutorID, monday)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.True(t, slots[0].IsAvailable)
	assert.False(t, slots[1].IsAvailable)

	assert.Contains(t, env.publisher.subjects, events.SubjectLessonCreated)
	assert.Contains(t, env.publisher.subjects, events.SubjectRequestConfirmed)
}

func TestBooking_ProposalFlow(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	wednesday := tuesday.AddDate(0, 0, 1)
	thursday := tuesday.AddDate(0, 0, 2)

	// У учителя нет правил на вторник, заявка всё равно принимается
	req, err := env.booking.CreateRequest(ctx, requestInput(slotOn(tuesday, "15:00", "16:00")))
	require.NoError(t, err)

	proposal := []model.TimeSlot{slotOn(wednesday, "09:00", "10:00"), slotOn(thursday, "09:00", "10:00")}
	proposed, lesson, err := env.booking.RespondToRequest(ctx, tutorID, req.ID, ProposeAction{Slots: proposal})
	require.NoError(t, err)
	assert.Nil(t, lesson)
	assert.Equal(t, model.RequestStatusTimeSlotsProposed, proposed.Status)
	assert.Len(t, proposed.ProposedSlots(), 2)
	require.NotNil(t, proposed.RespondedAt)

	lesson, confirmed, err := env.booking.SelectProposedSlot(ctx, studentID, req.ID, proposal[1])
	require.NoError(t, err)

	assert.Equal(t, model.RequestStatusConfirmed, confirmed.Status)
	assert.True(t, confirmed.RequestedDate.Equal(thursday))
	assert.True(t, confirmed.RequestedStartTime.Equal(at(thursday, "09:00")))
	assert.True(t, confirmed.RequestedEndTime.Equal(at(thursday, "10:00")))
	assert.Equal(t, lesson.ID, *confirmed.LessonID)

	assert.True(t, lesson.StartTime.Equal(at(thursday, "09:00")))
	assert.True(t, lesson.EndTime.Equal(at(thursday, "10:00")))
	assert.Equal(t, model.LessonStatusConfirmed, lesson.Status)
}

func TestBooking_AcceptOverlapKeepsRequestPending(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req, err := env.booking.CreateRequest(ctx, requestInput(slotOn(monday, "10:00", "11:00")))
	require.NoError(t, err)

	_, err = env.lessonSvc.CreateLesson(ctx, CreateLessonInput{
		TutorID:   tutorID,
		StudentID: 9,
		SubjectID: subjectID,
		StartTime: at(monday, "10:30"),
		EndTime:   at(monday, "11:30"),
	})
	require.NoError(t, err)

	_, _, err = env.booking.RespondToRequest(ctx, tutorID, req.ID, AcceptAction{})
	require.ErrorIs(t, err, model.ErrSlotUnavailable)

	stored, err := env.booking.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, stored.Status)
	assert.Nil(t, stored.LessonID)
	assert.Nil(t, stored.TutorResponse)
	assert.Len(t, env.lessons.active(tutorID), 1)
}

func TestBooking_ConfirmRollsBackLessonOnRequestFailure(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req, err := env.booking.CreateRequest(ctx, requestInput(slotOn(monday, "10:00", "11:00")))
	require.NoError(t, err)

	env.store.failTransition = errors.New("connection reset")

	_, _, err = env.booking.RespondToRequest(ctx, tutorID, req.ID, AcceptAction{})
	require.ErrorContains(t, err, "connection reset")

	assert.Empty(t, env.lessons.active(tutorID))
}

func TestBooking_OnlyOwnerMayAct(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req, err := env.booking.CreateRequest(ctx, requestInput(slotOn(monday, "10:00", "11:00")))
	require.NoError(t, err)

	_, _, err = env.booking.RespondToRequest(ctx, 42, req.ID, AcceptAction{})
	assert.ErrorIs(t, err, model.ErrPermissionDenied)

	// Студент не может отвечать за учителя
	_, _, err = env.booking.RespondToRequest(ctx, studentID, req.ID, RejectAction{})
	assert.ErrorIs(t, err, model.ErrPermissionDenied)

	slot := slotOn(tuesday, "09:00", "10:00")
	_, _, err = env.booking.RespondToRequest(ctx, tutorID, req.ID, ProposeAction{Slots: []model.TimeSlot{slot}})
	require.NoError(t, err)

	_, _, err = env.booking.SelectProposedSlot(ctx, 42, req.ID, slot)
	assert.ErrorIs(t, err, model.ErrPermissionDenied)

	_, err = env.booking.RejectProposals(ctx, tutorID, req.ID)
	assert.ErrorIs(t, err, model.ErrPermissionDenied)

	_, err = env.booking.CancelRequest(ctx, 42, req.ID)
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
}

func TestBooking_TerminalStatesAreImmutable(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req, err := env.booking.CreateRequest(ctx, requestInput(slotOn(monday, "10:00", "11:00")))
	require.NoError(t, err)

	rejected, _, err := env.booking.RespondToRequest(ctx, tutorID, req.ID, RejectAction{Comment: "Уезжаю"})
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusRejected, rejected.Status)
	assert.Equal(t, model.Rejected{Comment: "Уезжаю"}, rejected.TutorResponse)

	actions := []TutorAction{
		AcceptAction{},
		RejectAction{},
		ProposeAction{Slots: []model.TimeSlot{slotOn(tuesday, "09:00", "10:00")}},
	}
	for _, action := range actions {
		_, _, err = env.booking.RespondToRequest(ctx, tutorID, req.ID, action)
		assert.ErrorIs(t, err, model.ErrInvalidStateTransition, "%T", action)
	}

	_, err = env.booking.CancelRequest(ctx, studentID, req.ID)
	assert.ErrorIs(t, err, model.ErrInvalidStateTransition)

	_, _, err = env.booking.SelectProposedSlot(ctx, studentID, req.ID, slotOn(tuesday, "09:00", "10:00"))
	assert.ErrorIs(t, err, model.ErrInvalidStateTransition)

	stored, err := env.booking.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, rejected, stored)
	assert.Empty(t, env.lessons.active(tutorID))
}

func TestBooking_RepeatedAcceptFails(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req, err := env.booking.CreateRequest(ctx, requestInput(slotOn(monday, "10:00", "11:00")))
	require.NoError(t, err)

	_, _, err = env.booking.RespondToRequest(ctx, tutorID, req.ID, AcceptAction{})
	require.NoError(t, err)

	_, _, err = env.booking.RespondToRequest(ctx, tutorID, req.ID, AcceptAction{})
	assert.ErrorIs(t, err, model.ErrInvalidStateTransition)
	assert.Len(t, env.lessons.active(tutorID), 1)
}

func TestBooking_ProposalValidation(t *testing.T) {
	tooMany := make([]model.TimeSlot, 0, MaxProposedSlots+1)
	for i := 0; i <= MaxProposedSlots; i++ {
		day := tuesday.AddDate(0, 0, i)
		tooMany = append(tooMany, slotOn(day, "09:00", "10:00"))
	}

	tests := []struct {
		name  string
		slots []model.TimeSlot
	}{
		{"empty", nil},
		{"too many", tooMany},
		{"in the past", []model.TimeSlot{slotOn(testNow.AddDate(0, 0, -1), "09:00", "10:00")}},
		{"end before start", []model.TimeSlot{slotOn(tuesday, "10:00", "09:00")}},
		{"duplicate", []model.TimeSlot{slotOn(tuesday, "09:00", "10:00"), slotOn(tuesday, "09:00", "10:00")}},
		{"crosses midnight", []model.TimeSlot{{StartTime: at(tuesday, "23:30"), EndTime: at(tuesday, "23:30").Add(time.Hour)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			ctx := context.Background()

			req, err := env.booking.CreateRequest(ctx, requestInput(slotOn(monday, "10:00", "11:00")))
			require.NoError(t, err)

			_, _, err = env.booking.RespondToRequest(ctx, tutorID, req.ID, ProposeAction{Slots: tt.slots})
			assert.ErrorIs(t, err, model.ErrInvalidRange)

			stored, err := env.booking.GetRequest(ctx, req.ID)
			require.NoError(t, err)
			assert.Equal(t, model.RequestStatusPending, stored.Status)
		})
	}
}

func TestBooking_SelectMustBeProposed(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req, err := env.booking.CreateRequest(ctx, requestInput(slotOn(monday, "10:00", "11:00")))
	require.NoError(t, err)

	// До предложения выбирать нечего
	_, _, err = env.booking.SelectProposedSlot(ctx, studentID, req.ID, slotOn(tuesday, "09:00", "10:00"))
	assert.ErrorIs(t, err, model.ErrInvalidStateTransition)

	_, _, err = env.booking.RespondToRequest(ctx, tutorID, req.ID, ProposeAction{Slots: []model.TimeSlot{slotOn(tuesday, "09:00", "10:00")}})
	require.NoError(t, err)

	_, _, err = env.booking.SelectProposedSlot(ctx, studentID, req.ID, slotOn(tuesday, "09:30", "10:30"))
	assert.ErrorIs(t, err, model.ErrInvalidRange)

	stored, err := env.booking.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusTimeSlotsProposed, stored.Status)
	assert.True(t, stored.RequestedStartTime.Equal(at(monday, "10:00")))
}

func TestBooking_RejectProposalsCancels(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req, err := env.booking.CreateRequest(ctx, requestInput(slotOn(monday, "10:00", "11:00")))
	require.NoError(t, err)

	_, err = env.booking.RejectProposals(ctx, studentID, req.ID)
	assert.ErrorIs(t, err, model.ErrInvalidStateTransition)

	_, _, err = env.booking.RespondToRequest(ctx, tutorID, req.ID, ProposeAction{Slots: []model.TimeSlot{slotOn(tuesday, "09:00", "10:00")}})
	require.NoError(t, err)

	cancelled, err := env.booking.RejectProposals(ctx, studentID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusCancelled, cancelled.Status)
	assert.Len(t, cancelled.ProposedSlots(), 1)
	assert.Nil(t, cancelled.LessonID)
}

func TestBooking_CancelRequest(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	pending, err := env.booking.CreateRequest(ctx, requestInput(slotOn(monday, "10:00", "11:00")))
	require.NoError(t, err)

	cancelled, err := env.booking.CancelRequest(ctx, tutorID, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.RespondedAt)

	confirmed, err := env.booking.CreateRequest(ctx, requestInput(slotOn(monday, "12:00", "13:00")))
	require.NoError(t, err)
	_, lesson, err := env.booking.RespondToRequest(ctx, tutorID, confirmed.ID, AcceptAction{})
	require.NoError(t, err)

	_, err = env.booking.CancelRequest(ctx, studentID, confirmed.ID)
	assert.ErrorIs(t, err, model.ErrInvalidStateTransition)

	// Отмена урока не трогает заявку
	_, err = env.lessonSvc.CancelLesson(ctx, studentID, lesson.ID)
	require.NoError(t, err)

	stored, err := env.booking.GetRequest(ctx, confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusConfirmed, stored.Status)
}

func TestBooking_CreateRequestValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	self := requestInput(slotOn(monday, "10:00", "11:00"))
	self.StudentID = tutorID
	_, err := env.booking.CreateRequest(ctx, self)
	assert.ErrorIs(t, err, model.ErrPermissionDenied)

	_, err = env.booking.CreateRequest(ctx, requestInput(slotOn(testNow, "07:00", "07:30")))
	assert.ErrorIs(t, err, model.ErrInvalidRange)

	_, err = env.booking.CreateRequest(ctx, requestInput(slotOn(monday, "11:00", "10:00")))
	assert.ErrorIs(t, err, model.ErrInvalidRange)

	noSubject := requestInput(slotOn(monday, "10:00", "11:00"))
	noSubject.SubjectID = 0
	_, err = env.booking.CreateRequest(ctx, noSubject)
	assert.ErrorIs(t, err, model.ErrInvalidRange)
}

func TestBooking_CreateRequestIgnoresSlotLookupFailure(t *testing.T) {
	checker := new(MockSlotChecker)
	env := newTestEnv()
	svc := NewBookingService(env.store, memoryRequests{env.store}, env.lessons, checker, events.NopPublisher{}, metrics.New(), zap.NewNop())
	svc.now = fixedNow

	slot := slotOn(monday, "10:00", "11:00")
	checker.On("IsOpenSlot", mock.Anything, tutorID, slot).Return(false, errors.New("timeout"))

	req, err := svc.CreateRequest(context.Background(), requestInput(slot))

	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, req.Status)
	checker.AssertExpectations(t)
}

func TestBooking_ConcurrentSelectionsCreateOneLesson(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	slot := slotOn(tuesday, "09:00", "10:00")
	students := []int64{20, 21, 22, 23}

	requestIDs := make([]int64, 0, len(students))
	for _, sid := range students {
		in := requestInput(slotOn(monday, "10:00", "11:00"))
		in.StudentID = sid
		req, err := env.booking.CreateRequest(ctx, in)
		require.NoError(t, err)

		_, _, err = env.booking.RespondToRequest(ctx, tutorID, req.ID, ProposeAction{Slots: []model.TimeSlot{slot}})
		require.NoError(t, err)
		requestIDs = append(requestIDs, req.ID)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := range students {
		wg.Add(1)
		go func(studentID, requestID int64) {
			defer wg.Done()
			_, _, err := env.booking.SelectProposedSlot(ctx, studentID, requestID, slot)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, model.ErrSlotUnavailable):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(students[i], requestIDs[i])
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, len(students)-1, conflicts)
	assert.Len(t, env.lessons.active(tutorID), 1)
}

// passThroughTx выполняет fn без транзакции
type passThroughTx struct{}

func (passThroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestBooking_LostCompareAndSet(t *testing.T) {
	requests := new(MockRequestRepository)
	env := newTestEnv()
	checker := new(MockSlotChecker)
	svc := NewBookingService(passThroughTx{}, requests, env.lessons, checker, events.NopPublisher{}, metrics.New(), zap.NewNop())
	svc.now = fixedNow

	pending := &model.LessonRequest{
		ID:                 5,
		StudentID:          studentID,
		TutorID:            tutorID,
		SubjectID:          subjectID,
		RequestedDate:      monday,
		RequestedStartTime: at(monday, "10:00"),
		RequestedEndTime:   at(monday, "11:00"),
		Status:             model.RequestStatusPending,
	}
	requests.On("GetByID", mock.Anything, int64(5)).Return(pending, nil)
	requests.On("Transition", mock.Anything, mock.Anything, model.RequestStatusPending).
		Return(model.ErrInvalidStateTransition)

	req, lesson, err := svc.RespondToRequest(context.Background(), tutorID, 5, RejectAction{Comment: "нет"})

	assert.Nil(t, req)
	assert.Nil(t, lesson)
	assert.ErrorIs(t, err, model.ErrInvalidStateTransition)
	assert.Equal(t, model.RequestStatusPending, pending.Status)
	requests.AssertExpectations(t)
}

func TestBooking_ListRequests(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first, err := env.booking.CreateRequest(ctx, requestInput(slotOn(monday, "10:00", "11:00")))
	require.NoError(t, err)
	second, err := env.booking.CreateRequest(ctx, requestInput(slotOn(monday, "12:00", "13:00")))
	require.NoError(t, err)
	_, err = env.booking.CancelRequest(ctx, studentID, first.ID)
	require.NoError(t, err)

	all, err := env.booking.ListStudentRequests(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	pending, err := env.booking.ListTutorRequests(ctx, tutorID, model.RequestStatusPending, model.RequestStatusTimeSlotsProposed)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}
