package callbacks

import (
	"context"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Handlers for both sides
// ========================

// counterparty вторая сторона урока или заявки
func counterparty(tutorID, studentID, actorID int64) int64 {
	if actorID == tutorID {
		return studentID
	}
	return tutorID
}

// HandleCancelRequest отмена заявки учителем или студентом
func HandleCancelRequest(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	requestID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}

	req, err := h.BookingService.CancelRequest(ctx, hc.TelegramID, requestID)
	if err != nil {
		hc.Fail("Cancel request", err, zap.Int64("request_id", requestID))
		return
	}

	hc.EditMessage(common.RequestText(req, h.Location), nil)
	hc.Answer("❌ Заявка отменена")

	hc.NotifyUser(counterparty(req.TutorID, req.StudentID, hc.TelegramID),
		"❌ Заявка отменена другой стороной.\n\n"+common.RequestText(req, h.Location), nil)
}

// HandleCancelLesson отмена урока любым участником
func HandleCancelLesson(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	lessonID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}

	lesson, err := h.LessonService.CancelLesson(ctx, hc.TelegramID, lessonID)
	if err != nil {
		hc.Fail("Cancel lesson", err, zap.Int64("lesson_id", lessonID))
		return
	}

	hc.EditMessage(common.LessonText(lesson, h.Location), nil)
	hc.Answer("❌ Урок отменён, время освободилось")

	hc.NotifyUser(counterparty(lesson.TutorID, lesson.StudentID, hc.TelegramID),
		"❌ Урок отменён другой стороной.\n\n"+common.LessonText(lesson, h.Location), nil)
}

// HandleCompleteLesson учитель отмечает урок проведённым
func HandleCompleteLesson(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	lessonID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}

	lesson, err := h.LessonService.CompleteLesson(ctx, hc.TelegramID, lessonID)
	if err != nil {
		hc.Fail("Complete lesson", err, zap.Int64("lesson_id", lessonID))
		return
	}

	hc.EditMessage(common.LessonText(lesson, h.Location), nil)
	hc.Answer("✔️ Урок проведён")
}
