package student

import (
	"context"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Student Request Handlers
// ========================

// HandleSelectSlot выбирает одно из предложенных учителем времён
func HandleSelectSlot(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	args, err := common.ParseArgsFromCallback(callback.Data, 2)
	if err != nil {
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}
	requestID, index := args[0], int(args[1])

	req, err := h.BookingService.GetRequest(ctx, requestID)
	if err != nil {
		hc.Fail("Select proposed slot", err, zap.Int64("request_id", requestID))
		return
	}

	proposed := req.ProposedSlots()
	if index < 0 || index >= len(proposed) {
		hc.AnswerAlert(common.ErrorMessage(model.ErrInvalidStateTransition))
		return
	}

	lesson, req, err := h.BookingService.SelectProposedSlot(ctx, hc.TelegramID, requestID, proposed[index])
	if err != nil {
		hc.Fail("Select proposed slot", err,
			zap.Int64("request_id", requestID),
			zap.Int("index", index),
		)
		return
	}

	hc.EditMessage(common.RequestText(req, h.Location), nil)
	hc.SendMessage(common.LessonText(lesson, h.Location), common.LessonKeyboard(lesson, hc.TelegramID))
	hc.Answer("✅ Урок записан")

	hc.NotifyUser(req.TutorID,
		"✅ Студент выбрал время из вашего предложения.\n\n"+common.LessonText(lesson, h.Location),
		common.LessonKeyboard(lesson, req.TutorID),
	)
}

// HandleRejectProposals отказ от всех предложенных времён
func HandleRejectProposals(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	requestID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}

	req, err := h.BookingService.RejectProposals(ctx, hc.TelegramID, requestID)
	if err != nil {
		hc.Fail("Reject proposals", err, zap.Int64("request_id", requestID))
		return
	}

	hc.EditMessage(common.RequestText(req, h.Location), nil)
	hc.Answer("Заявка закрыта")

	hc.NotifyUser(req.TutorID, "🙅 Студенту не подошло ни одно предложенное время.\n\n"+common.RequestText(req, h.Location), nil)
}
