package student

import (
	"context"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleBookSlot прямая запись на свободный слот из списка /slots
func HandleBookSlot(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	args, err := common.ParseArgsFromCallback(callback.Data, 4)
	if err != nil {
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}

	in := service.BookSlotInput{
		StudentID: hc.TelegramID,
		TutorID:   args[0],
		SubjectID: args[1],
		Slot:      common.SlotFromArgs(args[2], args[3], h.Location),
	}

	lesson, err := Book(ctx, b, h, in)
	if err != nil {
		hc.Fail("Book slot", err, zap.Int64("tutor_id", in.TutorID))
		return
	}

	hc.SendMessage("✅ Вы записаны!\n\n"+common.LessonText(lesson, h.Location), common.LessonKeyboard(lesson, hc.TelegramID))
	hc.Answer("✅ Урок записан")
}

// Book записывает студента и уведомляет учителя. Используется и командой /book
func Book(ctx context.Context, b *bot.Bot, h *callbacktypes.Handler, in service.BookSlotInput) (*model.Lesson, error) {
	lesson, err := h.LessonService.BookSlot(ctx, in)
	if err != nil {
		return nil, err
	}

	err = common.Notify(ctx, b, lesson.TutorID,
		"📌 Новая запись на урок.\n\n"+common.LessonText(lesson, h.Location),
		common.LessonKeyboard(lesson, lesson.TutorID),
	)
	if err != nil {
		h.Logger.Warn("Failed to notify tutor", zap.Int64("tutor_id", lesson.TutorID), zap.Error(err))
	}

	return lesson, nil
}
