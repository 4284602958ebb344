package common

import (
	"context"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandlerContext содержит общие данные для обработки callback.
// Telegram ID нажавшего и есть ID учителя или студента
type HandlerContext struct {
	Ctx        context.Context
	Bot        *bot.Bot
	Callback   *models.CallbackQuery
	Handler    *callbacktypes.Handler
	Message    *models.Message
	TelegramID int64
	ChatID     int64
}

// NewHandlerContext создаёт новый контекст обработчика
func NewHandlerContext(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
) *HandlerContext {
	msg := GetMessageFromCallback(callback)
	var chatID int64
	if msg != nil {
		chatID = msg.Chat.ID
	}

	return &HandlerContext{
		Ctx:        ctx,
		Bot:        b,
		Callback:   callback,
		Handler:    h,
		Message:    msg,
		TelegramID: callback.From.ID,
		ChatID:     chatID,
	}
}

// Answer отвечает на callback query
func (hc *HandlerContext) Answer(text string) {
	AnswerCallback(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// AnswerAlert отвечает на callback query с alert
func (hc *HandlerContext) AnswerAlert(text string) {
	AnswerCallbackAlert(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// Fail логирует ошибку сервиса и показывает пользователю её описание
func (hc *HandlerContext) Fail(action string, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.Error(err),
		zap.Int64("telegram_id", hc.TelegramID),
		zap.String("data", hc.Callback.Data),
	)
	hc.Handler.Logger.Warn(action+" failed", fields...)
	hc.AnswerAlert(ErrorMessage(err))
}

// EditMessage редактирует сообщение
func (hc *HandlerContext) EditMessage(text string, keyboard *models.InlineKeyboardMarkup) error {
	if hc.Message == nil {
		return ErrNoMessage
	}

	params := &bot.EditMessageTextParams{
		ChatID:    hc.ChatID,
		MessageID: hc.Message.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	_, err := hc.Bot.EditMessageText(hc.Ctx, params)

	// Игнорируем ошибку "message is not modified" - это не настоящая ошибка
	if IsMessageNotModifiedError(err) {
		return nil
	}

	return err
}

// EditMessageText редактирует только текст сообщения, убирая кнопки
func (hc *HandlerContext) EditMessageText(text string) error {
	return hc.EditMessage(text, nil)
}

// SendMessage отправляет новое сообщение
func (hc *HandlerContext) SendMessage(text string, keyboard *models.InlineKeyboardMarkup) error {
	return Notify(hc.Ctx, hc.Bot, hc.ChatID, text, keyboard)
}

// NotifyUser уведомляет другую сторону; ошибка отправки не ломает обработку
func (hc *HandlerContext) NotifyUser(userID int64, text string, keyboard *models.InlineKeyboardMarkup) {
	if err := Notify(hc.Ctx, hc.Bot, userID, text, keyboard); err != nil {
		hc.Handler.Logger.Warn("Failed to notify user",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}

// ClearState очищает состояние пользователя
func (hc *HandlerContext) ClearState() {
	hc.Handler.StateManager.ClearState(hc.TelegramID)
}

// SetState устанавливает состояние пользователя
func (hc *HandlerContext) SetState(s state.UserState) {
	hc.Handler.StateManager.SetState(hc.TelegramID, s)
}

// SetData устанавливает данные в state
func (hc *HandlerContext) SetData(key string, value any) {
	hc.Handler.StateManager.SetData(hc.TelegramID, key, value)
}

// GetData получает данные из state
func (hc *HandlerContext) GetData(key string) (any, bool) {
	return hc.Handler.StateManager.GetData(hc.TelegramID, key)
}
