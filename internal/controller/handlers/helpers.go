package handlers

import (
	"context"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendServiceError логирует ошибку сервиса и показывает пользователю её описание
func (h *Handlers) sendServiceError(ctx context.Context, b *bot.Bot, update *models.Update, action string, err error) {
	h.logger.Warn(action+" failed",
		zap.Int64("telegram_id", update.Message.From.ID),
		zap.String("text", update.Message.Text),
		zap.Error(err),
	)
	h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
}

// sendMessage отправляет сообщение с разметкой HTML и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, keyboard *models.InlineKeyboardMarkup) {
	if err := common.Notify(ctx, b, chatID, text, keyboard); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// notify уведомление второй стороне
func (h *Handlers) notify(ctx context.Context, b *bot.Bot, userID int64, text string, keyboard *models.InlineKeyboardMarkup) {
	if err := common.Notify(ctx, b, userID, text, keyboard); err != nil {
		h.logger.Warn("Failed to notify user",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}
