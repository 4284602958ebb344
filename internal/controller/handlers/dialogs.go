package handlers

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/tutor"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MaxRejectCommentLength длина комментария к отказу в символах
const MaxRejectCommentLength = 500

// handleRejectComment учитель прислал комментарий к отказу
func (h *Handlers) handleRejectComment(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	requestID, ok := h.stateManager.GetInt64(telegramID, state.KeyRequestID)
	if !ok {
		h.stateManager.ClearState(telegramID)
		h.sendError(ctx, b, chatID, "❌ Диалог устарел. Откройте заявку заново через /requests")
		return
	}

	comment := strings.TrimSpace(update.Message.Text)
	if utf8.RuneCountInString(comment) > MaxRejectCommentLength {
		h.sendError(ctx, b, chatID, "❌ Комментарий слишком длинный. Максимум 500 символов, попробуйте короче.")
		return
	}

	req, err := tutor.Reject(ctx, b, h.deps, telegramID, requestID, comment)
	if err != nil {
		h.stateManager.ClearState(telegramID)
		h.sendServiceError(ctx, b, update, "Reject request", err)
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, chatID, "🚫 Заявка отклонена.\n\n"+common.RequestText(req, h.location), nil)
}
