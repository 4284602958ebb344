package common

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Helper functions для всех callback handlers

// AnswerCallback отвечает на callback query (без alert)
func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       false,
	})
}

// AnswerCallbackAlert отвечает на callback query с alert (всплывающее окно)
func AnswerCallbackAlert(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
}

// GetMessageFromCallback извлекает сообщение из callback query
func GetMessageFromCallback(callback *models.CallbackQuery) *models.Message {
	if callback.Message.Message != nil {
		return callback.Message.Message
	}
	return nil
}

// ParseIDFromCallback извлекает ID из callback data
// Например: "accept_req:123" -> 123
func ParseIDFromCallback(data string) (int64, error) {
	args, err := ParseArgsFromCallback(data, 1)
	if err != nil {
		return 0, err
	}
	return args[0], nil
}

// ParseArgsFromCallback извлекает n числовых аргументов после префикса
// Например: "propose_pick:12:1741000000:1741003600" -> [12 1741000000 1741003600]
func ParseArgsFromCallback(data string, n int) ([]int64, error) {
	parts := strings.Split(data, ":")
	if len(parts) != n+1 {
		return nil, fmt.Errorf("callback %q: %w", data, ErrInvalidFormat)
	}

	args := make([]int64, 0, n)
	for _, part := range parts[1:] {
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("callback %q: %w", data, ErrInvalidFormat)
		}
		args = append(args, v)
	}
	return args, nil
}

// Notify отправляет уведомление другой стороне. Ошибка только логируется вызывающим
func Notify(ctx context.Context, b *bot.Bot, chatID int64, text string, keyboard *models.InlineKeyboardMarkup) error {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	_, err := b.SendMessage(ctx, params)
	return err
}

// IsMessageNotModifiedError проверяет ошибку Telegram при повторном редактировании тем же текстом
func IsMessageNotModifiedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
