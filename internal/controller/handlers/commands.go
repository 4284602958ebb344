package handlers

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 <b>Справка по командам</b>\n\n" +
	"<b>Для учителей</b>\n" +
	"/addrule &lt;день&gt; &lt;HH:MM&gt; &lt;HH:MM&gt; &lt;урок, мин&gt; [перерыв, мин] - добавить окно доступности\n" +
	"   например: /addrule пн 09:00 13:00 60 15\n" +
	"/editrule &lt;ID&gt; &lt;день&gt; &lt;HH:MM&gt; &lt;HH:MM&gt; &lt;урок, мин&gt; [перерыв, мин] - изменить правило\n" +
	"/rules - правила доступности\n" +
	"/requests - заявки, ожидающие ответа\n" +
	"/lessons - ближайшие уроки\n\n" +
	"<b>Для студентов</b>\n" +
	"/slots &lt;ID учителя&gt; [дата] [ID предмета] - свободное время\n" +
	"/request &lt;ID учителя&gt; &lt;ID предмета&gt; &lt;дата&gt; &lt;HH:MM&gt; &lt;HH:MM&gt; [сообщение] - заявка на урок\n" +
	"/book &lt;ID учителя&gt; &lt;ID предмета&gt; &lt;дата&gt; &lt;HH:MM&gt; [trial] - записаться на свободный слот\n" +
	"/myrequests - мои заявки\n" +
	"/mylessons - мои уроки\n\n" +
	"/cancel - прервать текущий диалог\n" +
	"Дата: 2025-03-10 или 10.03.2025"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update, _ []string) {
	user := update.Message.From

	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Это бот для записи на уроки к репетиторам.\n"+
			"Ваш ID: <code>%d</code>. Студенты указывают ID учителя в командах /slots, /request и /book.\n\n",
		html.EscapeString(user.FirstName),
		user.ID,
	)

	h.sendMessage(ctx, b, update.Message.Chat.ID, welcomeText+helpText, nil)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update, _ []string) {
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText, nil)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update, _ []string) {
	telegramID := update.Message.From.ID

	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.", nil)
		return
	}

	// Очищаем состояние
	h.stateManager.ClearState(telegramID)

	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.", nil)
}

// HandleTextMessage единая точка входа для текста: команды и шаги диалогов
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	telegramID := update.Message.From.ID

	if strings.HasPrefix(update.Message.Text, "/") {
		cmd, args := splitCommand(update.Message.Text)
		handler, ok := h.commands[cmd]
		if !ok {
			h.sendMessage(ctx, b, update.Message.Chat.ID, "❓ Неизвестная команда. Список команд: /help", nil)
			return
		}

		h.logger.Debug("Command received",
			zap.Int64("telegram_id", telegramID),
			zap.String("command", cmd),
		)
		handler(ctx, b, update, args)
		return
	}

	currentState := h.stateManager.GetState(telegramID)

	// Обрабатываем в зависимости от состояния
	switch currentState {
	case state.StateNone:
		h.logger.Debug("No active state, ignoring message",
			zap.Int64("telegram_id", telegramID))
	case state.StateRejectComment:
		h.handleRejectComment(ctx, b, update)
	default:
		h.logger.Warn("Unknown state", zap.String("state", string(currentState)))
		h.stateManager.ClearState(telegramID)
	}
}
