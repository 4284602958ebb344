package controller

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/handlers"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/state"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	availabilityService *service.AvailabilityService,
	slotGenerator *service.SlotGenerator,
	lessonService *service.LessonService,
	bookingService *service.BookingService,
	location *time.Location,
	logger *zap.Logger,
) *BotController {
	// Создаём менеджер состояний
	stateManager := state.NewManager()

	// Создаём callback handler с зависимостями
	callbackHandler := callbacks.NewHandler(
		availabilityService,
		slotGenerator,
		lessonService,
		bookingService,
		stateManager,
		location,
		logger,
	)

	// Команды используют те же зависимости
	cmdHandlers := handlers.NewHandlers(callbackHandler.Handler)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	// Команды и шаги диалогов разбирает один обработчик текста
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "slots", Description: "🗓 Свободное время учителя"},
		{Command: "request", Description: "📨 Заявка на урок"},
		{Command: "book", Description: "📌 Записаться на свободный слот"},
		{Command: "myrequests", Description: "📋 Мои заявки"},
		{Command: "mylessons", Description: "📅 Мои уроки"},
		{Command: "addrule", Description: "➕ Добавить окно доступности (учитель)"},
		{Command: "editrule", Description: "✏️ Изменить окно доступности (учитель)"},
		{Command: "rules", Description: "⚙️ Правила доступности (учитель)"},
		{Command: "requests", Description: "📥 Заявки учеников (учитель)"},
		{Command: "lessons", Description: "🗓 Мои уроки (учитель)"},
		{Command: "cancel", Description: "✖️ Прервать диалог"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
