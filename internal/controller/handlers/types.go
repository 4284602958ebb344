package handlers

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/state"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type commandFunc func(ctx context.Context, b *bot.Bot, update *models.Update, args []string)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	availabilityService *service.AvailabilityService
	slotGenerator       *service.SlotGenerator
	lessonService       *service.LessonService
	bookingService      *service.BookingService
	stateManager        *state.Manager
	location            *time.Location
	logger              *zap.Logger

	// deps те же зависимости для общих с callbacks действий
	deps     *callbacktypes.Handler
	commands map[string]commandFunc
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(deps *callbacktypes.Handler) *Handlers {
	h := &Handlers{
		availabilityService: deps.AvailabilityService,
		slotGenerator:       deps.SlotGenerator,
		lessonService:       deps.LessonService,
		bookingService:      deps.BookingService,
		stateManager:        deps.StateManager,
		location:            deps.Location,
		logger:              deps.Logger,
		deps:                deps,
	}

	h.commands = map[string]commandFunc{
		"/start":  h.HandleStart,
		"/help":   h.HandleHelp,
		"/cancel": h.HandleCancel,

		// Учитель
		"/addrule":  h.HandleAddRule,
		"/editrule": h.HandleEditRule,
		"/rules":    h.HandleRules,
		"/requests": h.HandleRequests,
		"/lessons":  h.HandleLessons,

		// Студент
		"/slots":      h.HandleSlots,
		"/request":    h.HandleRequest,
		"/book":       h.HandleBook,
		"/myrequests": h.HandleMyRequests,
		"/mylessons":  h.HandleMyLessons,
	}

	return h
}
