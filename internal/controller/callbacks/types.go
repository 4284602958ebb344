package callbacks

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

// Handler обертка для callbacktypes.Handler с методами
type Handler struct {
	*callbacktypes.Handler
}

// NewHandler создаёт новый обработчик callbacks с зависимостями
func NewHandler(
	availabilityService *service.AvailabilityService,
	slotGenerator *service.SlotGenerator,
	lessonService *service.LessonService,
	bookingService *service.BookingService,
	stateManager *state.Manager,
	location *time.Location,
	logger *zap.Logger,
) *Handler {
	inner := &callbacktypes.Handler{
		AvailabilityService: availabilityService,
		SlotGenerator:       slotGenerator,
		LessonService:       lessonService,
		BookingService:      bookingService,
		StateManager:        stateManager,
		Location:            location,
		Logger:              logger,
	}
	return &Handler{Handler: inner}
}

// HandleCallbackQuery - главный обработчик callback queries
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery

	h.Logger.Debug("Callback received",
		zap.String("data", callback.Data),
		zap.Int64("user_id", callback.From.ID),
	)

	Route(ctx, b, callback, h.Handler)
}
