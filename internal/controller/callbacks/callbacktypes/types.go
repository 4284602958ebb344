package callbacktypes

import (
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/state"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"go.uber.org/zap"
)

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	AvailabilityService *service.AvailabilityService
	SlotGenerator       *service.SlotGenerator
	LessonService       *service.LessonService
	BookingService      *service.BookingService
	StateManager        *state.Manager
	Location            *time.Location // в нём показываем и вводим время
	Logger              *zap.Logger
}
