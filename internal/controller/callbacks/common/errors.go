package common

import (
	"errors"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

// Общие ошибки для обработчиков
var (
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrRuleOverlap):
		return "❌ Окно пересекается с другим активным правилом этого дня"
	case errors.Is(err, model.ErrOverlap):
		return "❌ Это время уже занято. Выберите другое"
	case errors.Is(err, model.ErrInvalidStateTransition):
		return "❌ Заявка или урок уже в другом статусе"
	case errors.Is(err, model.ErrPermissionDenied):
		return "❌ У вас нет доступа к этому действию"
	case errors.Is(err, model.ErrRuleNotFound):
		return "❌ Правило не найдено"
	case errors.Is(err, model.ErrLessonNotFound):
		return "❌ Урок не найден"
	case errors.Is(err, model.ErrRequestNotFound):
		return "❌ Заявка не найдена"
	case errors.Is(err, model.ErrInvalidRange):
		return "❌ Неверное время или параметры"
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат данных"
	default:
		return "❌ Произошла ошибка"
	}
}
