package formatting

import "github.com/Freeeeeet/tutor_scheduler/internal/model"

// StatusDisplay представляет отображение статуса
type StatusDisplay struct {
	Emoji string
	Text  string
}

func (d StatusDisplay) String() string {
	return d.Emoji + " " + d.Text
}

// GetLessonStatusDisplay возвращает emoji и текст для статуса урока
func GetLessonStatusDisplay(status model.LessonStatus) StatusDisplay {
	displays := map[model.LessonStatus]StatusDisplay{
		model.LessonStatusUpcoming:  {"🟢", "Запланирован"},
		model.LessonStatusConfirmed: {"✅", "Подтверждён"},
		model.LessonStatusCompleted: {"✔️", "Проведён"},
		model.LessonStatusCancelled: {"❌", "Отменён"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Неизвестно"}
}

// GetRequestStatusDisplay возвращает emoji и текст для статуса заявки
func GetRequestStatusDisplay(status model.RequestStatus) StatusDisplay {
	displays := map[model.RequestStatus]StatusDisplay{
		model.RequestStatusPending:           {"⏳", "Ожидает ответа"},
		model.RequestStatusTimeSlotsProposed: {"🔄", "Предложено другое время"},
		model.RequestStatusConfirmed:         {"✅", "Подтверждена"},
		model.RequestStatusRejected:          {"🚫", "Отклонена"},
		model.RequestStatusCancelled:         {"❌", "Отменена"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Неизвестно"}
}
