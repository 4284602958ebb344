package formatting

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

// FormatDateTime форматирует дату и время
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatTime форматирует только время
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// FormatTimeRange форматирует диапазон времени
func FormatTimeRange(start, end time.Time) string {
	return fmt.Sprintf("%s-%s", start.Format("15:04"), end.Format("15:04"))
}

// FormatSlot "Пн 03.03.2025 09:00-10:00" в часовом поясе loc
func FormatSlot(slot model.TimeSlot, loc *time.Location) string {
	start := slot.StartTime.In(loc)
	end := slot.EndTime.In(loc)
	return fmt.Sprintf("%s %s %s",
		GetWeekdayShortName(model.ISOWeekday(start)),
		FormatDate(start),
		FormatTimeRange(start, end),
	)
}

// FormatSlotShort короткая подпись для кнопки: "Пн 03.03 09:00"
func FormatSlotShort(slot model.TimeSlot, loc *time.Location) string {
	start := slot.StartTime.In(loc)
	return fmt.Sprintf("%s %s %s",
		GetWeekdayShortName(model.ISOWeekday(start)),
		start.Format("02.01"),
		FormatTime(start),
	)
}

// FormatDuration форматирует длительность в минутах
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d мин", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, mins)
}

// FormatRule "Понедельник 09:00-12:00, урок 60 мин, перерыв 15 мин"
func FormatRule(rule *model.AvailabilityRule) string {
	text := fmt.Sprintf("%s %s-%s, урок %s",
		GetWeekdayName(rule.DayOfWeek),
		rule.StartTime,
		rule.EndTime,
		FormatDuration(rule.LessonDurationMinutes),
	)
	if rule.BreakDurationMinutes > 0 {
		text += ", перерыв " + FormatDuration(rule.BreakDurationMinutes)
	}
	return text
}

// GetWeekdayName возвращает название дня недели на русском (1 = понедельник, 7 = воскресенье)
func GetWeekdayName(weekday int) string {
	names := []string{
		"Понедельник",
		"Вторник",
		"Среда",
		"Четверг",
		"Пятница",
		"Суббота",
		"Воскресенье",
	}
	if weekday >= 1 && weekday <= len(names) {
		return names[weekday-1]
	}
	return "Неизвестно"
}

// GetWeekdayShortName возвращает краткое название дня недели на русском
func GetWeekdayShortName(weekday int) string {
	names := []string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}
	if weekday >= 1 && weekday <= len(names) {
		return names[weekday-1]
	}
	return "?"
}
