package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay время суток в минутах от локальной полуночи (0..1440)
type TimeOfDay int

// MinutesPerDay - верхняя граница TimeOfDay, соответствует 24:00
const MinutesPerDay TimeOfDay = 24 * 60

// NewTimeOfDay создаёт время суток из часов и минут
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay разбирает строку вида "09:30". Допускается "24:00" как конец дня
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hourStr, minuteStr, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("parse time %q: %w", s, ErrInvalidRange)
	}

	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return 0, fmt.Errorf("parse hour %q: %w", hourStr, ErrInvalidRange)
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil || len(minuteStr) != 2 {
		return 0, fmt.Errorf("parse minute %q: %w", minuteStr, ErrInvalidRange)
	}

	if hour < 0 || hour > 24 || minute < 0 || minute > 59 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("time %q out of range: %w", s, ErrInvalidRange)
	}

	return NewTimeOfDay(hour, minute), nil
}

// TimeOfDayOf возвращает время суток момента t в его часовом поясе
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute())
}

func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

func (t TimeOfDay) Minute() int {
	return int(t) % 60
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Valid проверяет что значение лежит в пределах суток
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t <= MinutesPerDay
}

// On возвращает абсолютный момент этого времени суток в указанную дату.
// 24:00 превращается в полночь следующего дня
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, date.Location())
}

// DateOf обрезает момент до полуночи в его часовом поясе
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ISOWeekday возвращает день недели: 1 = понедельник, 7 = воскресенье
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Overlaps проверяет пересечение полуоткрытых интервалов [aStart, aEnd) и [bStart, bEnd)
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
