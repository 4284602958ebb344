package formatting

import (
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestGetWeekdayName_ISO(t *testing.T) {
	assert.Equal(t, "Понедельник", GetWeekdayName(1))
	assert.Equal(t, "Воскресенье", GetWeekdayName(7))
	assert.Equal(t, "Неизвестно", GetWeekdayName(0))
	assert.Equal(t, "?", GetWeekdayShortName(8))
}

func TestFormatSlot_InLocation(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	// 2025-03-03 понедельник, 06:00 UTC = 09:00 MSK
	slot := model.TimeSlot{
		StartTime: time.Date(2025, 3, 3, 6, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 3, 3, 7, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, "Пн 03.03.2025 09:00-10:00", FormatSlot(slot, loc))
	assert.Equal(t, "Пн 03.03 09:00", FormatSlotShort(slot, loc))
}

func TestFormatRule(t *testing.T) {
	rule := &model.AvailabilityRule{
		DayOfWeek:             3,
		StartTime:             model.NewTimeOfDay(9, 0),
		EndTime:               model.MinutesPerDay,
		LessonDurationMinutes: 90,
	}
	assert.Equal(t, "Среда 09:00-24:00, урок 1 ч 30 мин", FormatRule(rule))

	rule.BreakDurationMinutes = 15
	assert.Equal(t, "Среда 09:00-24:00, урок 1 ч 30 мин, перерыв 15 мин", FormatRule(rule))
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{1, "урок"},
		{2, "урока"},
		{5, "уроков"},
		{11, "уроков"},
		{21, "урок"},
		{22, "урока"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PluralizeLessons(tt.count), "count=%d", tt.count)
	}
	assert.Equal(t, "заявки", PluralizeRequests(3))
}

func TestStatusDisplay(t *testing.T) {
	assert.Equal(t, "✅ Подтверждён", GetLessonStatusDisplay(model.LessonStatusConfirmed).String())
	assert.Equal(t, "🔄 Предложено другое время", GetRequestStatusDisplay(model.RequestStatusTimeSlotsProposed).String())
	assert.Equal(t, "❓", GetRequestStatusDisplay("bogus").Emoji)
}
