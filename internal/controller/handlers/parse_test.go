package handlers

import (
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var msk = time.FixedZone("MSK", 3*60*60)

func TestSplitCommand(t *testing.T) {
	cmd, args := splitCommand("/Request@tutor_bot  1 2   hello")
	assert.Equal(t, "/request", cmd)
	assert.Equal(t, []string{"1", "2", "hello"}, args)

	cmd, args = splitCommand("   ")
	assert.Empty(t, cmd)
	assert.Empty(t, args)
}

func TestParseAddRule(t *testing.T) {
	in, err := parseAddRule(7, []string{"пн", "09:00", "24:00", "60", "15"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), in.TutorID)
	assert.Equal(t, 1, in.DayOfWeek)
	assert.Equal(t, model.NewTimeOfDay(9, 0), in.StartTime)
	assert.Equal(t, model.MinutesPerDay, in.EndTime)
	assert.Equal(t, 60, in.LessonDurationMinutes)
	assert.Equal(t, 15, in.BreakDurationMinutes)

	in, err = parseAddRule(7, []string{"7", "10:00", "12:00", "45"})
	require.NoError(t, err)
	assert.Equal(t, 7, in.DayOfWeek)
	assert.Zero(t, in.BreakDurationMinutes)
}

func TestParseAddRule_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"too few", []string{"1", "09:00", "10:00"}},
		{"weekday zero", []string{"0", "09:00", "10:00", "60"}},
		{"weekday eight", []string{"8", "09:00", "10:00", "60"}},
		{"bad start", []string{"1", "9", "10:00", "60"}},
		{"bad end", []string{"1", "09:00", "25:00", "60"}},
		{"bad lesson", []string{"1", "09:00", "10:00", "hour"}},
		{"bad break", []string{"1", "09:00", "10:00", "60", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAddRule(7, tt.args)
			assert.ErrorIs(t, err, model.ErrInvalidRange)
		})
	}
}

func TestParseEditRule(t *testing.T) {
	ruleID, in, err := parseEditRule(7, []string{"12", "ср", "10:00", "14:00", "90"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), ruleID)
	assert.Equal(t, 3, in.DayOfWeek)
	assert.Equal(t, 90, in.LessonDurationMinutes)

	_, _, err = parseEditRule(7, []string{"0", "ср", "10:00", "14:00", "90"})
	assert.ErrorIs(t, err, model.ErrInvalidRange)

	_, _, err = parseEditRule(7, nil)
	assert.ErrorIs(t, err, model.ErrInvalidRange)
}

func TestParseRequest(t *testing.T) {
	in, err := parseRequest(2, []string{"1", "3", "2025-03-10", "10:00", "11:30", "хочу", "разобрать", "задачи"}, msk)
	require.NoError(t, err)

	assert.Equal(t, int64(2), in.StudentID)
	assert.Equal(t, int64(1), in.TutorID)
	assert.Equal(t, int64(3), in.SubjectID)
	assert.Equal(t, "хочу разобрать задачи", in.Message)
	assert.True(t, in.Slot.StartTime.Equal(time.Date(2025, 3, 10, 10, 0, 0, 0, msk)))
	assert.True(t, in.Slot.EndTime.Equal(time.Date(2025, 3, 10, 11, 30, 0, 0, msk)))

	in, err = parseRequest(2, []string{"1", "3", "10.03.2025", "23:00", "24:00"}, msk)
	require.NoError(t, err)
	assert.Empty(t, in.Message)
	assert.True(t, in.Slot.EndTime.Equal(time.Date(2025, 3, 11, 0, 0, 0, 0, msk)))
	require.NoError(t, in.Slot.Validate())

	_, err = parseRequest(2, []string{"1", "3", "2025-02-30", "10:00", "11:00"}, msk)
	assert.ErrorIs(t, err, model.ErrInvalidRange)

	_, err = parseRequest(2, []string{"-1", "3", "2025-03-10", "10:00", "11:00"}, msk)
	assert.ErrorIs(t, err, model.ErrInvalidRange)
}

func TestParseBook(t *testing.T) {
	got, err := parseBook([]string{"1", "3", "2025-03-10", "10:00", "TRIAL"}, msk)
	require.NoError(t, err)
	assert.Equal(t, model.LessonTypeTrial, got.LessonType)
	assert.Equal(t, model.NewTimeOfDay(10, 0), got.Start)

	got, err = parseBook([]string{"1", "3", "2025-03-10", "10:00"}, msk)
	require.NoError(t, err)
	assert.Equal(t, model.LessonTypeRegular, got.LessonType)

	_, err = parseBook([]string{"1", "3", "2025-03-10", "10:00", "group"}, msk)
	assert.ErrorIs(t, err, model.ErrInvalidRange)
}

func TestParseSlotsQuery(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, msk)

	tutorID, date, subjectID, err := parseSlotsQuery([]string{"5"}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(5), tutorID)
	assert.True(t, date.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, msk)))
	assert.Zero(t, subjectID)

	_, date, subjectID, err = parseSlotsQuery([]string{"5", "2025-03-03", "9"}, now)
	require.NoError(t, err)
	assert.Equal(t, 3, date.Day())
	assert.Equal(t, int64(9), subjectID)

	_, _, _, err = parseSlotsQuery(nil, now)
	assert.ErrorIs(t, err, model.ErrInvalidRange)
}
