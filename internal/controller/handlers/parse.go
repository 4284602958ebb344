package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
)

// splitCommand "/Request@my_bot 1 2" -> "/request", ["1", "2"]
func splitCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}

	cmd, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(cmd), fields[1:]
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("parse id %q: %w", s, model.ErrInvalidRange)
	}
	return id, nil
}

// parseDate принимает 2025-03-10 и 10.03.2025, дата в часовом поясе loc
func parseDate(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{time.DateOnly, "02.01.2006"} {
		if d, err := time.ParseInLocation(layout, s, loc); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: %w", s, model.ErrInvalidRange)
}

var weekdayAliases = map[string]int{
	"пн": 1, "вт": 2, "ср": 3, "чт": 4, "пт": 5, "сб": 6, "вс": 7,
	"mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6, "sun": 7,
}

// parseWeekday 1..7 или сокращение (пн, mon)
func parseWeekday(s string) (int, error) {
	if day, ok := weekdayAliases[strings.ToLower(s)]; ok {
		return day, nil
	}
	day, err := strconv.Atoi(s)
	if err != nil || day < 1 || day > 7 {
		return 0, fmt.Errorf("parse weekday %q: %w", s, model.ErrInvalidRange)
	}
	return day, nil
}

// parseSlot интервал from-to в дату date
func parseSlot(date time.Time, from, to string) (model.TimeSlot, error) {
	start, err := model.ParseTimeOfDay(from)
	if err != nil {
		return model.TimeSlot{}, err
	}
	end, err := model.ParseTimeOfDay(to)
	if err != nil {
		return model.TimeSlot{}, err
	}

	return model.TimeSlot{StartTime: start.On(date), EndTime: end.On(date)}, nil
}

// parseAddRule /addrule <день> <HH:MM> <HH:MM> <урок, мин> [перерыв, мин]
func parseAddRule(tutorID int64, args []string) (service.AddRuleInput, error) {
	if len(args) != 4 && len(args) != 5 {
		return service.AddRuleInput{}, fmt.Errorf("addrule expects 4 or 5 arguments, got %d: %w", len(args), model.ErrInvalidRange)
	}

	day, err := parseWeekday(args[0])
	if err != nil {
		return service.AddRuleInput{}, err
	}
	start, err := model.ParseTimeOfDay(args[1])
	if err != nil {
		return service.AddRuleInput{}, err
	}
	end, err := model.ParseTimeOfDay(args[2])
	if err != nil {
		return service.AddRuleInput{}, err
	}
	lesson, err := strconv.Atoi(args[3])
	if err != nil {
		return service.AddRuleInput{}, fmt.Errorf("parse lesson duration %q: %w", args[3], model.ErrInvalidRange)
	}

	breakMinutes := 0
	if len(args) == 5 {
		breakMinutes, err = strconv.Atoi(args[4])
		if err != nil {
			return service.AddRuleInput{}, fmt.Errorf("parse break duration %q: %w", args[4], model.ErrInvalidRange)
		}
	}

	return service.AddRuleInput{
		TutorID:               tutorID,
		DayOfWeek:             day,
		StartTime:             start,
		EndTime:               end,
		LessonDurationMinutes: lesson,
		BreakDurationMinutes:  breakMinutes,
	}, nil
}

// parseEditRule /editrule <ID правила> <день> <HH:MM> <HH:MM> <урок, мин> [перерыв, мин]
func parseEditRule(tutorID int64, args []string) (int64, service.AddRuleInput, error) {
	if len(args) < 1 {
		return 0, service.AddRuleInput{}, fmt.Errorf("editrule expects rule id: %w", model.ErrInvalidRange)
	}

	ruleID, err := parseID(args[0])
	if err != nil {
		return 0, service.AddRuleInput{}, err
	}

	in, err := parseAddRule(tutorID, args[1:])
	if err != nil {
		return 0, service.AddRuleInput{}, err
	}

	return ruleID, in, nil
}

// parseRequest /request <tutorID> <subjectID> <дата> <HH:MM> <HH:MM> [сообщение]
func parseRequest(studentID int64, args []string, loc *time.Location) (service.CreateRequestInput, error) {
	if len(args) < 5 {
		return service.CreateRequestInput{}, fmt.Errorf("request expects at least 5 arguments, got %d: %w", len(args), model.ErrInvalidRange)
	}

	tutorID, err := parseID(args[0])
	if err != nil {
		return service.CreateRequestInput{}, err
	}
	subjectID, err := parseID(args[1])
	if err != nil {
		return service.CreateRequestInput{}, err
	}
	date, err := parseDate(args[2], loc)
	if err != nil {
		return service.CreateRequestInput{}, err
	}
	slot, err := parseSlot(date, args[3], args[4])
	if err != nil {
		return service.CreateRequestInput{}, err
	}

	return service.CreateRequestInput{
		StudentID: studentID,
		TutorID:   tutorID,
		SubjectID: subjectID,
		Slot:      slot,
		Message:   strings.Join(args[5:], " "),
	}, nil
}

// bookArgs разобранная команда /book
type bookArgs struct {
	TutorID    int64
	SubjectID  int64
	Date       time.Time
	Start      model.TimeOfDay
	LessonType model.LessonType
}

// parseBook /book <tutorID> <subjectID> <дата> <HH:MM> [trial]
func parseBook(args []string, loc *time.Location) (bookArgs, error) {
	if len(args) != 4 && len(args) != 5 {
		return bookArgs{}, fmt.Errorf("book expects 4 or 5 arguments, got %d: %w", len(args), model.ErrInvalidRange)
	}

	var (
		out bookArgs
		err error
	)
	if out.TutorID, err = parseID(args[0]); err != nil {
		return bookArgs{}, err
	}
	if out.SubjectID, err = parseID(args[1]); err != nil {
		return bookArgs{}, err
	}
	if out.Date, err = parseDate(args[2], loc); err != nil {
		return bookArgs{}, err
	}
	if out.Start, err = model.ParseTimeOfDay(args[3]); err != nil {
		return bookArgs{}, err
	}

	out.LessonType = model.LessonTypeRegular
	if len(args) == 5 {
		if strings.ToLower(args[4]) != string(model.LessonTypeTrial) {
			return bookArgs{}, fmt.Errorf("unknown lesson type %q: %w", args[4], model.ErrInvalidRange)
		}
		out.LessonType = model.LessonTypeTrial
	}

	return out, nil
}

// parseSlotsQuery /slots <tutorID> [дата] [subjectID]; без даты - сегодня
func parseSlotsQuery(args []string, now time.Time) (tutorID int64, date time.Time, subjectID int64, err error) {
	if len(args) < 1 || len(args) > 3 {
		return 0, time.Time{}, 0, fmt.Errorf("slots expects 1 to 3 arguments, got %d: %w", len(args), model.ErrInvalidRange)
	}

	if tutorID, err = parseID(args[0]); err != nil {
		return 0, time.Time{}, 0, err
	}

	date = model.DateOf(now)
	if len(args) >= 2 {
		if date, err = parseDate(args[1], now.Location()); err != nil {
			return 0, time.Time{}, 0, err
		}
	}
	if len(args) == 3 {
		if subjectID, err = parseID(args[2]); err != nil {
			return 0, time.Time{}, 0, err
		}
	}

	return tutorID, date, subjectID, nil
}
