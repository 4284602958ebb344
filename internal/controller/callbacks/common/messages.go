package common

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/go-telegram/bot/models"
)

// RequestText карточка заявки
func RequestText(req *model.LessonRequest, loc *time.Location) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📨 <b>Заявка #%d</b>\n\n", req.ID)
	fmt.Fprintf(&sb, "👤 Студент: <code>%d</code>\n", req.StudentID)
	fmt.Fprintf(&sb, "🎓 Учитель: <code>%d</code>\n", req.TutorID)
	fmt.Fprintf(&sb, "📚 Предмет: <code>%d</code>\n", req.SubjectID)
	fmt.Fprintf(&sb, "🕐 Время: %s\n", formatting.FormatSlot(req.RequestedSlot(), loc))
	fmt.Fprintf(&sb, "📋 Статус: %s\n", formatting.GetRequestStatusDisplay(req.Status))

	if req.Message != "" {
		fmt.Fprintf(&sb, "\n💬 %s\n", html.EscapeString(req.Message))
	}

	switch resp := req.TutorResponse.(type) {
	case model.Rejected:
		if resp.Comment != "" {
			fmt.Fprintf(&sb, "\n✏️ Комментарий учителя: %s\n", html.EscapeString(resp.Comment))
		}
	case model.Proposed:
		sb.WriteString("\n🔄 Предложенное время:\n")
		for i, slot := range resp.Slots {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, formatting.FormatSlot(slot, loc))
		}
	}

	return sb.String()
}

// LessonText карточка урока
func LessonText(lesson *model.Lesson, loc *time.Location) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📖 <b>Урок #%d</b>\n\n", lesson.ID)
	fmt.Fprintf(&sb, "🕐 %s\n", formatting.FormatSlot(lesson.TimeSlot(), loc))
	fmt.Fprintf(&sb, "🎓 Учитель: <code>%d</code>\n", lesson.TutorID)
	fmt.Fprintf(&sb, "👤 Студент: <code>%d</code>\n", lesson.StudentID)
	fmt.Fprintf(&sb, "📚 Предмет: <code>%d</code>\n", lesson.SubjectID)
	if lesson.LessonType == model.LessonTypeTrial {
		sb.WriteString("🧪 Пробный урок\n")
	}
	fmt.Fprintf(&sb, "📋 Статус: %s\n", formatting.GetLessonStatusDisplay(lesson.Status))

	return sb.String()
}

// TutorRequestKeyboard кнопки учителя для заявки
func TutorRequestKeyboard(req *model.LessonRequest) *models.InlineKeyboardMarkup {
	kb := keyboard.NewBuilder()

	if req.Status == model.RequestStatusPending {
		kb.Row(
			keyboard.Button("✅ Принять", fmt.Sprintf("%s%d", AcceptRequest, req.ID)),
			keyboard.Button("🚫 Отклонить", fmt.Sprintf("%s%d", RejectRequest, req.ID)),
		)
		kb.Row(keyboard.Button("🔄 Предложить другое время", fmt.Sprintf("%s%d", ProposeRequest, req.ID)))
	}
	if req.Status.CanTransitionTo(model.RequestStatusCancelled) {
		kb.Row(keyboard.Button("❌ Отменить заявку", fmt.Sprintf("%s%d", CancelRequest, req.ID)))
	}

	return kb.Build()
}

// StudentRequestKeyboard кнопки студента: выбор предложенного времени и отмена
func StudentRequestKeyboard(req *model.LessonRequest, loc *time.Location) *models.InlineKeyboardMarkup {
	kb := keyboard.NewBuilder()

	if req.Status == model.RequestStatusTimeSlotsProposed {
		for i, slot := range req.ProposedSlots() {
			kb.Row(keyboard.Button(
				"🕐 "+formatting.FormatSlot(slot, loc),
				fmt.Sprintf("%s%d:%d", SelectSlot, req.ID, i),
			))
		}
		kb.Row(keyboard.Button("🙅 Не подходит ни одно", fmt.Sprintf("%s%d", RejectProposals, req.ID)))
	} else if req.Status.CanTransitionTo(model.RequestStatusCancelled) {
		kb.Row(keyboard.Button("❌ Отменить заявку", fmt.Sprintf("%s%d", CancelRequest, req.ID)))
	}

	return kb.Build()
}

// LessonKeyboard кнопки урока для участника viewerID
func LessonKeyboard(lesson *model.Lesson, viewerID int64) *models.InlineKeyboardMarkup {
	kb := keyboard.NewBuilder()

	if lesson.IsActive() {
		row := []models.InlineKeyboardButton{
			keyboard.Button("❌ Отменить урок", fmt.Sprintf("%s%d", CancelLesson, lesson.ID)),
		}
		if lesson.TutorID == viewerID {
			row = append(row, keyboard.Button("✔️ Проведён", fmt.Sprintf("%s%d", CompleteLesson, lesson.ID)))
		}
		kb.Row(row...)
	}

	return kb.Build()
}

// SlotCallback данные кнопки слота: prefix + args + start:end в unix-секундах
func SlotCallback(prefix string, slot model.TimeSlot, args ...int64) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	for _, a := range args {
		fmt.Fprintf(&sb, "%d:", a)
	}
	fmt.Fprintf(&sb, "%d:%d", slot.StartTime.Unix(), slot.EndTime.Unix())
	return sb.String()
}

// SlotFromArgs обратное к SlotCallback для двух последних аргументов
func SlotFromArgs(startUnix, endUnix int64, loc *time.Location) model.TimeSlot {
	return model.TimeSlot{
		StartTime: time.Unix(startUnix, 0).In(loc),
		EndTime:   time.Unix(endUnix, 0).In(loc),
	}
}

// RulesView список правил учителя с кнопками включения и удаления
func RulesView(rules []*model.AvailabilityRule) (string, *models.InlineKeyboardMarkup) {
	if len(rules) == 0 {
		return "📭 Правил доступности пока нет.\n\nДобавьте: /addrule 1 09:00 13:00 60 15", nil
	}

	var sb strings.Builder
	sb.WriteString("🗓 <b>Правила доступности</b>\n\n")

	kb := keyboard.NewBuilder()
	for _, rule := range rules {
		mark := "🟢"
		toggle := "⏸ Выключить"
		if !rule.IsAvailable {
			mark = "⚪️"
			toggle = "▶️ Включить"
		}
		fmt.Fprintf(&sb, "%s #%d %s\n", mark, rule.ID, formatting.FormatRule(rule))

		kb.Row(
			keyboard.Button(fmt.Sprintf("#%d %s", rule.ID, toggle), fmt.Sprintf("%s%d", ToggleRule, rule.ID)),
			keyboard.Button(fmt.Sprintf("#%d 🗑", rule.ID), fmt.Sprintf("%s%d", DeleteRule, rule.ID)),
		)
	}

	return sb.String(), kb.Build()
}
