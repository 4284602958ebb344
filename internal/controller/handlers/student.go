package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/student"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const (
	slotsUsage   = "❌ Формат: /slots &lt;ID учителя&gt; [дата] [ID предмета]"
	requestUsage = "❌ Формат: /request &lt;ID учителя&gt; &lt;ID предмета&gt; &lt;дата&gt; &lt;HH:MM&gt; &lt;HH:MM&gt; [сообщение]\n" +
		"Например: /request 123456 1 2025-03-10 10:00 11:00 хочу разобрать задачи"
	bookUsage = "❌ Формат: /book &lt;ID учителя&gt; &lt;ID предмета&gt; &lt;дата&gt; &lt;HH:MM&gt; [trial]"
)

// HandleSlots слоты учителя на дату. С ID предмета свободные слоты можно забронировать кнопкой
func (h *Handlers) HandleSlots(ctx context.Context, b *bot.Bot, update *models.Update, args []string) {
	chatID := update.Message.Chat.ID

	tutorID, date, subjectID, err := parseSlotsQuery(args, time.Now().In(h.location))
	if err != nil {
		h.sendMessage(ctx, b, chatID, slotsUsage, nil)
		return
	}

	slots, err := h.slotGenerator.GenerateSlots(ctx, tutorID, date)
	if err != nil {
		h.sendServiceError(ctx, b, update, "Generate slots", err)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🗓 <b>%s %s</b>, учитель <code>%d</code>\n\n",
		formatting.GetWeekdayName(model.ISOWeekday(date)),
		formatting.FormatDate(date),
		tutorID,
	)

	if len(slots) == 0 {
		sb.WriteString("📭 В этот день учитель не принимает.")
		h.sendMessage(ctx, b, chatID, sb.String(), nil)
		return
	}

	now := time.Now()
	kb := keyboard.NewBuilder()
	buttons := make([]models.InlineKeyboardButton, 0, len(slots))
	free := 0
	for _, s := range slots {
		mark := "🔴"
		if s.IsAvailable {
			mark = "🟢"
			free++
		}
		fmt.Fprintf(&sb, "%s %s\n", mark, formatting.FormatTimeRange(s.StartTime.In(h.location), s.EndTime.In(h.location)))

		if subjectID > 0 && s.IsAvailable && s.StartTime.After(now) {
			buttons = append(buttons, keyboard.Button(
				"📌 "+formatting.FormatTime(s.StartTime.In(h.location)),
				common.SlotCallback(common.BookSlot, s.TimeSlot(), tutorID, subjectID),
			))
		}
	}
	fmt.Fprintf(&sb, "\nСвободно: %d %s", free, formatting.PluralizeSlots(free))
	if subjectID == 0 && free > 0 {
		sb.WriteString("\nЧтобы записаться кнопкой, добавьте ID предмета: /slots &lt;ID учителя&gt; &lt;дата&gt; &lt;ID предмета&gt;")
	}

	h.sendMessage(ctx, b, chatID, sb.String(), kb.Grid(buttons, 3).Build())
}

// HandleRequest заявка на урок в произвольное время
func (h *Handlers) HandleRequest(ctx context.Context, b *bot.Bot, update *models.Update, args []string) {
	chatID := update.Message.Chat.ID

	in, err := parseRequest(update.Message.From.ID, args, h.location)
	if err != nil {
		h.sendMessage(ctx, b, chatID, requestUsage, nil)
		return
	}

	req, err := h.bookingService.CreateRequest(ctx, in)
	if err != nil {
		h.sendServiceError(ctx, b, update, "Create request", err)
		return
	}

	h.sendMessage(ctx, b, chatID,
		"✅ Заявка отправлена учителю. Ответ придёт сюда.\n\n"+common.RequestText(req, h.location),
		common.StudentRequestKeyboard(req, h.location),
	)

	h.notify(ctx, b, req.TutorID,
		"📨 Новая заявка на урок\n\n"+common.RequestText(req, h.location),
		common.TutorRequestKeyboard(req),
	)
}

// HandleBook прямая запись на свободный слот по времени начала
func (h *Handlers) HandleBook(ctx context.Context, b *bot.Bot, update *models.Update, args []string) {
	chatID := update.Message.Chat.ID

	parsed, err := parseBook(args, h.location)
	if err != nil {
		h.sendMessage(ctx, b, chatID, bookUsage, nil)
		return
	}

	slots, err := h.slotGenerator.GenerateSlots(ctx, parsed.TutorID, parsed.Date)
	if err != nil {
		h.sendServiceError(ctx, b, update, "Generate slots", err)
		return
	}

	start := parsed.Start.On(parsed.Date)
	var slot *model.TimeSlot
	for _, s := range slots {
		if s.StartTime.Equal(start) {
			ts := s.TimeSlot()
			slot = &ts
			break
		}
	}
	if slot == nil {
		h.sendError(ctx, b, chatID, "❌ У учителя нет слота с таким началом. Свободное время: /slots "+args[0]+" "+args[2])
		return
	}

	lesson, err := student.Book(ctx, b, h.deps, service.BookSlotInput{
		StudentID:  update.Message.From.ID,
		TutorID:    parsed.TutorID,
		SubjectID:  parsed.SubjectID,
		Slot:       *slot,
		LessonType: parsed.LessonType,
	})
	if err != nil {
		h.sendServiceError(ctx, b, update, "Book slot", err)
		return
	}

	h.logger.Info("Lesson booked from command",
		zap.Int64("lesson_id", lesson.ID),
		zap.Int64("student_id", lesson.StudentID),
	)

	h.sendMessage(ctx, b, chatID, "✅ Вы записаны!\n\n"+common.LessonText(lesson, h.location), common.LessonKeyboard(lesson, lesson.StudentID))
}

// HandleMyRequests заявки студента
func (h *Handlers) HandleMyRequests(ctx context.Context, b *bot.Bot, update *models.Update, _ []string) {
	chatID := update.Message.Chat.ID

	requests, err := h.bookingService.ListStudentRequests(ctx, update.Message.From.ID)
	if err != nil {
		h.sendServiceError(ctx, b, update, "List student requests", err)
		return
	}

	if len(requests) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 Заявок пока нет. Отправить: /request", nil)
		return
	}

	for i, req := range requests {
		if i == MaxCards {
			break
		}
		h.sendMessage(ctx, b, chatID, common.RequestText(req, h.location), common.StudentRequestKeyboard(req, h.location))
	}
}

// HandleMyLessons ближайшие уроки студента
func (h *Handlers) HandleMyLessons(ctx context.Context, b *bot.Bot, update *models.Update, _ []string) {
	from, to := h.lessonsWindow()

	lessons, err := h.lessonService.ListStudentLessons(ctx, update.Message.From.ID, from, to)
	if err != nil {
		h.sendServiceError(ctx, b, update, "List student lessons", err)
		return
	}

	h.sendLessons(ctx, b, update, lessons)
}
