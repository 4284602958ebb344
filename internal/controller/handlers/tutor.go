package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const addRuleUsage = "❌ Формат: /addrule &lt;день 1-7 или пн..вс&gt; &lt;HH:MM&gt; &lt;HH:MM&gt; &lt;урок, мин&gt; [перерыв, мин]\n" +
	"Например: /addrule пн 09:00 13:00 60 15"

// HandleAddRule добавляет еженедельное окно доступности
func (h *Handlers) HandleAddRule(ctx context.Context, b *bot.Bot, update *models.Update, args []string) {
	chatID := update.Message.Chat.ID

	in, err := parseAddRule(update.Message.From.ID, args)
	if err != nil {
		h.sendMessage(ctx, b, chatID, addRuleUsage, nil)
		return
	}

	rule, err := h.availabilityService.AddRule(ctx, in)
	if err != nil {
		h.sendServiceError(ctx, b, update, "Add rule", err)
		return
	}

	h.sendMessage(ctx, b, chatID,
		fmt.Sprintf("✅ Правило #%d добавлено\n\n%s\n\nВсе правила: /rules", rule.ID, formatting.FormatRule(rule)),
		nil,
	)
}

const editRuleUsage = "❌ Формат: /editrule &lt;ID правила&gt; &lt;день&gt; &lt;HH:MM&gt; &lt;HH:MM&gt; &lt;урок, мин&gt; [перерыв, мин]\n" +
	"ID правил: /rules"

// HandleEditRule меняет окно существующего правила
func (h *Handlers) HandleEditRule(ctx context.Context, b *bot.Bot, update *models.Update, args []string) {
	chatID := update.Message.Chat.ID

	ruleID, in, err := parseEditRule(update.Message.From.ID, args)
	if err != nil {
		h.sendMessage(ctx, b, chatID, editRuleUsage, nil)
		return
	}

	rule, err := h.availabilityService.UpdateRule(ctx, in.TutorID, ruleID, in)
	if err != nil {
		h.sendServiceError(ctx, b, update, "Update rule", err)
		return
	}

	h.sendMessage(ctx, b, chatID,
		fmt.Sprintf("✏️ Правило #%d изменено\n\n%s", rule.ID, formatting.FormatRule(rule)),
		nil,
	)
}

// HandleRules показывает правила учителя с кнопками управления
func (h *Handlers) HandleRules(ctx context.Context, b *bot.Bot, update *models.Update, _ []string) {
	rules, err := h.availabilityService.ListRules(ctx, update.Message.From.ID)
	if err != nil {
		h.sendServiceError(ctx, b, update, "List rules", err)
		return
	}

	text, kb := common.RulesView(rules)
	h.sendMessage(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleRequests заявки учителю, на которые ещё можно ответить
func (h *Handlers) HandleRequests(ctx context.Context, b *bot.Bot, update *models.Update, _ []string) {
	chatID := update.Message.Chat.ID

	requests, err := h.bookingService.ListTutorRequests(ctx, update.Message.From.ID,
		model.RequestStatusPending,
		model.RequestStatusTimeSlotsProposed,
	)
	if err != nil {
		h.sendServiceError(ctx, b, update, "List tutor requests", err)
		return
	}

	if len(requests) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 Новых заявок нет.", nil)
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("📨 У вас %d %s", len(requests), formatting.PluralizeRequests(len(requests))), nil)
	for i, req := range requests {
		if i == MaxCards {
			break
		}
		h.sendMessage(ctx, b, chatID, common.RequestText(req, h.location), common.TutorRequestKeyboard(req))
	}
}

// HandleLessons ближайшие уроки учителя
func (h *Handlers) HandleLessons(ctx context.Context, b *bot.Bot, update *models.Update, _ []string) {
	from, to := h.lessonsWindow()

	lessons, err := h.lessonService.ListTutorLessons(ctx, update.Message.From.ID, from, to)
	if err != nil {
		h.sendServiceError(ctx, b, update, "List tutor lessons", err)
		return
	}

	h.sendLessons(ctx, b, update, lessons)
}

// lessonsWindow от вчерашнего дня на LessonsHorizonDays вперёд
func (h *Handlers) lessonsWindow() (time.Time, time.Time) {
	today := model.DateOf(time.Now().In(h.location))
	return today.AddDate(0, 0, -LessonsLookbackDays), today.AddDate(0, 0, LessonsHorizonDays)
}

// sendLessons карточки уроков; отменённые и проведённые не показываем
func (h *Handlers) sendLessons(ctx context.Context, b *bot.Bot, update *models.Update, lessons []*model.Lesson) {
	chatID := update.Message.Chat.ID
	viewerID := update.Message.From.ID

	active := make([]*model.Lesson, 0, len(lessons))
	for _, l := range lessons {
		if l.IsActive() {
			active = append(active, l)
		}
	}

	if len(active) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 Запланированных уроков нет.", nil)
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("📅 Запланировано: %d %s", len(active), formatting.PluralizeLessons(len(active))), nil)
	for i, l := range active {
		if i == MaxCards {
			break
		}
		h.sendMessage(ctx, b, chatID, common.LessonText(l, h.location), common.LessonKeyboard(l, viewerID))
	}
}
