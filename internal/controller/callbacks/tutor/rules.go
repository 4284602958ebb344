package tutor

import (
	"context"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/formatting"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleToggleRule включает или выключает правило доступности
func HandleToggleRule(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	ruleID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}

	rule, err := h.AvailabilityService.GetRule(ctx, ruleID)
	if err != nil {
		hc.Fail("Toggle rule", err, zap.Int64("rule_id", ruleID))
		return
	}

	rule, err = h.AvailabilityService.ToggleRule(ctx, hc.TelegramID, ruleID, !rule.IsAvailable)
	if err != nil {
		hc.Fail("Toggle rule", err, zap.Int64("rule_id", ruleID))
		return
	}

	if err := RefreshRules(ctx, hc); err != nil {
		h.Logger.Warn("Failed to refresh rules list", zap.Error(err))
	}

	if rule.IsAvailable {
		hc.Answer("🟢 Включено: " + formatting.FormatRule(rule))
	} else {
		hc.Answer("⚪️ Выключено: " + formatting.FormatRule(rule))
	}
}

// HandleDeleteRule удаляет правило
func HandleDeleteRule(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	ruleID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}

	if err := h.AvailabilityService.RemoveRule(ctx, hc.TelegramID, ruleID); err != nil {
		hc.Fail("Delete rule", err, zap.Int64("rule_id", ruleID))
		return
	}

	if err := RefreshRules(ctx, hc); err != nil {
		h.Logger.Warn("Failed to refresh rules list", zap.Error(err))
	}
	hc.Answer("🗑 Правило удалено")
}

// RefreshRules перерисовывает список правил в текущем сообщении
func RefreshRules(ctx context.Context, hc *common.HandlerContext) error {
	rules, err := hc.Handler.AvailabilityService.ListRules(ctx, hc.TelegramID)
	if err != nil {
		return err
	}

	text, kb := common.RulesView(rules)
	return hc.EditMessage(text, kb)
}
