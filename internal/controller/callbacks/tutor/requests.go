package tutor

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/state"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// proposalDays на сколько дней вперёд ищем свободные слоты для предложения
const proposalDays = 7

// ========================
// Tutor Request Handlers
// ========================

// HandleAcceptRequest принимает заявку: создаётся урок на запрошенное время
func HandleAcceptRequest(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	requestID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}

	req, lesson, err := h.BookingService.RespondToRequest(ctx, hc.TelegramID, requestID, service.AcceptAction{})
	if err != nil {
		hc.Fail("Accept request", err, zap.Int64("request_id", requestID))
		return
	}

	hc.EditMessage(common.RequestText(req, h.Location), nil)
	hc.SendMessage(common.LessonText(lesson, h.Location), common.LessonKeyboard(lesson, hc.TelegramID))
	hc.Answer("✅ Заявка принята")

	hc.NotifyUser(req.StudentID,
		"✅ Учитель принял вашу заявку!\n\n"+common.LessonText(lesson, h.Location),
		common.LessonKeyboard(lesson, req.StudentID),
	)
}

// HandleRejectRequest просит комментарий к отказу
func HandleRejectRequest(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	requestID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}

	if _, err := pendingRequest(ctx, h, hc.TelegramID, requestID); err != nil {
		hc.Fail("Reject request", err, zap.Int64("request_id", requestID))
		return
	}

	hc.ClearState()
	hc.SetState(state.StateRejectComment)
	hc.SetData(state.KeyRequestID, requestID)

	kb := keyboard.NewBuilder().
		Row(keyboard.Button("➡️ Без комментария", fmt.Sprintf("%s%d", common.RejectSkip, requestID))).
		Build()

	hc.SendMessage(fmt.Sprintf("✏️ Напишите комментарий к отказу по заявке #%d\n\nИли /cancel для отмены.", requestID), kb)
	hc.Answer("")
}

// HandleRejectSkip отклоняет заявку без комментария
func HandleRejectSkip(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	requestID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}

	hc.ClearState()

	req, err := Reject(ctx, b, h, hc.TelegramID, requestID, "")
	if err != nil {
		hc.Fail("Reject request", err, zap.Int64("request_id", requestID))
		return
	}

	hc.EditMessage(common.RequestText(req, h.Location), nil)
	hc.Answer("🚫 Заявка отклонена")
}

// Reject отклоняет заявку и уведомляет студента. Используется и из диалога с комментарием
func Reject(ctx context.Context, b *bot.Bot, h *callbacktypes.Handler, tutorID, requestID int64, comment string) (*model.LessonRequest, error) {
	req, _, err := h.BookingService.RespondToRequest(ctx, tutorID, requestID, service.RejectAction{Comment: comment})
	if err != nil {
		return nil, err
	}

	if err := common.Notify(ctx, b, req.StudentID, "🚫 Учитель отклонил вашу заявку.\n\n"+common.RequestText(req, h.Location), nil); err != nil {
		h.Logger.Warn("Failed to notify student", zap.Int64("student_id", req.StudentID), zap.Error(err))
	}

	return req, nil
}

// HandleProposeRequest показывает свободные слоты ближайшей недели для предложения
func HandleProposeRequest(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	requestID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}

	req, err := pendingRequest(ctx, h, hc.TelegramID, requestID)
	if err != nil {
		hc.Fail("Propose slots", err, zap.Int64("request_id", requestID))
		return
	}

	now := time.Now().In(h.Location)
	slots, err := h.SlotGenerator.GenerateSlotsRange(ctx, hc.TelegramID, now, proposalDays)
	if err != nil {
		hc.Fail("Generate proposal candidates", err, zap.Int64("request_id", requestID))
		return
	}

	candidates := common.ProposalCandidates(slots, req.RequestedSlot(), now)
	if len(candidates) == 0 {
		hc.AnswerAlert("📭 На ближайшую неделю нет свободных слотов. Добавьте правила через /addrule")
		return
	}

	draft := &common.ProposalDraft{RequestID: requestID, Candidates: candidates}
	hc.SetData(state.KeyProposal, draft)

	hc.SendMessage(proposalText(req, draft, h.Location), common.ProposalKeyboard(draft, h.Location))
	hc.Answer("")
}

// HandleProposePick отмечает или снимает слот в черновике предложения
func HandleProposePick(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	args, err := common.ParseArgsFromCallback(callback.Data, 3)
	if err != nil {
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}

	draft, ok := currentDraft(hc, args[0])
	if !ok {
		hc.AnswerAlert("⌛ Предложение устарело. Откройте заявку заново через /requests")
		return
	}

	slot := common.SlotFromArgs(args[1], args[2], h.Location)
	if len(draft.Selected) >= service.MaxProposedSlots && !draft.IsSelected(slot) {
		hc.AnswerAlert(fmt.Sprintf("Можно предложить не больше %d слотов", service.MaxProposedSlots))
		return
	}

	// Черновик в state общий для параллельных нажатий, меняем копию
	next := *draft
	next.Selected = slices.Clone(draft.Selected)
	next.Toggle(slot)
	draft = &next
	hc.SetData(state.KeyProposal, draft)

	req, err := h.BookingService.GetRequest(ctx, draft.RequestID)
	if err != nil {
		hc.Fail("Propose slots", err, zap.Int64("request_id", draft.RequestID))
		return
	}

	hc.EditMessage(proposalText(req, draft, h.Location), common.ProposalKeyboard(draft, h.Location))
	hc.Answer("")
}

// HandleProposeSend отправляет отмеченные слоты студенту
func HandleProposeSend(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	requestID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}

	draft, ok := currentDraft(hc, requestID)
	if !ok || len(draft.Selected) == 0 {
		hc.AnswerAlert("⌛ Предложение устарело. Откройте заявку заново через /requests")
		return
	}

	req, _, err := h.BookingService.RespondToRequest(ctx, hc.TelegramID, requestID, service.ProposeAction{Slots: draft.Selected})
	if err != nil {
		hc.Fail("Propose slots", err, zap.Int64("request_id", requestID))
		return
	}
	h.StateManager.DeleteData(hc.TelegramID, state.KeyProposal)

	hc.EditMessage(common.RequestText(req, h.Location), nil)
	hc.Answer("📤 Предложение отправлено")

	hc.NotifyUser(req.StudentID,
		"🔄 Учитель предложил другое время. Выберите подходящее:\n\n"+common.RequestText(req, h.Location),
		common.StudentRequestKeyboard(req, h.Location),
	)
}

// pendingRequest заявка учителя, ещё ожидающая ответа
func pendingRequest(ctx context.Context, h *callbacktypes.Handler, tutorID, requestID int64) (*model.LessonRequest, error) {
	req, err := h.BookingService.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.TutorID != tutorID {
		return nil, model.ErrPermissionDenied
	}
	if req.Status != model.RequestStatusPending {
		return nil, model.ErrInvalidStateTransition
	}
	return req, nil
}

func currentDraft(hc *common.HandlerContext, requestID int64) (*common.ProposalDraft, bool) {
	value, ok := hc.GetData(state.KeyProposal)
	if !ok {
		return nil, false
	}
	draft, ok := value.(*common.ProposalDraft)
	if !ok || draft.RequestID != requestID {
		return nil, false
	}
	return draft, true
}

func proposalText(req *model.LessonRequest, draft *common.ProposalDraft, loc *time.Location) string {
	return fmt.Sprintf(
		"🔄 Предложение по заявке #%d\n\nОтметьте подходящие слоты (до %d) и нажмите «Отправить».\nОтмечено: %d",
		req.ID,
		service.MaxProposedSlots,
		len(draft.Selected),
	) + "\n\n" + common.RequestText(req, loc)
}
