package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/student"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/tutor"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type callbackFunc func(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler)

// routes префикс callback data -> обработчик
var routes = map[string]callbackFunc{
	common.AcceptRequest:  tutor.HandleAcceptRequest,
	common.RejectRequest:  tutor.HandleRejectRequest,
	common.RejectSkip:     tutor.HandleRejectSkip,
	common.ProposeRequest: tutor.HandleProposeRequest,
	common.ProposePick:    tutor.HandleProposePick,
	common.ProposeSend:    tutor.HandleProposeSend,
	common.ToggleRule:     tutor.HandleToggleRule,
	common.DeleteRule:     tutor.HandleDeleteRule,

	common.SelectSlot:      student.HandleSelectSlot,
	common.RejectProposals: student.HandleRejectProposals,
	common.BookSlot:        student.HandleBookSlot,

	common.CancelRequest:  HandleCancelRequest,
	common.CancelLesson:   HandleCancelLesson,
	common.CompleteLesson: HandleCompleteLesson,
}

// prefixOf "accept_req:12" -> "accept_req:"
func prefixOf(data string) string {
	i := strings.IndexByte(data, ':')
	if i < 0 {
		return data
	}
	return data[:i+1]
}

// Route направляет callback обработчику по префиксу
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	handler, ok := routes[prefixOf(callback.Data)]
	if !ok {
		h.Logger.Warn("Unknown callback", zap.String("data", callback.Data))
		common.AnswerCallback(ctx, b, callback.ID, "❓ Неизвестная команда")
		return
	}

	handler(ctx, b, callback, h)
}
