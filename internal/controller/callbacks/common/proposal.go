package common

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/go-telegram/bot/models"
)

// MaxCandidateButtons сколько свободных слотов показываем учителю при предложении
const MaxCandidateButtons = 24

// ProposalDraft слоты, которые учитель отмечает перед отправкой предложения
type ProposalDraft struct {
	RequestID  int64
	Candidates []model.TimeSlot
	Selected   []model.TimeSlot
}

// Toggle отмечает слот или снимает отметку. Слоты не из кандидатов игнорируются
func (d *ProposalDraft) Toggle(slot model.TimeSlot) bool {
	for i, s := range d.Selected {
		if s.Equal(slot) {
			d.Selected = append(d.Selected[:i], d.Selected[i+1:]...)
			return true
		}
	}

	for _, c := range d.Candidates {
		if c.Equal(slot) {
			d.Selected = append(d.Selected, c)
			return true
		}
	}
	return false
}

// IsSelected отмечен ли слот
func (d *ProposalDraft) IsSelected(slot model.TimeSlot) bool {
	for _, s := range d.Selected {
		if s.Equal(slot) {
			return true
		}
	}
	return false
}

// ProposalCandidates свободные слоты в будущем, кроме запрошенного, не больше MaxCandidateButtons
func ProposalCandidates(slots []model.CandidateSlot, requested model.TimeSlot, now time.Time) []model.TimeSlot {
	result := make([]model.TimeSlot, 0, MaxCandidateButtons)
	for _, c := range slots {
		if !c.IsAvailable || !c.StartTime.After(now) {
			continue
		}
		slot := c.TimeSlot()
		if slot.Equal(requested) {
			continue
		}
		result = append(result, slot)
		if len(result) == MaxCandidateButtons {
			break
		}
	}
	return result
}

// ProposalKeyboard сетка кандидатов с отметками и кнопкой отправки
func ProposalKeyboard(draft *ProposalDraft, loc *time.Location) *models.InlineKeyboardMarkup {
	buttons := make([]models.InlineKeyboardButton, 0, len(draft.Candidates))
	for _, slot := range draft.Candidates {
		text := formatting.FormatSlotShort(slot, loc)
		if draft.IsSelected(slot) {
			text = "✅ " + text
		}
		buttons = append(buttons, keyboard.Button(text, SlotCallback(ProposePick, slot, draft.RequestID)))
	}

	kb := keyboard.NewBuilder().Grid(buttons, 2)
	if len(draft.Selected) > 0 {
		kb.Row(keyboard.Button(
			fmt.Sprintf("📤 Отправить (%d)", len(draft.Selected)),
			fmt.Sprintf("%s%d", ProposeSend, draft.RequestID),
		))
	}
	return kb.Build()
}
