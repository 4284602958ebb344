package model

import (
	"encoding/json"
	"fmt"
)

type ResponseKind string

const (
	ResponseKindAccepted ResponseKind = "accepted"
	ResponseKindRejected ResponseKind = "rejected"
	ResponseKindProposed ResponseKind = "proposed"
)

// TutorResponse ответ учителя на заявку: Rejected, Proposed или AcceptedDirectly
type TutorResponse interface {
	Kind() ResponseKind
}

// Rejected заявка отклонена, комментарий необязателен
type Rejected struct {
	Comment string
}

// Proposed учитель предложил альтернативные слоты
type Proposed struct {
	Slots []TimeSlot
}

// AcceptedDirectly учитель принял запрошенное время
type AcceptedDirectly struct{}

func (Rejected) Kind() ResponseKind         { return ResponseKindRejected }
func (Proposed) Kind() ResponseKind         { return ResponseKindProposed }
func (AcceptedDirectly) Kind() ResponseKind { return ResponseKindAccepted }

type responseEnvelope struct {
	Kind    ResponseKind `json:"kind"`
	Comment string       `json:"comment,omitempty"`
	Slots   []TimeSlot   `json:"slots,omitempty"`
}

// MarshalTutorResponse сериализует ответ в JSON для колонки tutor_response. nil -> nil
func MarshalTutorResponse(resp TutorResponse) ([]byte, error) {
	if resp == nil {
		return nil, nil
	}

	env := responseEnvelope{Kind: resp.Kind()}
	switch r := resp.(type) {
	case Rejected:
		env.Comment = r.Comment
	case Proposed:
		env.Slots = r.Slots
	case AcceptedDirectly:
	default:
		return nil, fmt.Errorf("unknown tutor response %T", resp)
	}

	return json.Marshal(env)
}

// UnmarshalTutorResponse восстанавливает ответ из JSON. Пустые данные -> nil
func UnmarshalTutorResponse(data []byte) (TutorResponse, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var env responseEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode tutor response: %w", err)
	}

	switch env.Kind {
	case ResponseKindRejected:
		return Rejected{Comment: env.Comment}, nil
	case ResponseKindProposed:
		return Proposed{Slots: env.Slots}, nil
	case ResponseKindAccepted:
		return AcceptedDirectly{}, nil
	default:
		return nil, fmt.Errorf("unknown tutor response kind %q", env.Kind)
	}
}
