package state

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Учитель пишет комментарий к отказу
	StateRejectComment UserState = "reject_comment"
)

// Ключи временных данных
const (
	KeyRequestID = "request_id"
	KeyProposal  = "proposal"
)

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State UserState
	Data  map[string]any // Временные данные для текущего диалога
}
