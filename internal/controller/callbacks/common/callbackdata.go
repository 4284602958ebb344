package common

// ========================
// Callback Data Patterns
// ========================

// Учитель: заявки
const (
	AcceptRequest  = "accept_req:"   // accept_req:request_id
	RejectRequest  = "reject_req:"   // reject_req:request_id
	RejectSkip     = "reject_skip:"  // reject_skip:request_id (без комментария)
	ProposeRequest = "propose_req:"  // propose_req:request_id
	ProposePick    = "propose_pick:" // propose_pick:request_id:start_unix:end_unix
	ProposeSend    = "propose_send:" // propose_send:request_id
)

// Учитель: правила доступности
const (
	ToggleRule = "toggle_rule:" // toggle_rule:rule_id
	DeleteRule = "delete_rule:" // delete_rule:rule_id
)

// Студент: заявки и запись
const (
	SelectSlot      = "select_slot:"  // select_slot:request_id:index
	RejectProposals = "reject_props:" // reject_props:request_id
	BookSlot        = "book_slot:"    // book_slot:tutor_id:subject_id:start_unix:end_unix
)

// Обе стороны
const (
	CancelRequest  = "cancel_req:"      // cancel_req:request_id
	CancelLesson   = "cancel_lesson:"   // cancel_lesson:lesson_id
	CompleteLesson = "complete_lesson:" // complete_lesson:lesson_id
)
