package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer    Action = "answer"
	ActionGoTo      Action = "goto"
	ActionFocusLost Action = "focus_lost"
	ActionSubmit    Action = "submit"
	ActionPing      Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest selects an option for one question.
type AnswerRequest struct {
	Action     Action `json:"action"`
	QuestionID string `json:"question_id"`
	Option     int    `json:"option"`
}

// GoToRequest moves the citizen's cursor to a question index.
type GoToRequest struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
}

// FocusLostRequest reports that the exam tab lost focus.
type FocusLostRequest struct {
	Action Action `json:"action"`
}

// SubmitRequest finishes and grades the exam. Confirm must be true;
// it guards against accidental double-sends from the client.
type SubmitRequest struct {
	Action  Action `json:"action"`
	Confirm bool   `json:"confirm"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError       Event = "error"
	EventTick        Event = "tick"
	EventAnswerSaved Event = "answer_saved"
	EventWarning     Event = "integrity_warning"
	EventSubmitted   Event = "submitted"
	EventPong        Event = "pong"
)

// AnswerSavedResponse acknowledges a recorded answer.
type AnswerSavedResponse struct {
	Event      Event  `json:"event"`
	QuestionID string `json:"question_id"`
	Option     int    `json:"option"`
}

// TickResponse carries the remaining seconds once per second.
type TickResponse struct {
	Event     Event `json:"event"`
	Remaining int   `json:"remaining"`
}

// WarningResponse is pushed after a tolerated focus-loss event.
type WarningResponse struct {
	Event    Event `json:"event"`
	Warnings int   `json:"warnings"`
	Limit    int   `json:"limit"`
}

// SubmittedResponse carries the graded outcome. Trigger tells the
// client whether the citizen, the timer, or an integrity violation
// ended the exam.
type SubmittedResponse struct {
	Event         Event  `json:"event"`
	Trigger       string `json:"trigger"`
	Correct       int    `json:"correct"`
	Total         int    `json:"total"`
	Score         int    `json:"score"`
	Passed        bool   `json:"passed"`
	PersistFailed bool   `json:"persist_failed,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
