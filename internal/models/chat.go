package models

// Chat roles accepted in a conversation history
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Assistant tasks that select a task-specific prompt
const (
	TaskMockInterview    = "mock_interview"
	TaskCoverLetter      = "cover_letter"
	TaskResumeReview     = "resume_review"
	TaskMessageTemplates = "message_templates"
)

// Tasks lists every supported assistant task
var Tasks = []string{TaskMockInterview, TaskCoverLetter, TaskResumeReview, TaskMessageTemplates}

// Message is one turn of a conversation
type Message struct {
	Role    string `json:"role" validate:"required,chat_role"`
	Content string `json:"content" validate:"max=8000"`
}

// RespondRequest is the body of POST /api/v1/respond
type RespondRequest struct {
	Text          string    `json:"text" validate:"required,max=4000"`
	History       []Message `json:"history" validate:"max=50,dive"`
	RecruiterMode *bool     `json:"recruiter_mode,omitempty"`
	Task          string    `json:"task,omitempty" validate:"omitempty,assistant_task"`
}

// Recruiter reports whether recruiter mode is on. It defaults to true.
func (r *RespondRequest) Recruiter() bool {
	return r.RecruiterMode == nil || *r.RecruiterMode
}

// Latency holds per-stage durations in milliseconds
type Latency struct {
	NLU   int64 `json:"nlu"`
	LLM   int64 `json:"llm"`
	Total int64 `json:"total"`
}

// IntentResult is the classified intent returned to clients
type IntentResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// RespondResponse is the reply of POST /api/v1/respond
type RespondResponse struct {
	Reply      string            `json:"reply"`
	Intent     IntentResult      `json:"intent"`
	Entities   map[string]string `json:"entities"`
	ToolTrace  []string          `json:"tool_trace"`
	LatencyMS  Latency           `json:"latency_ms"`
	ReminderID *string           `json:"reminder_id,omitempty"`
}
