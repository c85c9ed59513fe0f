package ai

import "github.com/benvon/talk-to-my-ai/internal/models"

// SystemPrompt sets the assistant persona for every completion
const SystemPrompt = "You are a concise, helpful AI assistant for recruiters. " +
	"Keep replies to 1-3 short paragraphs. If asked for steps, keep them concise. " +
	"When explaining technical topics, use approachable language."

// RecruiterModePrompt is appended after the user turn when recruiter mode is on
const RecruiterModePrompt = "You are in recruiter mode: keep it outcome-focused and non-technical."

const (
	// OfflineReply is returned when no API key is configured
	OfflineReply = "(Offline demo) I understood your request. I can summarize, set reminders, " +
		"or explain topics simply. Ask me about scheduling an interview or clarifying a concept."
	// UnavailableReply is returned when the completion call fails
	UnavailableReply = "LLM unavailable right now. Here's a quick fallback: " +
		"I can summarize requests, draft outreach, and answer tech questions in plain language."
)

// FallbackModel is reported as the model when no completion was produced
const FallbackModel = "fallback"

// TaskPrompts holds the extra system prompt for each assistant task
var TaskPrompts = map[string]string{
	models.TaskMockInterview: "You are conducting a mock interview. Ask one question at a time, wait for an answer, " +
		"then provide brief feedback (2-3 bullets) and the next question. Maintain a professional tone.",
	models.TaskCoverLetter: "You are drafting a tailored cover letter using provided inputs (role, company, job description, " +
		"highlights). Output a ready-to-send letter with greeting, 3 short paragraphs (fit, impact, alignment), " +
		"and a closing with a call to action.",
	models.TaskResumeReview: "You are reviewing a resume. Provide concise feedback in bullets: strengths, improvements, " +
		"and suggested accomplishment-driven bullet rewrites using metrics and action verbs.",
	models.TaskMessageTemplates: "You are creating outreach templates (networking, recruiter reach-out, referral ask). " +
		"Provide 2-3 short variants tailored to the role/company with placeholders for personalization.",
}
