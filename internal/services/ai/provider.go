package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/models"
	"go.uber.org/zap"
)

// ReplyRequest is the input to a reply generator
type ReplyRequest struct {
	Text          string
	History       []models.Message
	RecruiterMode bool
	Task          string
}

// Reply is a generated reply. Generators never fail: when the model is unreachable Text holds
// a canned fallback, Model is FallbackModel and Err records the cause.
type Reply struct {
	Text    string
	Model   string
	Latency time.Duration
	Trace   []string
	Err     error
}

// ReplyGenerator produces the assistant's conversational reply
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, req ReplyRequest) Reply
	// Model is the configured model name
	Model() string
	// Online reports whether replies come from a live model
	Online() bool
}

// ProviderFactory creates a reply generator from string settings
type ProviderFactory func(config map[string]string, logger *zap.Logger) (ReplyGenerator, error)

// ProviderRegistry stores available reply providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// NewDefaultRegistry returns a registry with the openai and offline providers
func NewDefaultRegistry() *ProviderRegistry {
	r := NewProviderRegistry()
	RegisterOpenAI(r)
	RegisterOffline(r)
	return r
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string, logger *zap.Logger) (ReplyGenerator, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config, logger)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}

// finishTrace appends the latency and model entries every reply ends with
func finishTrace(trace []string, latency time.Duration, model string) []string {
	return append(trace,
		fmt.Sprintf("latency_llm_ms=%d", latency.Milliseconds()),
		"model_used="+model,
	)
}
