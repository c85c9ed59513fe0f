package ai

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// OfflineProvider answers with a fixed demo reply when no API key is configured
type OfflineProvider struct {
	model string
}

// NewOfflineProvider creates an offline provider. model is only reported by health checks.
func NewOfflineProvider(model string) *OfflineProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OfflineProvider{model: model}
}

// GenerateReply returns the offline demo reply
func (p *OfflineProvider) GenerateReply(_ context.Context, _ ReplyRequest) Reply {
	start := time.Now()
	latency := time.Since(start)
	return Reply{
		Text:    OfflineReply,
		Model:   FallbackModel,
		Latency: latency,
		Trace:   finishTrace([]string{"llm:fallback=offline"}, latency, FallbackModel),
	}
}

// Model returns the configured model name
func (p *OfflineProvider) Model() string {
	return p.model
}

// Online is always false
func (p *OfflineProvider) Online() bool {
	return false
}

// RegisterOffline registers the offline provider with the registry
func RegisterOffline(registry *ProviderRegistry) {
	registry.Register("offline", func(config map[string]string, _ *zap.Logger) (ReplyGenerator, error) {
		return NewOfflineProvider(config["model"]), nil
	})
}
