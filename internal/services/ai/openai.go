package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second
	// DefaultMaxTokens caps the completion length
	DefaultMaxTokens = 350
	// DefaultTemperature is the sampling temperature
	DefaultTemperature = 0.6

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// completionClient is the part of the SDK the provider calls
type completionClient interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAIConfig configures an OpenAIProvider
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int64
	Temperature float64
	DebugMode   bool
}

// OpenAIProvider implements ReplyGenerator using OpenAI's chat completions API
type OpenAIProvider struct {
	completions completionClient
	model       string
	maxTokens   int64
	temperature float64
	logger      *zap.Logger
	debugMode   bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(cfg OpenAIConfig, logger *zap.Logger) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(1),
	)

	return &OpenAIProvider{
		completions: &client.Chat.Completions,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
		debugMode:   cfg.DebugMode,
	}
}

// Model returns the configured model name
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Online is always true
func (p *OpenAIProvider) Online() bool {
	return true
}

// buildMessages assembles the conversation: persona, optional task prompt, history, the user
// turn and, in recruiter mode, a closing system instruction.
func buildMessages(req ReplyRequest) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+4)
	msgs = append(msgs, openai.SystemMessage(SystemPrompt))
	if prompt, ok := TaskPrompts[req.Task]; ok {
		msgs = append(msgs, openai.SystemMessage(prompt))
	}
	for _, m := range req.History {
		switch m.Role {
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	msgs = append(msgs, openai.UserMessage(req.Text))
	if req.RecruiterMode {
		msgs = append(msgs, openai.SystemMessage(RecruiterModePrompt))
	}
	return msgs
}

// GenerateReply calls the chat completions API and degrades to UnavailableReply on failure
func (p *OpenAIProvider) GenerateReply(ctx context.Context, req ReplyRequest) Reply {
	requestID := ExtractRequestID(ctx)
	userID := ExtractUserID(ctx)

	messages := buildMessages(req)
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(p.model),
		Messages:    messages,
		MaxTokens:   openai.Int(p.maxTokens),
		Temperature: openai.Float(p.temperature),
	}

	if p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", "reply"),
			zap.String("model", p.model),
			zap.Int("message_count", len(messages)),
			zap.String("task", req.Task),
			zap.String("prompt_preview", SanitizePrompt(req.Text, false)),
			zap.String("user_id", userID),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.completions.New(ctx, params)
	latency := time.Since(start)

	if err == nil && len(resp.Choices) == 0 {
		err = errors.New(ErrNoChoicesInResponse)
	}
	if err != nil {
		if apiErr := ExtractAPIError(err); apiErr != nil {
			err = fmt.Errorf("failed to generate reply: %w", apiErr)
		} else {
			err = fmt.Errorf("failed to generate reply: %w", err)
		}
		p.logger.Warn("llm_api_error",
			zap.String("operation", "reply"),
			zap.String("model", p.model),
			zap.String("kind", ErrorKind(err)),
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
		return Reply{
			Text:    UnavailableReply,
			Model:   FallbackModel,
			Latency: latency,
			Trace:   finishTrace([]string{"llm:error=" + ErrorKind(err)}, latency, FallbackModel),
			Err:     err,
		}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	if p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", "reply"),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, false)),
			zap.String("user_id", userID),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	trace := []string{"llm:model=" + p.model}
	if req.Task != "" {
		trace = append(trace, "task="+req.Task)
	}
	return Reply{
		Text:    content,
		Model:   p.model,
		Latency: latency,
		Trace:   finishTrace(trace, latency, p.model),
	}
}

// RegisterOpenAI registers the OpenAI provider with the registry
func RegisterOpenAI(registry *ProviderRegistry) {
	registry.Register("openai", func(config map[string]string, logger *zap.Logger) (ReplyGenerator, error) {
		apiKey, ok := config["api_key"]
		if !ok || apiKey == "" {
			return nil, fmt.Errorf("openai api_key is required")
		}

		cfg := OpenAIConfig{
			APIKey:      apiKey,
			BaseURL:     config["base_url"],
			Model:       config["model"],
			Temperature: DefaultTemperature,
			DebugMode:   config["debug"] == "true",
		}
		if v := config["max_tokens"]; v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid max_tokens %q: %w", v, err)
			}
			cfg.MaxTokens = n
		}
		if v := config["temperature"]; v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid temperature %q: %w", v, err)
			}
			cfg.Temperature = f
		}

		return NewOpenAIProvider(cfg, logger), nil
	})
}
