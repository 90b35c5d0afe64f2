package completions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/FACorreiaa/travelmate-api/config"
	"github.com/FACorreiaa/travelmate-api/internal/api/external"
	"github.com/FACorreiaa/travelmate-api/internal/types"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client sends an ordered list of role-tagged messages to a chat-completion
// provider and returns the assistant's raw reply text. Implementations must
// classify failures so generators can return a user-facing error payload
// instead of crashing.
type Client interface {
	ChatCompletion(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error)
}

// NewClient picks the provider configured under ai.provider.
func NewClient(cfg config.AIConfig, logger *slog.Logger) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openrouter":
		return NewOpenRouterClient(cfg, logger), nil
	case "gemini":
		return NewGeminiClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

var _ Client = (*OpenRouterClient)(nil)

// OpenRouterClient talks the OpenAI chat-completions protocol against an
// OpenRouter-compatible endpoint.
type OpenRouterClient struct {
	cfg    config.AIConfig
	caller *external.Client
	logger *slog.Logger
}

func NewOpenRouterClient(cfg config.AIConfig, logger *slog.Logger) *OpenRouterClient {
	return &OpenRouterClient{
		cfg:    cfg,
		caller: external.NewClient(cfg.OpenRouter.Timeout, logger),
		logger: logger,
	}
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenRouterClient) ChatCompletion(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	if c.cfg.OpenRouter.APIKey == "" {
		c.logger.ErrorContext(ctx, "OPENROUTER_API_KEY not configured")
		return "", types.NewExternalError(types.ErrKindConfiguration, "AI service API key not configured", nil)
	}
	if maxTokens <= 0 {
		maxTokens = c.cfg.OpenRouter.MaxTokens
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.cfg.OpenRouter.APIKey,
	}
	if c.cfg.OpenRouter.SiteURL != "" {
		headers["HTTP-Referer"] = c.cfg.OpenRouter.SiteURL
	}
	if c.cfg.OpenRouter.SiteName != "" {
		headers["X-Title"] = c.cfg.OpenRouter.SiteName
	}

	c.logger.InfoContext(ctx, "Sending chat completion request",
		slog.String("model", c.cfg.OpenRouter.Model),
		slog.Int("max_tokens", maxTokens),
	)

	var data chatCompletionResponse
	err := c.caller.DoJSON(ctx, external.Request{
		Method:  "POST",
		URL:     c.cfg.OpenRouter.BaseURL + "/chat/completions",
		Headers: headers,
		Body: chatCompletionRequest{
			Model:       c.cfg.OpenRouter.Model,
			Messages:    messages,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		},
	}, &data)
	if err != nil {
		// A 401/403 means the credential was rejected, not a generic HTTP failure.
		var extErr *types.ExternalError
		if errors.As(err, &extErr) && extErr.Kind == types.ErrKindHTTP &&
			(extErr.Status == 401 || extErr.Status == 403) {
			return "", &types.ExternalError{
				Kind:    types.ErrKindUnauthorized,
				Status:  extErr.Status,
				Message: "AI service rejected the API key",
				Err:     err,
			}
		}
		return "", err
	}

	if data.Error != nil {
		msg := data.Error.Message
		if msg == "" {
			msg = "unknown API error"
		}
		c.logger.ErrorContext(ctx, "AI provider returned an error", slog.String("message", msg))
		return "", types.NewExternalError(types.ErrKindUpstream, msg, nil)
	}

	if len(data.Choices) == 0 {
		return "", types.NewExternalError(types.ErrKindEmptyCompletion, "response contains no choices", nil)
	}
	content := data.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", types.NewExternalError(types.ErrKindEmptyCompletion, "response contains no usable text", nil)
	}

	c.logger.InfoContext(ctx, "Received chat completion", slog.String("model", c.cfg.OpenRouter.Model))
	return content, nil
}
