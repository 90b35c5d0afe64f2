package completions

import (
	"context"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/FACorreiaa/travelmate-api/config"
	"github.com/FACorreiaa/travelmate-api/internal/types"
)

var _ Client = (*GeminiClient)(nil)

// GeminiClient serves the same Client contract through the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewGeminiClient(cfg config.AIConfig, logger *slog.Logger) (*GeminiClient, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, types.NewExternalError(types.ErrKindConfiguration, "GOOGLE_GEMINI_API_KEY is not set", nil)
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, types.NewExternalError(types.ErrKindConfiguration, "failed to create Gemini client", err)
	}
	model := cfg.Gemini.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiClient{client: client, model: model, logger: logger}, nil
}

func (c *GeminiClient) ChatCompletion(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(temperature)),
	}
	if maxTokens > 0 {
		genCfg.MaxOutputTokens = int32(maxTokens)
	}

	// Gemini carries the system prompt separately from the user turns.
	var userParts []string
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			genCfg.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: m.Content}},
			}
		default:
			userParts = append(userParts, m.Content)
		}
	}
	prompt := strings.Join(userParts, "\n\n")

	c.logger.InfoContext(ctx, "Sending Gemini completion request", slog.String("model", c.model))

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), genCfg)
	if err != nil {
		c.logger.ErrorContext(ctx, "Gemini completion failed", slog.Any("error", err))
		return "", types.NewExternalError(types.ErrKindUpstream, "Gemini request failed", err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", types.NewExternalError(types.ErrKindEmptyCompletion, "Gemini response contains no usable text", nil)
	}
	return text, nil
}
