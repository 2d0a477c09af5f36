package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"ad-rewriter/backend/internal/constants"
	apperrors "ad-rewriter/backend/pkg/errors"
	"ad-rewriter/backend/pkg/logger"
)

const rewriteSystemPrompt = `You rewrite ads for specific platforms.
You receive a JSON payload describing the platform, the desired tone, the input text,
extracted entities, the platform's rules, and recommended styles and creative types.
Respond only in JSON with keys: platform, rewritten_text, explanation.`

// RewriteInput is everything the model needs for one platform rewrite.
type RewriteInput struct {
	Platform       string            `json:"platform"`
	Tone           string            `json:"tone"`
	Text           string            `json:"input_text"`
	Entities       map[string]string `json:"entities"`
	MaxLengthChars int               `json:"max_length_chars"`
	AllowEmojis    bool              `json:"allow_emojis"`
	CTARequired    bool              `json:"cta_required"`
	Styles         []string          `json:"recommended_styles"`
	CreativeTypes  []string          `json:"recommended_creative_types"`
}

// RewriteOutput is the model's platform-specific rewrite.
type RewriteOutput struct {
	Platform      string `json:"platform"`
	RewrittenText string `json:"rewritten_text"`
	Explanation   string `json:"explanation"`
}

// RewriteAdapter invokes the rewrite model through an OpenAI-compatible
// endpoint (a LiteLLM-style proxy in development).
type RewriteAdapter struct {
	client *openai.Client
	model  string
	mu     sync.RWMutex // Protects model field for concurrent access
	logger *zap.Logger
}

// NewRewriteAdapter creates a rewrite adapter
func NewRewriteAdapter(baseURL, apiKey, modelID string) *RewriteAdapter {
	// Local proxies accept any key
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL + "/v1"

	return &RewriteAdapter{
		client: openai.NewClientWithConfig(config),
		model:  modelID,
		logger: logger.Get(),
	}
}

// SetModel updates the model used by this adapter
func (a *RewriteAdapter) SetModel(model string) {
	if model != "" {
		a.mu.Lock()
		a.model = model
		a.mu.Unlock()
		a.logger.Debug("Rewrite adapter model updated", zap.String("model", model))
	}
}

// GetModel returns the current model
func (a *RewriteAdapter) GetModel() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.model
}

// Rewrite sends one platform rewrite request to the model, retrying
// transient failures with backoff.
func (a *RewriteAdapter) Rewrite(ctx context.Context, in RewriteInput) (*RewriteOutput, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rewrite payload: %w", err)
	}

	a.mu.RLock()
	currentModel := a.model
	a.mu.RUnlock()

	req := openai.ChatCompletionRequest{
		Model: currentModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: rewriteSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		Temperature: 0.6,
	}

	var resp openai.ChatCompletionResponse
	for attempt := 0; attempt < constants.MaxRewriteRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			a.logger.Warn("Retrying rewrite request",
				zap.String("platform", in.Platform),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, apperrors.NewContextCancelled("rewrite request", ctx.Err())
			}
		}

		resp, err = a.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}
		a.logger.Error("Rewrite request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", currentModel),
			zap.String("platform", in.Platform),
		)
		if ctx.Err() != nil {
			return nil, apperrors.NewContextCancelled("rewrite request", ctx.Err())
		}
	}
	if err != nil {
		return nil, apperrors.NewRewriteFailed(in.Platform, constants.MaxRewriteRetries, err)
	}

	if len(resp.Choices) == 0 {
		return nil, apperrors.ErrRewriteEmptyResponse
	}

	out := parseRewriteResponse(in.Platform, resp.Choices[0].Message.Content)
	if out.RewrittenText == "" {
		return nil, apperrors.ErrRewriteEmptyResponse
	}

	a.logger.Debug("Rewrite generated",
		zap.String("platform", in.Platform),
		zap.Int("length", len(out.RewrittenText)),
	)
	return out, nil
}

// parseRewriteResponse decodes the model's JSON reply, tolerating code
// fences and falling back to the raw text when it is not JSON.
func parseRewriteResponse(platform, content string) *RewriteOutput {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var out RewriteOutput
	if err := json.Unmarshal([]byte(trimmed), &out); err == nil && out.RewrittenText != "" {
		if out.Platform == "" {
			out.Platform = platform
		}
		return &out
	}

	return &RewriteOutput{
		Platform:      platform,
		RewrittenText: trimmed,
		Explanation:   "Model returned non-JSON, raw text forwarded.",
	}
}
