// Package openai provides a summary service backed by the OpenAI chat
// completions API or any compatible endpoint.
package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docmirror/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/docmirror/internal/adapters/driven/llm"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

var (
	_ driven.SummaryService   = (*SummaryService)(nil)
	_ driven.PromptStoreAware = (*SummaryService)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI summary service.
type Config struct {
	// APIKey is required.
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// SummaryService summarises documents with /chat/completions.
type SummaryService struct {
	llm.Prompter

	api   *httpapi.Client
	model string
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// NewSummaryService creates a new OpenAI summary service.
func NewSummaryService(cfg Config) (*SummaryService, error) {
	if cfg.APIKey == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	headers := map[string]string{"Authorization": "Bearer " + cfg.APIKey}
	return &SummaryService{
		api:   httpapi.New("openai", cfg.BaseURL, cfg.Timeout, headers),
		model: cfg.Model,
	}, nil
}

// Summarise creates a summary of at most maxLength characters.
func (s *SummaryService) Summarise(ctx context.Context, text string, maxLength int) (string, error) {
	system, user := s.Prompter.Summarise(text, maxLength)
	req := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   llm.MaxTokens(maxLength),
		Temperature: 0.2,
	}

	var resp chatResponse
	if err := s.api.PostJSON(ctx, "/chat/completions", req, &resp); err != nil {
		return "", fmt.Errorf("summarise: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return llm.Clip(resp.Choices[0].Message.Content, maxLength), nil
}

// ModelName returns the name of the model being used.
func (s *SummaryService) ModelName() string {
	return s.model
}

// Ping validates the API key against /models.
func (s *SummaryService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/models")
}

// Close releases resources.
func (s *SummaryService) Close() error {
	return nil
}
