// Package anthropic provides a summary service backed by the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"
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
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-haiku-latest"
	DefaultTimeout = 120 * time.Second

	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic summary service.
type Config struct {
	// APIKey is required.
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// SummaryService summarises documents with a Claude model.
type SummaryService struct {
	llm.Prompter

	api   *httpapi.Client
	model string
}

type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewSummaryService creates a new Anthropic summary service.
func NewSummaryService(cfg Config) (*SummaryService, error) {
	if cfg.APIKey == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "anthropic: API key is required")
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

	headers := map[string]string{
		"x-api-key":         cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}
	return &SummaryService{
		api:   httpapi.New("anthropic", cfg.BaseURL, cfg.Timeout, headers),
		model: cfg.Model,
	}, nil
}

// Summarise creates a summary of at most maxLength characters.
func (s *SummaryService) Summarise(ctx context.Context, text string, maxLength int) (string, error) {
	system, user := s.Prompter.Summarise(text, maxLength)
	req := messagesRequest{
		Model:       s.model,
		System:      system,
		Messages:    []message{{Role: "user", Content: user}},
		MaxTokens:   llm.MaxTokens(maxLength),
		Temperature: 0.2,
	}

	var resp messagesResponse
	if err := s.api.PostJSON(ctx, "/v1/messages", req, &resp); err != nil {
		return "", fmt.Errorf("summarise: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("anthropic: no text content returned")
	}
	return llm.Clip(out.String(), maxLength), nil
}

// ModelName returns the name of the model being used.
func (s *SummaryService) ModelName() string {
	return s.model
}

// Ping validates the API key against /v1/models without running inference.
func (s *SummaryService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/v1/models")
}

// Close releases resources.
func (s *SummaryService) Close() error {
	return nil
}
