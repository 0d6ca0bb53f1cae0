// Package ollama provides a summary service backed by a local Ollama
// chat model.
package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docmirror/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/docmirror/internal/adapters/driven/llm"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

var (
	_ driven.SummaryService   = (*SummaryService)(nil)
	_ driven.PromptStoreAware = (*SummaryService)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Ollama summary service.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// SummaryService summarises documents with /api/chat.
type SummaryService struct {
	llm.Prompter

	api   *httpapi.Client
	model string
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  options       `json:"options"`
}

type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// NewSummaryService creates a new Ollama summary service.
func NewSummaryService(cfg Config) *SummaryService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &SummaryService{
		api:   httpapi.New("ollama", cfg.BaseURL, cfg.Timeout, nil),
		model: cfg.Model,
	}
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
		Options: options{NumPredict: llm.MaxTokens(maxLength), Temperature: 0.2},
	}

	var resp chatResponse
	if err := s.api.PostJSON(ctx, "/api/chat", req, &resp); err != nil {
		return "", fmt.Errorf("summarise: %w", err)
	}
	if resp.Message.Content == "" {
		return "", fmt.Errorf("ollama: empty response")
	}
	return llm.Clip(resp.Message.Content, maxLength), nil
}

// ModelName returns the name of the model being used.
func (s *SummaryService) ModelName() string {
	return s.model
}

// Ping checks connectivity via /api/tags.
func (s *SummaryService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/api/tags")
}

// Close releases resources.
func (s *SummaryService) Close() error {
	return nil
}
