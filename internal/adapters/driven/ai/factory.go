// Package ai builds the capability services (embedding, summary, OCR) from
// application settings.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docmirror/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/docmirror/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docmirror/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/docmirror/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/docmirror/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docmirror/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docmirror/internal/adapters/driven/ocr/tesseract"
	"github.com/custodia-labs/docmirror/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/docmirror/internal/adapters/driven/summary/frequency"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// pinger is implemented by services reachable over the network.
type pinger interface {
	Ping(ctx context.Context) error
}

// tesseractAvailable is swapped in tests.
var tesseractAvailable = tesseract.Available

// InitResult holds the capability services created at startup.
type InitResult struct {
	Embedding driven.EmbeddingService
	Summary   driven.SummaryService
	OCR       driven.OCRService
	Warnings  []string // Non-fatal issues that caused fallback.
	FellBack  bool     // True if a configured provider was replaced.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.Embedding != nil {
		_ = r.Embedding.Close()
	}
	if r.Summary != nil {
		_ = r.Summary.Close()
	}
}

func (r *InitResult) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn("%s", msg)
	r.Warnings = append(r.Warnings, msg)
}

// Init creates every configured capability. A remote provider that cannot
// be created or reached is replaced by the built-in one (hashing
// embeddings, frequency summaries) so the mirror keeps working offline; a
// missing OCR tool disables OCR.
func Init(ctx context.Context, settings *domain.AppSettings, prompts driven.PromptStore) *InitResult {
	r := &InitResult{}

	emb, err := CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		r.warn("embedding: %v; using %s", err, domain.AIProviderHashing)
		r.FellBack = true
		emb = hashing.New(settings.Embedding.Dimensions)
	}
	r.Embedding = emb

	sum, err := CreateAndValidateSummaryService(ctx, &settings.Summary, prompts)
	if err != nil {
		r.warn("summary: %v; using %s", err, domain.AIProviderFrequency)
		r.FellBack = true
		sum = frequency.New()
	}
	r.Summary = sum

	ocr, err := CreateOCRService(&settings.OCR)
	if err != nil {
		r.warn("ocr: %v; image text disabled", err)
	}
	r.OCR = ocr

	return r
}

// CreateAndValidateEmbeddingService creates an embedding service and
// validates connectivity. Returns nil, nil when embeddings are disabled.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return nil, err
	}
	if err := ping(ctx, svc); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%s unreachable: %w", settings.Provider, err)
	}
	return svc, nil
}

// CreateAndValidateSummaryService creates a summary service and validates
// connectivity. Returns nil, nil when summaries are disabled.
func CreateAndValidateSummaryService(
	ctx context.Context,
	settings *domain.SummarySettings,
	prompts driven.PromptStore,
) (driven.SummaryService, error) {
	svc, err := CreateSummaryService(settings, prompts)
	if err != nil || svc == nil {
		return nil, err
	}
	if err := ping(ctx, svc); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%s unreachable: %w", settings.Provider, err)
	}
	return svc, nil
}

func ping(ctx context.Context, svc any) error {
	p, ok := svc.(pinger)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.Ping(ctx)
}

// CreateEmbeddingService creates the embedding service named by settings.
// Remote providers are wrapped in a rate limiter.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || settings.Provider == "" || settings.Provider == domain.AIProviderNone {
		return nil, nil
	}

	var svc driven.EmbeddingService
	switch settings.Provider {
	case domain.AIProviderHashing:
		return hashing.New(settings.Dimensions), nil

	case domain.AIProviderOllama:
		svc = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderOpenAI:
		oa, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		svc = oa

	case domain.AIProviderAnthropic:
		return nil, domain.NewError(domain.KindCapabilityUnavailable,
			"anthropic does not support embeddings, use hashing, ollama or openai")

	default:
		return nil, domain.NewError(domain.KindInvalidInput, "unsupported embedding provider: %s", settings.Provider)
	}

	return ratelimit.WrapEmbedding(svc, ratelimit.New(settings.RateLimit)), nil
}

// CreateSummaryService creates the summary service named by settings.
// LLM-backed services load their prompts from prompts when it is non-nil.
func CreateSummaryService(settings *domain.SummarySettings, prompts driven.PromptStore) (driven.SummaryService, error) {
	if settings == nil || settings.Provider == "" || settings.Provider == domain.AIProviderNone {
		return nil, nil
	}

	var svc driven.SummaryService
	switch settings.Provider {
	case domain.AIProviderFrequency:
		return frequency.New(), nil

	case domain.AIProviderOllama:
		svc = ollamallm.NewSummaryService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOpenAI:
		oa, err := openaillm.NewSummaryService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		svc = oa

	case domain.AIProviderAnthropic:
		an, err := anthropicllm.NewSummaryService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		svc = an

	default:
		return nil, domain.NewError(domain.KindInvalidInput, "unsupported summary provider: %s", settings.Provider)
	}

	wrapped := ratelimit.WrapSummary(svc, ratelimit.New(settings.RateLimit))
	if prompts != nil {
		wrapped.SetPromptStore(prompts)
	}
	return wrapped, nil
}

// CreateOCRService creates the OCR service named by settings.
func CreateOCRService(settings *domain.OCRSettings) (driven.OCRService, error) {
	if settings == nil || settings.Provider == "" || settings.Provider == domain.AIProviderNone {
		return nil, nil
	}
	switch settings.Provider {
	case domain.AIProviderTesseract:
		if !tesseractAvailable() {
			return nil, domain.NewError(domain.KindCapabilityUnavailable, "%s not found on PATH", tesseract.Binary)
		}
		return tesseract.New(settings.Language), nil
	default:
		return nil, domain.NewError(domain.KindInvalidInput, "unsupported OCR provider: %s", settings.Provider)
	}
}
