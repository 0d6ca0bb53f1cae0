package driven

import (
	"context"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// CapabilityRequest is the input handed to an external capability: the
// raw bytes with their type, and any text already extracted.
type CapabilityRequest struct {
	Content  []byte
	MIMEType string
	Text     string
}

// OCRService recognises text in images and scanned pages.
// This is an optional service - when nil, image formats are unsupported.
type OCRService interface {
	// Recognize returns the text found in the request content.
	Recognize(ctx context.Context, req CapabilityRequest) (string, error)

	// Name identifies the OCR engine.
	Name() string
}

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil, context search is unavailable.
//
// Implementations may include:
//   - Feature hashing (built-in, offline)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// SummaryService produces short summaries of document text.
// This is an optional service - when nil, documents carry no summary.
type SummaryService interface {
	// Summarise creates a summary of at most maxLength characters.
	Summarise(ctx context.Context, text string, maxLength int) (string, error)

	// ModelName returns the name of the model or algorithm in use.
	ModelName() string

	// Close releases resources.
	Close() error
}

// CapabilityValidator checks provider settings by creating the service and
// making a lightweight request against it.
type CapabilityValidator interface {
	ValidateEmbedding(settings *domain.EmbeddingSettings) error
	ValidateSummary(settings *domain.SummarySettings) error
	ValidateOCR(settings *domain.OCRSettings) error
}
