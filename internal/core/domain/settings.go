package domain

import (
	"runtime"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies a capability provider.
type AIProvider string

// Available capability providers.
const (
	// AIProviderNone disables the capability.
	AIProviderNone AIProvider = "none"

	// AIProviderHashing is the built-in feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"

	// AIProviderFrequency is the built-in frequency summariser.
	AIProviderFrequency AIProvider = "frequency"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API (summaries only).
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderTesseract is the tesseract OCR command-line tool.
	AIProviderTesseract AIProvider = "tesseract"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderNone, AIProviderHashing, AIProviderFrequency,
		AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderTesseract:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsRemote returns true if this provider is reached over the network.
func (p AIProvider) IsRemote() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderNone:
		return "Disabled"
	case AIProviderHashing:
		return "Feature hashing (built-in)"
	case AIProviderFrequency:
		return "Word frequency (built-in)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderTesseract:
		return "Tesseract OCR"
	default:
		return unknownDescription
	}
}

// SyncSettings holds directory synchronisation configuration.
type SyncSettings struct {
	// Workers bounds the normalisation worker pool.
	Workers int

	// DefaultFormat is the conversion materialised into the output tree.
	DefaultFormat Format

	// IncludeHidden includes dot-files and dot-directories.
	IncludeHidden bool

	// Exclude holds glob patterns (doublestar syntax) of paths to skip.
	Exclude []string

	// ExtractionTimeout bounds text extraction for one document.
	ExtractionTimeout time.Duration

	// MaxFileSize skips files larger than this many bytes (0 = unlimited).
	MaxFileSize int64

	// Interval is the scheduler's resync period while serving.
	Interval time.Duration
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// DefaultMode is used when a request does not name a mode.
	DefaultMode SearchMode

	// DefaultLimit is used when a request does not set a limit.
	DefaultLimit int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the embedding vector size.
	Dimensions int

	// RateLimit caps remote requests per second (0 = unlimited).
	RateLimit float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderNone {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// SummarySettings holds summariser configuration.
type SummarySettings struct {
	// Provider is the summary service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL overrides the provider's API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI and Anthropic).
	APIKey string

	// RateLimit caps remote requests per second (0 = unlimited).
	RateLimit float64

	// MaxLength bounds the summary length in characters.
	MaxLength int
}

// IsConfigured returns true if the summary provider is set up.
func (s SummarySettings) IsConfigured() bool {
	if !s.Provider.IsValid() || s.Provider == AIProviderNone {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// OCRSettings holds OCR configuration.
type OCRSettings struct {
	// Provider is the OCR provider.
	Provider AIProvider

	// Language is the OCR language pack (e.g. "eng").
	Language string
}

// SessionSettings holds session token configuration.
type SessionSettings struct {
	// TTL is the fixed lifetime of issued tokens.
	TTL time.Duration

	// Host is the host part of the generated connection string.
	Host string

	// SweepInterval is how often expired tokens are dropped from memory.
	SweepInterval time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DataDir is where the sqlite database lives.
	DataDir string

	Sync      SyncSettings
	Search    SearchSettings
	Embedding EmbeddingSettings
	Summary   SummarySettings
	OCR       OCRSettings
	Session   SessionSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Embeddings use the built-in hashing embedder so context search works
// offline; remote providers must be configured explicitly.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Sync: SyncSettings{
			Workers:           runtime.NumCPU(),
			DefaultFormat:     FormatRecord,
			ExtractionTimeout: 30 * time.Second,
			MaxFileSize:       64 << 20,
			Interval:          5 * time.Minute,
		},
		Search: SearchSettings{
			DefaultMode:  SearchModeKeyword,
			DefaultLimit: 20,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderHashing,
			Dimensions: 256,
		},
		Summary: SummarySettings{
			Provider:  AIProviderFrequency,
			MaxLength: 280,
		},
		OCR: OCRSettings{
			Provider: AIProviderNone,
			Language: "eng",
		},
		Session: SessionSettings{
			TTL:           15 * time.Minute,
			Host:          "docmirror.local",
			SweepInterval: time.Minute,
		},
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultSummaryModels returns default models for each LLM summary provider.
func DefaultSummaryModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
