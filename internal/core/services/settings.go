package services

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keySyncWorkers       = "sync.workers"
	keySyncFormat        = "sync.default_format"
	keySyncHidden        = "sync.include_hidden"
	keySyncExclude       = "sync.exclude"
	keySyncTimeout       = "sync.extraction_timeout"
	keySyncMaxFileSize   = "sync.max_file_size"
	keySyncInterval      = "sync.interval"
	keySearchMode        = "search.default_mode"
	keySearchLimit       = "search.default_limit"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedDimensions   = "embedding.dimensions"
	keyEmbedRateLimit    = "embedding.rate_limit"
	keySummaryProvider   = "summary.provider"
	keySummaryModel      = "summary.model"
	keySummaryBaseURL    = "summary.base_url"
	keySummaryAPIKey     = "summary.api_key"
	keySummaryMaxLength  = "summary.max_length"
	keySummaryRateLimit  = "summary.rate_limit"
	keyOCRProvider       = "ocr.provider"
	keyOCRLanguage       = "ocr.language"
	keySessionTTL        = "session.ttl"
	keySessionHost       = "session.host"
	keySessionSweep      = "session.sweep_interval"
	keyDataDir           = "data.dir"
	keySchedulerEnabled  = "scheduler.enabled"
	keyPipelineMaxLength = "pipeline.summary.max_length"
)

// Environment variables consulted when the config file leaves a value unset.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvOllamaHost   = "OLLAMA_HOST"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindBool
	kindFloat
	kindDuration
	kindStrings
	kindProvider
	kindFormat
	kindMode
)

// knownKeys maps every settable key to how its value is parsed.
var knownKeys = map[string]valueKind{
	keySyncWorkers:       kindInt,
	keySyncFormat:        kindFormat,
	keySyncHidden:        kindBool,
	keySyncExclude:       kindStrings,
	keySyncTimeout:       kindDuration,
	keySyncMaxFileSize:   kindInt,
	keySyncInterval:      kindDuration,
	keySearchMode:        kindMode,
	keySearchLimit:       kindInt,
	keyEmbedProvider:     kindProvider,
	keyEmbedModel:        kindString,
	keyEmbedBaseURL:      kindString,
	keyEmbedAPIKey:       kindString,
	keyEmbedDimensions:   kindInt,
	keyEmbedRateLimit:    kindFloat,
	keySummaryProvider:   kindProvider,
	keySummaryModel:      kindString,
	keySummaryBaseURL:    kindString,
	keySummaryAPIKey:     kindString,
	keySummaryMaxLength:  kindInt,
	keySummaryRateLimit:  kindFloat,
	keyOCRProvider:       kindProvider,
	keyOCRLanguage:       kindString,
	keySessionTTL:        kindDuration,
	keySessionHost:       kindString,
	keySessionSweep:      kindDuration,
	keyDataDir:           kindString,
	keySchedulerEnabled:  kindBool,
	keyPipelineMaxLength: kindInt,
}

// schedulerTaskKeys maps task IDs to their config table.
var schedulerTaskKeys = map[string]string{
	domain.TaskIDRootResync:   "root_resync",
	domain.TaskIDSessionSweep: "session_sweep",
}

// SettingsService turns the config store into AppSettings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.CapabilityValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service. validator may be nil,
// in which case Validate only checks the static configuration.
func NewSettingsService(configStore driven.ConfigStore, validator driven.CapabilityValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		DataDir: s.getString(keyDataDir, d.DataDir),
		Sync: domain.SyncSettings{
			Workers:           s.getInt(keySyncWorkers, d.Sync.Workers),
			DefaultFormat:     s.getFormat(d.Sync.DefaultFormat),
			IncludeHidden:     s.getBool(keySyncHidden, d.Sync.IncludeHidden),
			Exclude:           s.configStore.GetStringSlice(keySyncExclude),
			ExtractionTimeout: s.getDuration(keySyncTimeout, d.Sync.ExtractionTimeout),
			MaxFileSize:       int64(s.getInt(keySyncMaxFileSize, int(d.Sync.MaxFileSize))),
			Interval:          s.getDuration(keySyncInterval, d.Sync.Interval),
		},
		Search: domain.SearchSettings{
			DefaultMode:  s.getSearchMode(d.Search.DefaultMode),
			DefaultLimit: s.getInt(keySearchLimit, d.Search.DefaultLimit),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:      s.configStore.GetString(keyEmbedModel),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.getInt(keyEmbedDimensions, d.Embedding.Dimensions),
			RateLimit:  s.configStore.GetFloat(keyEmbedRateLimit),
		},
		Summary: domain.SummarySettings{
			Provider:  s.getProvider(keySummaryProvider, d.Summary.Provider),
			Model:     s.configStore.GetString(keySummaryModel),
			BaseURL:   s.configStore.GetString(keySummaryBaseURL),
			APIKey:    s.configStore.GetString(keySummaryAPIKey),
			MaxLength: s.getInt(keySummaryMaxLength, d.Summary.MaxLength),
			RateLimit: s.configStore.GetFloat(keySummaryRateLimit),
		},
		OCR: domain.OCRSettings{
			Provider: s.getProvider(keyOCRProvider, d.OCR.Provider),
			Language: s.getString(keyOCRLanguage, d.OCR.Language),
		},
		Session: domain.SessionSettings{
			TTL:           s.getDuration(keySessionTTL, d.Session.TTL),
			Host:          s.getString(keySessionHost, d.Session.Host),
			SweepInterval: s.getDuration(keySessionSweep, d.Session.SweepInterval),
		},
	}

	// Remote embedding models default to the provider's model; the hashing
	// embedder keeps its configured size.
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.Summary.Model == "" {
		settings.Summary.Model = domain.DefaultSummaryModels()[settings.Summary.Provider]
	}
	s.applyEnv(&settings.Embedding.APIKey, &settings.Embedding.BaseURL, settings.Embedding.Provider)
	s.applyEnv(&settings.Summary.APIKey, &settings.Summary.BaseURL, settings.Summary.Provider)

	return settings, nil
}

// applyEnv fills an unset API key or Ollama endpoint from the environment.
func (s *SettingsService) applyEnv(apiKey, baseURL *string, provider domain.AIProvider) {
	switch provider {
	case domain.AIProviderOpenAI:
		if *apiKey == "" {
			*apiKey = s.getenv(EnvOpenAIKey)
		}
	case domain.AIProviderAnthropic:
		if *apiKey == "" {
			*apiKey = s.getenv(EnvAnthropicKey)
		}
	case domain.AIProviderOllama:
		if *baseURL == "" {
			if host := s.getenv(EnvOllamaHost); host != "" {
				if !strings.Contains(host, "://") {
					host = "http://" + host
				}
				*baseURL = host
			}
		}
	}
}

// Set validates and persists one key.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := knownKeys[key]
	if !ok {
		return domain.NewError(domain.KindInvalidInput, "unknown setting %q", key)
	}
	parsed, err := parseValue(kind, value)
	if err != nil {
		return domain.WrapError(domain.KindInvalidInput, err, "setting %s", key)
	}
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func parseValue(kind valueKind, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%q is not a non-negative integer", value)
		}
		return n, nil
	case kindBool:
		return strconv.ParseBool(value)
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("%q is not a non-negative number", value)
		}
		return f, nil
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return nil, err
		}
		return value, nil
	case kindStrings:
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	case kindProvider:
		p := domain.AIProvider(strings.ToLower(value))
		if !p.IsValid() {
			return nil, fmt.Errorf("unknown provider %q", value)
		}
		return p.String(), nil
	case kindFormat:
		f, err := domain.ParseFormat(value)
		if err != nil {
			return nil, err
		}
		return f.String(), nil
	case kindMode:
		m, err := domain.ParseSearchMode(value)
		if err != nil {
			return nil, err
		}
		return m.String(), nil
	default:
		return value, nil
	}
}

// Keys lists the recognised configuration keys.
func (s *SettingsService) Keys() []string {
	return slices.Sorted(maps.Keys(knownKeys))
}

// Validate checks the configuration is usable and, when a validator is
// set, that each capability provider responds.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if settings.Sync.Workers < 1 {
		errs = append(errs, domain.NewError(domain.KindInvalidInput, "%s must be at least 1", keySyncWorkers))
	}
	if settings.Search.DefaultMode.RequiresEmbedding() && settings.Embedding.Provider == domain.AIProviderNone {
		errs = append(errs, domain.NewError(domain.KindInvalidInput,
			"search mode %q requires an embedding provider", settings.Search.DefaultMode))
	}
	if s.validator != nil {
		if err := s.validator.ValidateEmbedding(&settings.Embedding); err != nil {
			errs = append(errs, fmt.Errorf("embedding: %w", err))
		}
		if err := s.validator.ValidateSummary(&settings.Summary); err != nil {
			errs = append(errs, fmt.Errorf("summary: %w", err))
		}
		if err := s.validator.ValidateOCR(&settings.OCR); err != nil {
			errs = append(errs, fmt.Errorf("ocr: %w", err))
		}
	}
	return errors.Join(errs...)
}

// GetSchedulerConfig returns the scheduler configuration.
// Intervals default to the sync interval and session sweep interval.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	settings, _ := s.Get()
	cfg := domain.DefaultSchedulerConfig(*settings)

	if _, exists := s.configStore.Get(keySchedulerEnabled); exists {
		cfg.Enabled = s.configStore.GetBool(keySchedulerEnabled)
	}

	for taskID, configKey := range schedulerTaskKeys {
		prefix := "scheduler." + configKey + "."
		taskCfg := cfg.TaskConfigs[taskID]

		if _, exists := s.configStore.Get(prefix + "enabled"); exists {
			taskCfg.Enabled = s.configStore.GetBool(prefix + "enabled")
		}
		if d := s.configStore.GetDuration(prefix + "interval"); d > 0 {
			taskCfg.Interval = d
		}
		cfg.TaskConfigs[taskID] = taskCfg
	}
	return cfg
}

// GetPipelineConfig returns the enrichment pipeline configuration.
func (s *SettingsService) GetPipelineConfig() map[string]map[string]any {
	settings, _ := s.Get()
	maxLength := settings.Summary.MaxLength
	if n := s.configStore.GetInt(keyPipelineMaxLength); n > 0 {
		maxLength = n
	}
	return map[string]map[string]any{
		"summary": {"max_length": maxLength},
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getSearchMode(defaultVal domain.SearchMode) domain.SearchMode {
	val := s.configStore.GetString(keySearchMode)
	if val == "" {
		return defaultVal
	}
	mode, err := domain.ParseSearchMode(val)
	if err != nil {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getFormat(defaultVal domain.Format) domain.Format {
	val := s.configStore.GetString(keySyncFormat)
	if val == "" {
		return defaultVal
	}
	f, err := domain.ParseFormat(val)
	if err != nil {
		return defaultVal
	}
	return f
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(strings.ToLower(val))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
