package driving

import "github.com/custodia-labs/docmirror/internal/core/domain"

// SettingsService reads and updates application settings.
type SettingsService interface {
	// Get returns the current settings, falling back to defaults for
	// every key that is unset or invalid.
	Get() (*domain.AppSettings, error)

	// Set validates and persists one key. Unknown keys and values that do
	// not parse for the key fail with InvalidInput.
	Set(key, value string) error

	// Keys lists the recognised configuration keys, sorted.
	Keys() []string

	// Validate creates each configured capability and checks it responds.
	Validate() error

	// GetSchedulerConfig returns the background task configuration.
	GetSchedulerConfig() domain.SchedulerConfig

	// GetPipelineConfig returns per-enricher configuration keyed by
	// enricher name.
	GetPipelineConfig() map[string]map[string]any
}
