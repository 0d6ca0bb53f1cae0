package postprocessors

import (
	"errors"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/logger"
	"github.com/custodia-labs/docmirror/internal/postprocessors/embedding"
	"github.com/custodia-labs/docmirror/internal/postprocessors/entities"
	"github.com/custodia-labs/docmirror/internal/postprocessors/language"
	"github.com/custodia-labs/docmirror/internal/postprocessors/summary"
)

// DefaultOrder is the order enrichers run in when built by BuildDefault.
var DefaultOrder = []string{"language", "entities", "summary", "embedding"}

// RegisterDefaults registers all built-in enrichers with the registry.
// Call this during application initialisation to enable standard enrichers.
func RegisterDefaults(r *Registry) {
	r.Register("language", buildLanguage)
	r.Register("entities", buildEntities)
	r.Register("summary", buildSummary)
	r.Register("embedding", buildEmbedding)
}

// BuildDefault assembles the standard pipeline. Enrichers whose capability
// is not configured are left out.
func BuildDefault(caps Capabilities, cfg map[string]map[string]any) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)

	p := NewPipeline()
	for _, name := range DefaultOrder {
		e, err := r.Build(name, cfg[name], caps)
		if errors.Is(err, domain.ErrCapabilityUnavailable) {
			logger.Debug("enricher %s disabled: %v", name, err)
			continue
		}
		if err != nil {
			return nil, err
		}
		p.Add(e)
	}
	return p, nil
}

func buildLanguage(_ map[string]any, _ Capabilities) (driven.Enricher, error) {
	return language.New(), nil
}

func buildEntities(_ map[string]any, _ Capabilities) (driven.Enricher, error) {
	return entities.New(), nil
}

// buildSummary creates a summary enricher from generic config.
// Supported config keys:
//   - max_length (int): Maximum summary length in characters (default: 280)
func buildSummary(cfg map[string]any, caps Capabilities) (driven.Enricher, error) {
	if caps.Summary == nil {
		return nil, domain.NewError(domain.KindCapabilityUnavailable, "no summary service")
	}
	var opts []summary.Option
	if n := getIntFromConfig(cfg, "max_length"); n > 0 {
		opts = append(opts, summary.WithMaxLength(n))
	}
	return summary.New(caps.Summary, opts...), nil
}

func buildEmbedding(_ map[string]any, caps Capabilities) (driven.Enricher, error) {
	if caps.Embedding == nil {
		return nil, domain.NewError(domain.KindCapabilityUnavailable, "no embedding service")
	}
	return embedding.New(caps.Embedding), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
