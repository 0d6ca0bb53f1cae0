package converters

import (
	"slices"
	"sync"

	"github.com/custodia-labs/docmirror/internal/converters/markup"
	"github.com/custodia-labs/docmirror/internal/converters/record"
	"github.com/custodia-labs/docmirror/internal/converters/tabular"
	"github.com/custodia-labs/docmirror/internal/converters/yamldoc"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.Converter = (*Registry)(nil)

// Registry dispatches conversions to the codec registered for a format.
type Registry struct {
	mu     sync.RWMutex
	codecs map[domain.Format]driven.Codec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[domain.Format]driven.Codec)}
}

// NewDefaultRegistry creates a registry with every built-in codec.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(markup.New())
	r.Register(record.New())
	r.Register(tabular.New())
	r.Register(yamldoc.New())
	return r
}

// Register adds a codec, replacing any codec for the same format.
func (r *Registry) Register(c driven.Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[c.Format()] = c
}

func (r *Registry) codec(format domain.Format) (driven.Codec, error) {
	r.mu.RLock()
	c, ok := r.codecs[format]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}
	// Accept aliases such as "json" or "xml".
	if f, err := domain.ParseFormat(string(format)); err == nil {
		r.mu.RLock()
		c, ok = r.codecs[f]
		r.mu.RUnlock()
		if ok {
			return c, nil
		}
	}
	return nil, domain.NewError(domain.KindUnsupportedTargetFormat, "unknown target format %q", format)
}

// Convert renders doc into format.
func (r *Registry) Convert(doc *domain.NormalizedDocument, format domain.Format) ([]byte, error) {
	c, err := r.codec(format)
	if err != nil {
		return nil, err
	}
	return c.Encode(doc)
}

// Decode parses data previously produced for format.
func (r *Registry) Decode(data []byte, format domain.Format) (*domain.NormalizedDocument, error) {
	c, err := r.codec(format)
	if err != nil {
		return nil, err
	}
	return c.Decode(data)
}

// Extension returns the artifact extension for format.
func (r *Registry) Extension(format domain.Format) (string, error) {
	c, err := r.codec(format)
	if err != nil {
		return "", err
	}
	return c.Extension(), nil
}

// Formats returns the registered formats in display order.
func (r *Registry) Formats() []domain.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Format, 0, len(r.codecs))
	for f := range r.codecs {
		out = append(out, f)
	}
	order := domain.AllFormats()
	slices.SortFunc(out, func(a, b domain.Format) int {
		ia, ib := slices.Index(order, a), slices.Index(order, b)
		if ia != ib {
			return ia - ib
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return out
}
