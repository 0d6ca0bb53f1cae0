package normalisers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/logger"
	"github.com/custodia-labs/docmirror/internal/normalisers/common"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// DefaultTimeout is the default per-document extraction deadline.
const DefaultTimeout = 30 * time.Second

// Registry dispatches raw documents to the highest-priority normaliser for
// their resolved content type.
type Registry struct {
	mu       sync.RWMutex
	byMIME   map[string][]driven.Normaliser
	pipeline driven.EnrichmentPipeline
	timeout  time.Duration
	now      func() time.Time
}

// Option configures the registry.
type Option func(*Registry)

// WithPipeline sets the enrichment pipeline run after extraction.
func WithPipeline(p driven.EnrichmentPipeline) Option {
	return func(r *Registry) {
		r.pipeline = p
	}
}

// WithTimeout sets the per-document extraction deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithClock overrides the clock used for NormalizedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byMIME:  make(map[string][]driven.Normaliser),
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a normaliser for each of its MIME types. A type may end in
// "/*" to match a whole family.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range n.SupportedMIMETypes() {
		list := append(r.byMIME[m], n)
		slices.SortStableFunc(list, func(a, b driven.Normaliser) int {
			return b.Priority() - a.Priority()
		})
		r.byMIME[m] = list
	}
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byMIME))
	for m := range r.byMIME {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

// Lookup returns the normaliser that would handle mimeType.
func (r *Registry) Lookup(mimeType string) (driven.Normaliser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if list := r.byMIME[mimeType]; len(list) > 0 {
		return list[0], true
	}
	if major, _, ok := strings.Cut(mimeType, "/"); ok {
		if list := r.byMIME[major+"/*"]; len(list) > 0 {
			return list[0], true
		}
	}
	return nil, false
}

// Normalise resolves the content type, extracts under the deadline and
// enriches the result.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.NormalizedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	mimeType := ResolveMIME(raw.Content, raw.DeclaredMIME)
	n, ok := r.Lookup(mimeType)
	if !ok {
		return nil, domain.NewError(domain.KindUnsupportedFormat, "%s: no extractor for %s", raw.URI, mimeType)
	}

	hash := raw.Hash
	if hash == "" {
		hash = HashContent(raw.Content)
	}
	resolved := *raw
	resolved.DeclaredMIME = mimeType
	resolved.Hash = hash

	logger.Debug("normalise %s as %s with %s", raw.URI, mimeType, n.Name())
	doc, err := r.extract(ctx, n, &resolved)
	if err != nil {
		return nil, err
	}

	stripControl(doc)
	doc.Hash = hash
	doc.MIMEType = mimeType
	doc.Format = n.Name()
	if doc.NormalizedAt.IsZero() {
		doc.NormalizedAt = r.now().UTC()
	}

	if r.pipeline != nil {
		r.pipeline.Process(ctx, doc)
	}
	return doc, nil
}

// stripControl removes characters XML 1.0 cannot carry from the fields
// every codec renders, so that conversions round-trip.
func stripControl(doc *domain.NormalizedDocument) {
	doc.Text = common.StripControl(doc.Text)
	doc.Title = common.StripControl(doc.Title)
	doc.Metadata.Author = common.StripControl(doc.Metadata.Author)
	for k, v := range doc.Metadata.Extra {
		doc.Metadata.Extra[k] = common.StripControl(v)
	}
}

type extractResult struct {
	doc *domain.NormalizedDocument
	err error
}

// extract runs the normaliser in its own goroutine so that the deadline is
// honoured even by extractors that do not watch the context.
func (r *Registry) extract(ctx context.Context, n driven.Normaliser, raw *domain.RawDocument) (*domain.NormalizedDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan extractResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- extractResult{err: domain.NewError(domain.KindCorruptInput, "%s: extractor panic: %v", raw.URI, p)}
			}
		}()
		doc, err := n.Normalise(ctx, raw)
		done <- extractResult{doc: doc, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, classify(raw.URI, res.err)
		}
		if res.doc == nil {
			return nil, domain.NewError(domain.KindCorruptInput, "%s: extractor returned no document", raw.URI)
		}
		return res.doc, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, domain.NewError(domain.KindExtractionTimeout, "%s: exceeded %s", raw.URI, r.timeout)
		}
		return nil, ctx.Err()
	}
}

// classify maps extractor errors onto the normalisation error kinds.
func classify(uri string, err error) error {
	switch {
	case domain.KindOf(err) != "":
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return domain.WrapError(domain.KindExtractionTimeout, err, "%s", uri)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return domain.WrapError(domain.KindCorruptInput, err, "%s", uri)
	}
}

// HashContent returns the hex SHA-256 of content.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ResolveMIME decides the content type of a document. The sniffed type is
// authoritative; the declared type only wins when the sniffed type is a
// generic ancestor of it, such as text/plain for a CSV file or
// application/zip for an office document.
func ResolveMIME(content []byte, declared string) string {
	sniffed := baseType(mimetype.Detect(content).String())
	declared = baseType(declared)

	// Content the sniffer cannot place is binary of unknown type; the file
	// name does not make it readable.
	if declared == "" || declared == sniffed || isBinary(sniffed) {
		return sniffed
	}
	if d := mimetype.Lookup(declared); d != nil {
		for p := d.Parent(); p != nil; p = p.Parent() {
			if p.Is(sniffed) {
				return declared
			}
		}
	}
	if sniffed == "text/plain" && strings.HasPrefix(declared, "text/") {
		return declared
	}
	return sniffed
}

func isBinary(m string) bool {
	return m == "application/octet-stream"
}

func baseType(m string) string {
	m, _, _ = strings.Cut(m, ";")
	return strings.ToLower(strings.TrimSpace(m))
}

// String describes the registry for debugging.
func (r *Registry) String() string {
	return fmt.Sprintf("normalisers.Registry{types: %d, timeout: %s}", len(r.SupportedMIMETypes()), r.timeout)
}
