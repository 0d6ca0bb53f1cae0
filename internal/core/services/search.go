package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/docmirror/internal/analysis"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
	"github.com/custodia-labs/docmirror/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

const (
	// DefaultSearchLimit applies when neither the query nor the settings
	// set a limit.
	DefaultSearchLimit = 20

	// MaxSearchLimit caps every page.
	MaxSearchLimit = 200

	// SnippetLength is the longest snippet returned, in runes.
	SnippetLength = 200

	queryCacheSize = 256
)

// SearchService answers keyword, context and filename queries against the
// document index.
type SearchService struct {
	index    driven.DocumentIndex
	embedder driven.EmbeddingService
	settings domain.SearchSettings

	// Query vectors keyed by model and query text.
	vectors *lru.Cache[string, []float32]
}

// NewSearchService creates a search service. The embedder is optional;
// without it context queries fail with IndexUnavailable.
func NewSearchService(
	index driven.DocumentIndex,
	embedder driven.EmbeddingService,
	settings domain.SearchSettings,
) *SearchService {
	cache, err := lru.New[string, []float32](queryCacheSize)
	if err != nil {
		// Only reachable with a non-positive size.
		panic(err)
	}
	return &SearchService{
		index:    index,
		embedder: embedder,
		settings: settings,
		vectors:  cache,
	}
}

// Search runs one query in a single mode.
func (s *SearchService) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	mode, err := s.mode(query.Mode)
	if err != nil {
		return nil, err
	}
	if query.Offset < 0 {
		return nil, domain.NewError(domain.KindInvalidInput, "offset must not be negative")
	}
	limit := s.limit(query.Limit)

	text := strings.TrimSpace(query.Query)
	if text == "" || s.index.Len() == 0 {
		return []domain.SearchResult{}, nil
	}
	logger.Debug("search %s %q limit=%d offset=%d", mode, text, limit, query.Offset)

	var hits []domain.SearchHit
	switch mode {
	case domain.SearchModeKeyword:
		hits = s.index.KeywordSearch(text)
	case domain.SearchModeFilename:
		hits = s.index.FilenameSearch(text)
	case domain.SearchModeContext:
		hits, err = s.contextSearch(ctx, text)
		if err != nil {
			return nil, err
		}
	}

	return s.hydrate(page(hits, query.Offset, limit), text), nil
}

func (s *SearchService) mode(m domain.SearchMode) (domain.SearchMode, error) {
	if m == "" {
		m = s.settings.DefaultMode
	}
	if m == "" {
		return domain.SearchModeKeyword, nil
	}
	return domain.ParseSearchMode(string(m))
}

func (s *SearchService) limit(n int) int {
	if n <= 0 {
		n = s.settings.DefaultLimit
	}
	if n <= 0 {
		n = DefaultSearchLimit
	}
	return min(n, MaxSearchLimit)
}

func (s *SearchService) contextSearch(ctx context.Context, text string) ([]domain.SearchHit, error) {
	if s.embedder == nil {
		return nil, domain.NewError(domain.KindIndexUnavailable, "context search needs an embedding provider")
	}

	key := s.embedder.ModelName() + "\x00" + text
	vec, ok := s.vectors.Get(key)
	if !ok {
		var err error
		vec, err = s.embedder.Embed(ctx, text)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, domain.WrapError(domain.KindIndexUnavailable, err, "embed query")
		}
		s.vectors.Add(key, vec)
	}

	// The index reports IndexUnavailable when no vectors match the
	// query dimension.
	return s.index.VectorSearch(vec)
}

func page(hits []domain.SearchHit, offset, limit int) []domain.SearchHit {
	if offset >= len(hits) {
		return nil
	}
	end := min(offset+limit, len(hits))
	return hits[offset:end]
}

func (s *SearchService) hydrate(hits []domain.SearchHit, query string) []domain.SearchResult {
	terms := make(map[string]struct{})
	for _, t := range analysis.Terms(query) {
		terms[t] = struct{}{}
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		r := domain.SearchResult{
			Hash:    h.Hash,
			Path:    h.Path,
			Score:   h.Score,
			ModTime: h.ModTime,
		}
		// A record can vanish between ranking and hydration.
		if rec, ok := s.index.Get(h.Hash); ok && rec.Doc != nil {
			r.Title = rec.Doc.Title
			r.Snippet = Snippet(rec.Doc.Text, terms)
		}
		results = append(results, r)
	}
	return results
}

// Snippet returns the first sentence of text containing one of the
// analysed query terms, or the start of the text when none does. The
// result is at most SnippetLength runes.
func Snippet(text string, terms map[string]struct{}) string {
	if len(terms) > 0 {
		for _, sentence := range analysis.Sentences(text) {
			for _, t := range analysis.Terms(sentence) {
				if _, ok := terms[t]; ok {
					return clip(sentence, SnippetLength)
				}
			}
		}
	}
	return clip(strings.Join(strings.Fields(text), " "), SnippetLength)
}

func clip(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:limit-1])
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:") + "…"
}
