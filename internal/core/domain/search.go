package domain

import (
	"strings"
	"time"
)

// SearchMode selects which index answers a query.
type SearchMode string

// Available search modes.
const (
	// SearchModeKeyword ranks by term frequency weighted by inverse
	// document frequency over the inverted index.
	SearchModeKeyword SearchMode = "keyword"

	// SearchModeContext ranks by cosine similarity of embeddings.
	SearchModeContext SearchMode = "context"

	// SearchModeFilename matches path fragments by prefix and edit distance.
	SearchModeFilename SearchMode = "filename"
)

var searchModeAliases = map[string]SearchMode{
	"keyword":  SearchModeKeyword,
	"keywords": SearchModeKeyword,
	"context":  SearchModeContext,
	"semantic": SearchModeContext,
	"filename": SearchModeFilename,
	"name":     SearchModeFilename,
}

// ParseSearchMode resolves a mode name or alias. Unknown modes fail with
// InvalidSearchMode.
func ParseSearchMode(name string) (SearchMode, error) {
	if m, ok := searchModeAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m, nil
	}
	return "", NewError(KindInvalidSearchMode, "unknown search mode %q", name)
}

// IsValid returns true if the search mode is recognised.
func (m SearchMode) IsValid() bool {
	switch m {
	case SearchModeKeyword, SearchModeContext, SearchModeFilename:
		return true
	default:
		return false
	}
}

// RequiresEmbedding returns true if this mode needs an embedding provider.
func (m SearchMode) RequiresEmbedding() bool {
	return m == SearchModeContext
}

// String returns the string representation.
func (m SearchMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m SearchMode) Description() string {
	switch m {
	case SearchModeKeyword:
		return "Keywords (tf-idf over extracted text)"
	case SearchModeContext:
		return "Context (semantic similarity)"
	case SearchModeFilename:
		return "Filename (prefix and fuzzy match)"
	default:
		return unknownDescription
	}
}

// AllSearchModes returns all available search modes.
func AllSearchModes() []SearchMode {
	return []SearchMode{SearchModeKeyword, SearchModeContext, SearchModeFilename}
}

// SearchQuery is the search boundary request.
type SearchQuery struct {
	// Query is the free-text query.
	Query string

	// Mode selects the index.
	Mode SearchMode

	// Limit is the maximum number of results.
	Limit int

	// Offset is the number of results to skip, for paging.
	Offset int
}

// SearchHit is a ranked document reference produced by an index.
type SearchHit struct {
	// Hash identifies the document.
	Hash string

	// Path is the source path the hit is reported under.
	Path string

	// Score is the mode-specific relevance score.
	Score float64

	// ModTime is the source modification time used for tie-breaking.
	ModTime time.Time
}

// SearchResult represents a single search hit at the search boundary.
type SearchResult struct {
	// Hash identifies the matched document.
	Hash string `json:"hash"`

	// Path is the relative source path.
	Path string `json:"path"`

	// Title is the document title.
	Title string `json:"title,omitempty"`

	// Score is the relevance score.
	Score float64 `json:"score"`

	// Snippet is a short excerpt showing why the document matched.
	Snippet string `json:"snippet,omitempty"`

	// ModTime is the source modification time.
	ModTime time.Time `json:"modTime"`
}
