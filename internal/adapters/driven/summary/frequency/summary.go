// Package frequency provides an extractive summariser that ranks sentences
// by how many of the document's frequent terms they contain.
package frequency

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docmirror/internal/analysis"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

var _ driven.SummaryService = (*SummaryService)(nil)

// ModelName identifies the algorithm.
const ModelName = "frequency"

// ellipsis marks a sentence cut to fit the length limit.
const ellipsis = "…"

// SummaryService is a stateless frequency summariser.
type SummaryService struct{}

// New creates a frequency summariser.
func New() *SummaryService {
	return &SummaryService{}
}

type scored struct {
	idx   int
	score float64
}

// Summarise picks the highest scoring sentences that fit in maxLength
// runes and returns them in document order. maxLength <= 0 means no
// limit.
func (s *SummaryService) Summarise(ctx context.Context, text string, maxLength int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sentences := analysis.Sentences(text)
	if len(sentences) == 0 {
		return "", nil
	}

	terms := make([][]string, len(sentences))
	freq := make(map[string]float64)
	for i, sent := range sentences {
		terms[i] = analysis.Terms(sent)
		for _, t := range terms[i] {
			freq[t]++
		}
	}

	var maxF float64
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}

	ranked := make([]scored, len(sentences))
	for i := range sentences {
		var score float64
		for _, t := range terms[i] {
			score += freq[t] / maxF
		}
		if n := len(terms[i]); n > 0 {
			score /= math.Sqrt(float64(n))
		}
		ranked[i] = scored{idx: i, score: score}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if maxLength <= 0 {
		return strings.Join(sentences, " "), nil
	}

	var picked []int
	used := 0
	for _, r := range ranked {
		n := utf8.RuneCountInString(sentences[r.idx])
		if len(picked) > 0 {
			n++
		}
		if used+n > maxLength {
			continue
		}
		picked = append(picked, r.idx)
		used += n
	}
	if len(picked) == 0 {
		return truncate(sentences[ranked[0].idx], maxLength), nil
	}

	sort.Ints(picked)
	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " "), nil
}

// truncate cuts s to at most limit runes, preferring a word boundary.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= 1 {
		return string([]rune(s)[:limit])
	}
	cut := string([]rune(s)[:limit-1])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:") + ellipsis
}

// ModelName returns the algorithm name.
func (s *SummaryService) ModelName() string {
	return ModelName
}

// Close releases resources.
func (s *SummaryService) Close() error {
	return nil
}
