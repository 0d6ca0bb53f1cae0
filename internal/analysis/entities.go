package analysis

import (
	"regexp"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

type entityRule struct {
	kind       domain.EntityType
	pattern    *regexp.Regexp
	confidence float64
}

// Rules are tried in priority order; a later rule never claims bytes an
// earlier rule already matched.
var entityRules = []entityRule{
	{domain.EntityEmail, regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`), 0.95},
	{domain.EntityURL, regexp.MustCompile(`https?://[^\s<>"')\]]+`), 0.95},
	{domain.EntityMoney, regexp.MustCompile(`(?:[$€£¥]\s?\d[\d,]*(?:\.\d+)?|\b\d[\d,]*(?:\.\d+)?\s?(?:USD|EUR|GBP|JPY)\b)`), 0.9},
	{domain.EntityDate, regexp.MustCompile(`\b(?:\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4}|` +
		`(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)[a-z]*\.? \d{1,2},? \d{4}|` +
		`\d{1,2} (?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)[a-z]* \d{4})\b`), 0.85},
	{domain.EntityPhone, regexp.MustCompile(`(?:\+\d{1,3}[ .\-]?)?(?:\(\d{2,4}\)[ .\-]?)?\d{3}[ .\-]\d{3,4}(?:[ .\-]\d{3,4})?\b`), 0.7},
	{domain.EntityNumber, regexp.MustCompile(`\b\d+(?:[.,]\d+)*\b`), 0.5},
}

// DetectEntities finds typed values in text. Spans are byte offsets into
// text and never overlap; the result is ordered by span.
func DetectEntities(text string) []domain.Entity {
	if text == "" {
		return nil
	}
	claimed := make([]bool, len(text))
	var out []domain.Entity

	for _, rule := range entityRules {
		for _, loc := range rule.pattern.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			if overlaps(claimed, start, end) {
				continue
			}
			for i := start; i < end; i++ {
				claimed[i] = true
			}
			out = append(out, domain.Entity{
				Type:       rule.kind,
				Text:       text[start:end],
				Start:      start,
				End:        end,
				Confidence: rule.confidence,
			})
		}
	}

	domain.SortEntities(out)
	return out
}

func overlaps(claimed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}
