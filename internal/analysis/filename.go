package analysis

import (
	"path"
	"strings"
	"unicode"
)

// Fragments returns the lower-cased fragments a slash-separated path is
// findable by in filename search: the base name with and without its
// extension, and the pieces obtained by splitting the base name on
// separators and camel-case humps. Fragments are unique and in first-seen
// order.
func Fragments(p string) []string {
	base := path.Base(p)
	if base == "." || base == "/" {
		return nil
	}
	stem := strings.TrimSuffix(base, path.Ext(base))

	var out []string
	seen := make(map[string]struct{})
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	add(base)
	add(stem)
	for _, part := range strings.FieldsFunc(base, isFilenameSeparator) {
		for _, hump := range splitCamel(part) {
			add(hump)
		}
		add(part)
	}
	return out
}

func isFilenameSeparator(r rune) bool {
	switch r {
	case '_', '-', '.', ' ', '/':
		return true
	}
	return unicode.IsSpace(r)
}

// splitCamel splits "QuarterlyReport2024" into "Quarterly", "Report", "2024".
func splitCamel(s string) []string {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}
	var parts []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := (unicode.IsLower(prev) && unicode.IsUpper(cur)) ||
			(unicode.IsLetter(prev) && unicode.IsDigit(cur)) ||
			(unicode.IsDigit(prev) && unicode.IsLetter(cur)) ||
			(i+1 < len(runes) && unicode.IsUpper(prev) && unicode.IsUpper(cur) && unicode.IsLower(runes[i+1]))
		if boundary {
			parts = append(parts, string(runes[start:i]))
			start = i
		}
	}
	return append(parts, string(runes[start:]))
}
