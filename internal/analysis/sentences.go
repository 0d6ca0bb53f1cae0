package analysis

import (
	"regexp"
	"strings"
)

// sentencePattern matches a run of text up to terminal punctuation, a line
// break, or the end of input.
var sentencePattern = regexp.MustCompile(`[^.!?\n]+(?:[.!?]+|\n|$)`)

// Sentences splits text into trimmed, non-empty sentences in order.
func Sentences(text string) []string {
	raw := sentencePattern.FindAllString(text, -1)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.Join(strings.Fields(s), " ")
		if s == "" || !strings.ContainsFunc(s, func(r rune) bool { return !isSeparator(r) }) {
			continue
		}
		out = append(out, s)
	}
	return out
}
