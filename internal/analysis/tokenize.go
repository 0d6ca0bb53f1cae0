package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
)

// MinTokenLength is the shortest token, in runes, kept by Terms.
const MinTokenLength = 2

// Token is an analysed term and its ordinal position in the token stream.
type Token struct {
	Term     string
	Position int
}

// Tokens analyses text into index terms.
//
// Text is split on runs of anything that is not a letter or digit, lower
// cased, stripped of stop words and tokens shorter than MinTokenLength, and
// alphabetic tokens are reduced to their English Snowball stem. Positions
// count the surviving tokens.
func Tokens(text string) []Token {
	fields := strings.FieldsFunc(text, isSeparator)
	if len(fields) == 0 {
		return nil
	}

	out := make([]Token, 0, len(fields))
	for _, f := range fields {
		term := normalise(f)
		if term == "" {
			continue
		}
		out = append(out, Token{Term: term, Position: len(out)})
	}
	return out
}

// Terms returns the analysed terms of text in order.
func Terms(text string) []string {
	toks := Tokens(text)
	if len(toks) == 0 {
		return nil
	}
	terms := make([]string, len(toks))
	for i, t := range toks {
		terms[i] = t.Term
	}
	return terms
}

// UniqueTerms returns the distinct analysed terms of text in first-seen
// order.
func UniqueTerms(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range Terms(text) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Matches reports whether word analyses to one of the given terms. It is
// used to find query terms in unanalysed text, e.g. for snippets.
func Matches(word string, terms map[string]struct{}) bool {
	t := normalise(word)
	if t == "" {
		return false
	}
	_, ok := terms[t]
	return ok
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func normalise(field string) string {
	lower := strings.ToLower(field)
	if utf8.RuneCountInString(lower) < MinTokenLength {
		return ""
	}
	if IsStopWord(lower) {
		return ""
	}
	if !isAlpha(lower) {
		return lower
	}
	stem := english.Stem(lower, false)
	if stem == "" {
		return lower
	}
	return stem
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
