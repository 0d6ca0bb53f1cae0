// Package common holds helpers shared by the format normalisers.
package common

import (
	"path"
	"strings"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// NewDocument builds the document skeleton every normaliser returns.
// The registry fills in Hash, MIMEType, Format and NormalizedAt.
func NewDocument(raw *domain.RawDocument, title, text string) *domain.NormalizedDocument {
	if title == "" {
		title = TitleFromPath(raw.URI)
	}
	return &domain.NormalizedDocument{
		Hash:  raw.Hash,
		Title: title,
		Text:  text,
	}
}

// TitleFromPath extracts a human-readable title from a path.
func TitleFromPath(uri string) string {
	filename := path.Base(strings.ReplaceAll(uri, "\\", "/"))
	if filename == "." || filename == "/" {
		return ""
	}

	// Remove the extension for a cleaner title
	if ext := path.Ext(filename); ext != "" && ext != filename {
		filename = strings.TrimSuffix(filename, ext)
	}

	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// CleanText normalises line endings and trims trailing whitespace on every
// line so extraction output is stable across platforms.
func CleanText(s string) string {
	s = StripControl(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// StripControl turns form feeds and vertical tabs into line breaks and
// drops the other control characters XML 1.0 does not allow. Tab, line
// feed and carriage return are kept.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\f' || r == '\v':
			return '\n'
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20 || r == 0xFFFE || r == 0xFFFF:
			return -1
		}
		return r
	}, s)
}
