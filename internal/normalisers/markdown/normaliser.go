// Package markdown extracts Markdown documents, including YAML front matter.
package markdown

import (
	"context"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/normalisers/common"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the extraction strategy name.
func (n *Normaliser) Name() string { return "markdown" }

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise converts a markdown document to plain text. The title comes
// from front matter, then the first heading, then the filename.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.NormalizedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	body, fm := splitFrontMatter(string(raw.Content))

	title := fm.Title
	if title == "" {
		title = firstHeading(body)
	}

	doc := common.NewDocument(raw, title, stripMarkdown(body))
	doc.Metadata.Author = fm.Author
	if t, ok := fm.date(); ok {
		doc.Metadata.CreatedAt = &t
	}
	if len(fm.Tags) > 0 {
		doc.Metadata.SetExtra("tags", strings.Join(fm.Tags, ","))
	}
	return doc, nil
}

// frontMatter holds the recognised front matter keys.
type frontMatter struct {
	Title  string   `yaml:"title"`
	Author string   `yaml:"author"`
	Date   string   `yaml:"date"`
	Tags   []string `yaml:"tags"`
}

func (f frontMatter) date() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, f.Date); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// splitFrontMatter separates a leading "---" YAML block from the body.
// Malformed front matter is left in the body.
func splitFrontMatter(content string) (string, frontMatter) {
	var fm frontMatter
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, "---\n") {
		return content, fm
	}
	rest := content[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return content, fm
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return content, frontMatter{}
	}
	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	return body, fm
}

// firstHeading returns the text of the first ATX heading, or "".
func firstHeading(content string) string {
	inFence := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if m := headingLine.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// Pre-compiled regular expressions for markdown stripping.
var (
	headingLine  = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*#*$`)
	fenceMarkers = regexp.MustCompile("(?m)^\\s*```[^\\n]*$")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasis     = regexp.MustCompile(`(\*\*|__|\*|~~)`)
	blockquote   = regexp.MustCompile(`(?m)^>\s?`)
	hr           = regexp.MustCompile(`(?m)^\s*[-*_]{3,}\s*$`)
	listMarkers  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedList = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes markdown syntax. Code fence markers are dropped
// but the code itself is kept, since it is often what users search for.
func stripMarkdown(content string) string {
	content = fenceMarkers.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = hr.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "")
	content = blockquote.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")
	content = multiNewline.ReplaceAllString(content, "\n\n")
	return common.CleanText(content)
}
