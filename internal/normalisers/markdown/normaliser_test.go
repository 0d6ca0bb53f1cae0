package markdown

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

func TestNormaliser_Metadata(t *testing.T) {
	n := New()
	assert.Equal(t, "markdown", n.Name())
	assert.Equal(t, 50, n.Priority())
	assert.Contains(t, n.SupportedMIMETypes(), "text/markdown")
}

func TestNormalise_TitleFromHeading(t *testing.T) {
	raw := &domain.RawDocument{
		URI:     "docs/guide.md",
		Content: []byte("Intro line\n\n# Getting Started\n\nSome **bold** and a [link](http://x.y).\n"),
	}

	doc, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "Getting Started", doc.Title)
	assert.Contains(t, doc.Text, "Some bold and a link.")
	assert.NotContains(t, doc.Text, "**")
	assert.NotContains(t, doc.Text, "http://x.y")
}

func TestNormalise_TitleFallsBackToFilename(t *testing.T) {
	doc, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "notes/my_notes.md", Content: []byte("plain")})
	require.NoError(t, err)
	assert.Equal(t, "my notes", doc.Title)
}

func TestNormalise_KeepsCode(t *testing.T) {
	content := "# Title\n\n```go\nfunc main() {}\n```\n\nUse `go run`.\n"
	doc, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "a.md", Content: []byte(content)})
	require.NoError(t, err)

	assert.Contains(t, doc.Text, "func main() {}")
	assert.Contains(t, doc.Text, "Use go run.")
	assert.NotContains(t, doc.Text, "```")
}

func TestNormalise_FrontMatter(t *testing.T) {
	content := "---\ntitle: Release Plan\nauthor: Dana\ndate: 2024-02-10\ntags: [plan, q1]\n---\n# Heading\nBody text\n"
	doc, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "plan.md", Content: []byte(content)})
	require.NoError(t, err)

	assert.Equal(t, "Release Plan", doc.Title)
	assert.Equal(t, "Dana", doc.Metadata.Author)
	require.NotNil(t, doc.Metadata.CreatedAt)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), *doc.Metadata.CreatedAt)
	assert.Equal(t, "plan,q1", doc.Metadata.Extra["tags"])
	assert.NotContains(t, doc.Text, "author:")
}

func TestNormalise_MalformedFrontMatterIsBody(t *testing.T) {
	content := "---\ntitle: [unclosed\n---\nBody\n"
	doc, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "x.md", Content: []byte(content)})
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "Body")
	assert.Empty(t, doc.Metadata.Author)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"list", "- one\n- two", "one\ntwo"},
		{"numbered", "1. one\n2. two", "one\ntwo"},
		{"quote", "> quoted", "quoted"},
		{"image", "![alt text](img.png)", "alt text"},
		{"rule", "a\n\n---\n\nb", "a\n\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripMarkdown(tt.input))
		})
	}
}
