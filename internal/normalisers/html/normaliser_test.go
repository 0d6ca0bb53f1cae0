package html

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.Equal(t, "html", normaliser.Name())
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()
	assert.Contains(t, mimeTypes, "text/html")
	assert.Contains(t, mimeTypes, "application/xhtml+xml")
	assert.Len(t, mimeTypes, 2)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		URI:     "path/to/document.html",
		Content: []byte("<html><head><title>Test Page</title></head><body><p>Hello World</p></body></html>"),
	}

	doc, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Test Page", doc.Title)
	assert.Equal(t, "Hello World", doc.Text)
}

func TestNormalise_NoTitleFallsBackToFilename(t *testing.T) {
	doc, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "site/about-us.html",
		Content: []byte("<p>About</p>"),
	})
	require.NoError(t, err)
	assert.Equal(t, "about us", doc.Title)
}

func TestNormalise_StripsScriptsAndStyles(t *testing.T) {
	content := `<html><head><style>p{color:red}</style></head><body>
<script>alert("x")</script><p>Visible &amp; decoded</p><!-- hidden --></body></html>`
	doc, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "a.html", Content: []byte(content)})
	require.NoError(t, err)

	assert.Equal(t, "Visible & decoded", doc.Text)
}

func TestNormalise_MetaTags(t *testing.T) {
	content := `<html><head><title>T</title>
<meta name="author" content="Ada Lovelace">
<meta name="date" content="2023-11-05">
<meta name="description" content='Notes &amp; sketches'>
</head><body><p>x</p></body></html>`
	doc, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "a.html", Content: []byte(content)})
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", doc.Metadata.Author)
	require.NotNil(t, doc.Metadata.CreatedAt)
	assert.Equal(t, time.Date(2023, 11, 5, 0, 0, 0, 0, time.UTC), *doc.Metadata.CreatedAt)
	assert.Equal(t, "Notes & sketches", doc.Metadata.Extra["description"])
}

func TestStripHTML_BlockElements(t *testing.T) {
	got := stripHTML("<div>one</div><div>two</div><br/>three")
	assert.Equal(t, "one\ntwo\nthree", got)
}
