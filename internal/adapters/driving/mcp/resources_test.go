package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
)

func TestParseDocumentURI(t *testing.T) {
	tests := []struct {
		name   string
		uri    string
		hash   string
		format string
	}{
		{name: "document", uri: "docmirror://documents/abc123", hash: "abc123"},
		{name: "document with format", uri: "docmirror://documents/abc123/yaml", hash: "abc123", format: "yaml"},
		{name: "invalid prefix", uri: "file://documents/abc123"},
		{name: "missing hash", uri: "docmirror://documents/"},
		{name: "empty URI", uri: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, format := parseDocumentURI(tt.uri)
			assert.Equal(t, tt.hash, hash)
			assert.Equal(t, tt.format, format)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func newDocumentServer(t *testing.T, docs *mockDocumentService, conv *mockConversionService) *Server {
	t.Helper()
	ports := &Ports{Search: &mockSearchService{}, Document: docs}
	if conv != nil {
		ports.Conversion = conv
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func sampleDocuments() *mockDocumentService {
	return &mockDocumentService{docs: []driving.DocumentDetails{{
		Document: &domain.NormalizedDocument{Hash: "abc123", Title: "Notes", Text: "hello world", MIMEType: "text/plain"},
		Paths:    []string{"notes.txt", "copy/notes.txt"},
	}}}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists documents", func(t *testing.T) {
		server := newDocumentServer(t, sampleDocuments(), nil)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docmirror://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"hash": "abc123"`)
		assert.Contains(t, result.Contents[0].Text, "copy/notes.txt")
		assert.Contains(t, result.Contents[0].Text, "docmirror://documents/abc123")
	})

	t.Run("empty store is an empty list", func(t *testing.T) {
		server := newDocumentServer(t, &mockDocumentService{}, nil)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docmirror://documents"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		server := newDocumentServer(t, &mockDocumentService{err: errors.New("database error")}, nil)

		_, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docmirror://documents"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})
}

func TestServer_handleDocumentContentResource(t *testing.T) {
	ctx := context.Background()
	server := newDocumentServer(t, sampleDocuments(), nil)

	t.Run("returns extracted text", func(t *testing.T) {
		result, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest("docmirror://documents/abc123"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
		assert.Equal(t, "hello world", result.Contents[0].Text)
	})

	t.Run("unknown hash is not found", func(t *testing.T) {
		_, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest("docmirror://documents/nope"))
		require.Error(t, err)
	})

	t.Run("invalid URI is not found", func(t *testing.T) {
		_, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest("docmirror://invalid"))
		require.Error(t, err)
	})
}

func TestServer_handleDocumentConversionResource(t *testing.T) {
	ctx := context.Background()

	t.Run("renders requested format", func(t *testing.T) {
		conv := &mockConversionService{data: []byte("hash,title\nabc123,Notes\n")}
		server := newDocumentServer(t, sampleDocuments(), conv)

		result, err := server.handleDocumentConversionResource(ctx, makeReadResourceRequest("docmirror://documents/abc123/csv"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/csv", result.Contents[0].MIMEType)
		assert.Equal(t, "abc123", conv.ref)
		assert.Equal(t, domain.FormatTabular, conv.format)
	})

	t.Run("unknown format fails", func(t *testing.T) {
		server := newDocumentServer(t, sampleDocuments(), &mockConversionService{})

		_, err := server.handleDocumentConversionResource(ctx, makeReadResourceRequest("docmirror://documents/abc123/docx"))

		assert.ErrorIs(t, err, domain.ErrUnsupportedTargetFormat)
	})

	t.Run("missing document is not found", func(t *testing.T) {
		conv := &mockConversionService{err: domain.NewError(domain.KindNotFound, "gone")}
		server := newDocumentServer(t, sampleDocuments(), conv)

		_, err := server.handleDocumentConversionResource(ctx, makeReadResourceRequest("docmirror://documents/zzz/json"))

		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrUnsupportedTargetFormat)
	})
}
