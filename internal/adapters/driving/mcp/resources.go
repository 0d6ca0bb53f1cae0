package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for docmirror resources.
	uriScheme = "docmirror://"

	documentsPrefix = uriScheme + "documents/"
)

// formatMIMETypes maps conversion formats onto resource MIME types.
var formatMIMETypes = map[domain.Format]string{
	domain.FormatMarkup:  "application/xml",
	domain.FormatRecord:  "application/json",
	domain.FormatTabular: "text/csv",
	domain.FormatYAML:    "application/yaml",
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Document == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Every mirrored document with its source paths",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsPrefix + "{hash}",
		Name:        "document-content",
		Description: "Extracted text of a document, by content hash",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)

	if s.ports.Conversion != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: documentsPrefix + "{hash}/{format}",
			Name:        "document-conversion",
			Description: "A document rendered in an interchange format",
		}, s.handleDocumentConversionResource)
	}
}

// documentInfo is the listing entry for one document.
type documentInfo struct {
	Hash  string   `json:"hash"`
	Title string   `json:"title"`
	MIME  string   `json:"mimeType"`
	Paths []string `json:"paths"`
	URI   string   `json:"uri"`
}

// handleDocumentsResource lists every mirrored document.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	infos := make([]documentInfo, 0, len(docs))
	for _, d := range docs {
		infos = append(infos, documentInfo{
			Hash:  d.Document.Hash,
			Title: d.Document.Title,
			MIME:  d.Document.MIMEType,
			Paths: d.Paths,
			URI:   documentsPrefix + d.Document.Hash,
		})
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}
	return textResult(req.Params.URI, "application/json", string(data)), nil
}

// handleDocumentContentResource returns the extracted text of a document.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	hash, format := parseDocumentURI(req.Params.URI)
	if hash == "" || format != "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	details, err := s.ports.Document.Resolve(ctx, hash)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving document: %w", err)
	}
	return textResult(req.Params.URI, "text/plain", details.Document.Text), nil
}

// handleDocumentConversionResource renders a document in the format named
// by the last URI segment.
func (s *Server) handleDocumentConversionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	hash, name := parseDocumentURI(req.Params.URI)
	if hash == "" || name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	format, err := domain.ParseFormat(name)
	if err != nil {
		return nil, err
	}

	data, err := s.ports.Conversion.ConvertIndexed(ctx, hash, format)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("converting document: %w", err)
	}
	return textResult(req.Params.URI, formatMIMETypes[format], string(data)), nil
}

// parseDocumentURI splits docmirror://documents/{hash}[/{format}].
func parseDocumentURI(uri string) (hash, format string) {
	rest, ok := strings.CutPrefix(uri, documentsPrefix)
	if !ok || rest == "" {
		return "", ""
	}
	hash, format, _ = strings.Cut(rest, "/")
	return hash, format
}

func textResult(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		}},
	}
}
