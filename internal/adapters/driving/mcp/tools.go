package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query  string `json:"query" jsonschema:"the search query"`
	Mode   string `json:"mode,omitempty" jsonschema:"keyword, context or filename (default keyword)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 20)"`
	Offset int    `json:"offset,omitempty" jsonschema:"number of results to skip"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []domain.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// ConvertInput is the input schema for the convert tool.
type ConvertInput struct {
	Ref    string `json:"ref" jsonschema:"content hash or indexed source path of the document"`
	Format string `json:"format" jsonschema:"target format: structured-markup, record, tabular or yaml"`
}

// ConvertOutput is the output schema for the convert tool.
type ConvertOutput struct {
	Format  string `json:"format"`
	Content string `json:"content"`
}

// SyncInput is the input schema for the sync tool.
type SyncInput struct {
	Root string `json:"root" jsonschema:"source directory to mirror"`
	Out  string `json:"out,omitempty" jsonschema:"output directory (defaults to the root's previous output)"`
}

// SyncOutput is the output schema for the sync tool.
type SyncOutput struct {
	domain.ChangesetSummary
	Documents int `json:"documents"`
}

// IssueSessionInput is the input schema for the issue_session tool.
type IssueSessionInput struct{}

// ValidateSessionInput is the input schema for the validate_session tool.
type ValidateSessionInput struct {
	Token string `json:"token" jsonschema:"the session token to check"`
}

// ValidateSessionOutput is the output schema for the validate_session tool.
type ValidateSessionOutput struct {
	Status string `json:"status"`
	Valid  bool   `json:"valid"`
}

// registerTools registers all tool handlers with the MCP server.
// Tools backed by an optional port are skipped when the port is nil.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search mirrored documents by keyword, semantic context or filename",
	}, s.handleSearch)

	if s.ports.Conversion != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "convert",
			Description: "Render a document as structured markup, record JSON, tabular CSV or YAML",
		}, s.handleConvert)
	}

	if s.ports.Sync != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "sync",
			Description: "Mirror a directory into its output tree and report what changed",
		}, s.handleSync)
	}

	if s.ports.Session != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "issue_session",
			Description: "Issue a time-limited collaborative session token",
		}, s.handleIssueSession)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "validate_session",
			Description: "Check whether a session token is valid, expired, revoked or unknown",
		}, s.handleValidateSession)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	query := domain.SearchQuery{
		Query:  input.Query,
		Mode:   domain.SearchMode(input.Mode),
		Limit:  input.Limit,
		Offset: input.Offset,
	}
	results, err := s.ports.Search.Search(ctx, query)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return nil, SearchOutput{Results: results, Count: len(results)}, nil
}

// handleConvert handles the convert tool invocation.
func (s *Server) handleConvert(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConvertInput,
) (*mcp.CallToolResult, ConvertOutput, error) {
	format, err := domain.ParseFormat(input.Format)
	if err != nil {
		return nil, ConvertOutput{}, err
	}
	data, err := s.ports.Conversion.ConvertIndexed(ctx, input.Ref, format)
	if err != nil {
		return nil, ConvertOutput{}, err
	}
	return nil, ConvertOutput{Format: format.String(), Content: string(data)}, nil
}

// handleSync handles the sync tool invocation. A partial failure is
// reported in the output rather than as a tool error.
func (s *Server) handleSync(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SyncInput,
) (*mcp.CallToolResult, SyncOutput, error) {
	result, err := s.ports.Sync.SyncRoot(ctx, input.Root, input.Out)
	var partial *domain.PartialSyncFailure
	if err != nil && !errors.As(err, &partial) {
		return nil, SyncOutput{}, err
	}

	out := SyncOutput{ChangesetSummary: result.Changeset.Summary()}
	if result.Snapshot != nil {
		out.Documents = result.Snapshot.Len()
	}
	return nil, out, nil
}

// handleIssueSession handles the issue_session tool invocation.
func (s *Server) handleIssueSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ IssueSessionInput,
) (*mcp.CallToolResult, domain.SessionGrant, error) {
	grant, err := s.ports.Session.Issue(ctx)
	if err != nil {
		return nil, domain.SessionGrant{}, err
	}
	return nil, *grant, nil
}

// handleValidateSession handles the validate_session tool invocation.
func (s *Server) handleValidateSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ValidateSessionInput,
) (*mcp.CallToolResult, ValidateSessionOutput, error) {
	status, err := s.ports.Session.Validate(ctx, input.Token)
	if err != nil {
		return nil, ValidateSessionOutput{}, err
	}
	return nil, ValidateSessionOutput{
		Status: string(status),
		Valid:  status == domain.TokenValid,
	}, nil
}
