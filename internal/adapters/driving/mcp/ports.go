package mcp

import (
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides search capabilities.
	Search driving.SearchService

	// Sync mirrors directories on request.
	Sync driving.Synchronizer

	// Conversion renders documents into interchange formats.
	Conversion driving.ConversionService

	// Session issues and validates collaborative session tokens.
	Session driving.SessionService

	// Document resolves documents by hash or path.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// The remaining ports are optional; their tools are only registered
	// when the port is present.
	return nil
}
