// Package mcp provides an MCP (Model Context Protocol) server adapter for docmirror.
// It lets AI assistants search, convert and synchronise mirrored documents.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
