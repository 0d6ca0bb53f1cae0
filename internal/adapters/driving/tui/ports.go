// Package tui provides an interactive terminal user interface for docmirror.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI calls. Only Search is
// required; views for the others are hidden when they are nil.
type Ports struct {
	Search       driving.SearchService
	Sync         driving.Synchronizer
	Document     driving.DocumentService
	ResultAction driving.ResultActionService
	Session      driving.SessionService

	// DefaultMode is the search mode the search view starts in.
	DefaultMode domain.SearchMode
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
