// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
)

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Query   domain.SearchQuery
	Results []domain.SearchResult
	Err     error
}

// ModeChanged is sent when the search mode is cycled.
type ModeChanged struct {
	Mode domain.SearchMode
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewHelp is the help/keybindings view.
	ViewHelp
	// ViewDocuments lists mirrored documents.
	ViewDocuments
	// ViewDocContent shows the extracted text of a document.
	ViewDocContent
	// ViewDocDetails shows document metadata.
	ViewDocDetails
	// ViewSession shows a collaborative session grant.
	ViewSession
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewHelp:
		return "help"
	case ViewDocuments:
		return "documents"
	case ViewDocContent:
		return "doc_content"
	case ViewDocDetails:
		return "doc_details"
	case ViewSession:
		return "session"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// StatusMessage is a transient notice for the status bar.
type StatusMessage struct {
	Text string
}

// DocumentsLoaded carries the mirrored documents.
type DocumentsLoaded struct {
	Documents []driving.DocumentDetails
	Err       error
}

// DocumentSelected signals a document was chosen for its content view.
type DocumentSelected struct {
	Details driving.DocumentDetails
}

// DocumentDetailsLoaded carries a resolved document for the details view.
type DocumentDetailsLoaded struct {
	Ref     string
	Details *driving.DocumentDetails
	Err     error
}

// SyncCompleted signals a resynchronisation of the remembered roots
// finished.
type SyncCompleted struct {
	Roots int
	Err   error
}

// SessionIssued carries a newly issued session grant.
type SessionIssued struct {
	Grant *domain.SessionGrant
	Err   error
}

// SessionRevoked signals the displayed token was revoked.
type SessionRevoked struct {
	Token string
	Err   error
}

// SyncRequested asks for the remembered roots to be resynchronised.
type SyncRequested struct{}
