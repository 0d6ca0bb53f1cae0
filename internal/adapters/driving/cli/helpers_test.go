package cli

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
)

// mockSearchService implements driving.SearchService for testing.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
	last    domain.SearchQuery
}

func (m *mockSearchService) Search(_ context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	m.last = query
	return m.results, m.err
}

// mockSynchronizer implements driving.Synchronizer for testing.
type mockSynchronizer struct {
	driving.Synchronizer
	mu       sync.Mutex
	result   *driving.SyncResult
	err      error
	synced   int
	roots    []string
	watching string
}

func (m *mockSynchronizer) SyncRoot(_ context.Context, root, out string) (*driving.SyncResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roots = append(m.roots, root+"->"+out)
	return m.result, m.err
}

func (m *mockSynchronizer) SyncAll(context.Context) (int, error) {
	return m.synced, m.err
}

func (m *mockSynchronizer) Watch(_ context.Context, root, _ string) error {
	m.watching = root
	return m.err
}

func (m *mockSynchronizer) Status() driving.SyncStatus {
	return driving.SyncStatus{}
}

// mockConversionService implements driving.ConversionService for testing.
type mockConversionService struct {
	driving.ConversionService
	data []byte
	job  *domain.ConversionJob
	err  error
}

func (m *mockConversionService) Convert(context.Context, string, domain.Format) ([]byte, error) {
	return m.data, m.err
}

func (m *mockConversionService) Submit(_ context.Context, _ string, format domain.Format, _ string) (*domain.ConversionJob, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ConversionJob{ID: "job-1", Format: format, Status: domain.JobPending}, nil
}

func (m *mockConversionService) Wait(context.Context, string) (*domain.ConversionJob, error) {
	return m.job, nil
}

// mockSessionService implements driving.SessionService for testing.
type mockSessionService struct {
	driving.SessionService
	grant   *domain.SessionGrant
	status  domain.TokenStatus
	revoked []string
	err     error
}

func (m *mockSessionService) Issue(context.Context) (*domain.SessionGrant, error) {
	return m.grant, m.err
}

func (m *mockSessionService) Validate(context.Context, string) (domain.TokenStatus, error) {
	return m.status, m.err
}

func (m *mockSessionService) Revoke(_ context.Context, token string) error {
	if m.err != nil {
		return m.err
	}
	m.revoked = append(m.revoked, token)
	return nil
}

// mockDocumentService implements driving.DocumentService for testing.
type mockDocumentService struct {
	docs []driving.DocumentDetails
}

func (m *mockDocumentService) Resolve(_ context.Context, ref string) (*driving.DocumentDetails, error) {
	for i := range m.docs {
		if m.docs[i].Document.Hash == ref {
			return &m.docs[i], nil
		}
		for _, p := range m.docs[i].Paths {
			if p == ref {
				return &m.docs[i], nil
			}
		}
	}
	return nil, domain.NewError(domain.KindNotFound, "no document matches %q", ref)
}

func (m *mockDocumentService) List(context.Context) ([]driving.DocumentDetails, error) {
	return m.docs, nil
}

// mockActionService implements driving.ResultActionService for testing.
type mockActionService struct {
	driving.ResultActionService
	opened []string
}

func (m *mockActionService) OpenDocument(_ context.Context, result *domain.SearchResult) error {
	m.opened = append(m.opened, result.Path)
	return nil
}

// testServices holds the fakes installed by setupTestServices.
type testServices struct {
	search     *mockSearchService
	sync       *mockSynchronizer
	conversion *mockConversionService
	session    *mockSessionService
	document   *mockDocumentService
	actions    *mockActionService
}

// setupTestServices installs fakes with sample data and returns a cleanup
// function restoring the previous services and flag values.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		search: &mockSearchService{results: []domain.SearchResult{
			{Hash: "aaaa1111", Path: "notes/a.txt", Title: "Meeting notes", Score: 1.5, Snippet: "the quarterly budget"},
			{Hash: "bbbb2222", Path: "data/b.csv", Score: 0.25},
		}},
		sync:       &mockSynchronizer{},
		conversion: &mockConversionService{},
		session:    &mockSessionService{},
		document: &mockDocumentService{docs: []driving.DocumentDetails{{
			Document: &domain.NormalizedDocument{
				Hash:     "aaaa1111",
				Title:    "Meeting notes",
				Text:     "the quarterly budget",
				MIMEType: "text/plain",
				Format:   "plaintext",
				Metadata: domain.Metadata{Language: "en", Extra: map[string]string{"lines": "1"}},
				Entities: []domain.Entity{{Type: domain.EntityEmail, Text: "a@example.com"}},
			},
			Paths: []string{"notes/a.txt", "copy/a.txt"},
		}}},
		actions: &mockActionService{},
	}

	resetFlags()
	resetContexts(rootCmd)

	old := Services{
		Sync: syncService, Search: searchService, Document: documentService,
		Conversion: conversionService, Session: sessionService, Settings: settingsService,
		ResultAction: actionService, Scheduler: scheduler, SchedulerConfig: schedulerConfig,
	}
	SetServices(&Services{
		Sync:         ts.sync,
		Search:       ts.search,
		Document:     ts.document,
		Conversion:   ts.conversion,
		Session:      ts.session,
		ResultAction: ts.actions,
	})

	return ts, func() {
		SetServices(&old)
		rootCmd.SetArgs(nil)
		resetFlags()
		resetContexts(rootCmd)
	}
}

// resetContexts clears the contexts cobra stores on each command during
// execution, so the next execution hands its own context down again.
func resetContexts(cmd *cobra.Command) {
	//nolint:staticcheck // a nil context makes the command inherit its parent's
	cmd.SetContext(nil)
	for _, c := range cmd.Commands() {
		resetContexts(c)
	}
}

// resetFlags restores flag variables that persist between executions.
func resetFlags() {
	syncOut, syncWatch, syncJSON = "", false, false
	searchMode, searchLimit, searchOffset, searchJSON = "", 0, 0, false
	convertFormat, convertOutput = "", ""
	sessionPNG, sessionJSON, sessionHold = "", false, false
	showJSON = false
}
