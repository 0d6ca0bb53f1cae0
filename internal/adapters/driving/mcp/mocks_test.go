package mcp

import (
	"context"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
	last    domain.SearchQuery
}

func (m *mockSearchService) Search(_ context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	m.last = query
	return m.results, m.err
}

// mockSynchronizer is a mock implementation of driving.Synchronizer.
type mockSynchronizer struct {
	driving.Synchronizer
	result *driving.SyncResult
	err    error
	root   string
	out    string
}

func (m *mockSynchronizer) SyncRoot(_ context.Context, root, out string) (*driving.SyncResult, error) {
	m.root, m.out = root, out
	return m.result, m.err
}

// mockConversionService is a mock implementation of driving.ConversionService.
type mockConversionService struct {
	driving.ConversionService
	data   []byte
	err    error
	ref    string
	format domain.Format
}

func (m *mockConversionService) ConvertIndexed(_ context.Context, ref string, format domain.Format) ([]byte, error) {
	m.ref, m.format = ref, format
	return m.data, m.err
}

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	driving.SessionService
	grant  *domain.SessionGrant
	status domain.TokenStatus
	err    error
}

func (m *mockSessionService) Issue(context.Context) (*domain.SessionGrant, error) {
	return m.grant, m.err
}

func (m *mockSessionService) Validate(context.Context, string) (domain.TokenStatus, error) {
	return m.status, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	docs []driving.DocumentDetails
	err  error
}

func (m *mockDocumentService) Resolve(_ context.Context, ref string) (*driving.DocumentDetails, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].Document.Hash == ref {
			return &m.docs[i], nil
		}
	}
	return nil, domain.NewError(domain.KindNotFound, "no document %q", ref)
}

func (m *mockDocumentService) List(context.Context) ([]driving.DocumentDetails, error) {
	return m.docs, m.err
}
