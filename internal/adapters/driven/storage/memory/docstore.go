package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Documents are cloned on the way in and out so callers never share state
// with the store.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.NormalizedDocument
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*domain.NormalizedDocument),
	}
}

// SaveDocument stores or replaces a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.NormalizedDocument) error {
	if doc == nil || doc.Hash == "" {
		return domain.NewError(domain.KindInvalidInput, "document without hash")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.Hash] = doc.Clone()
	return nil
}

// GetDocument retrieves a document by hash.
func (s *DocumentStore) GetDocument(_ context.Context, hash string) (*domain.NormalizedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc.Clone(), nil
}

// HasDocument reports whether a document with this hash is stored.
func (s *DocumentStore) HasDocument(_ context.Context, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.documents[hash]
	return ok, nil
}

// DeleteDocument removes a document.
func (s *DocumentStore) DeleteDocument(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, hash)
	return nil
}

// ListDocuments returns all stored documents ordered by hash.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.NormalizedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.NormalizedDocument, 0, len(s.documents))
	for _, hash := range slices.Sorted(maps.Keys(s.documents)) {
		docs = append(docs, *s.documents[hash].Clone())
	}
	return docs, nil
}
