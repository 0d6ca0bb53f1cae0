package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore keeps session tokens in memory. Tokens are never persisted:
// restarting the process invalidates every session.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]domain.SessionToken
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]domain.SessionToken)}
}

// Put stores or replaces a token.
func (s *TokenStore) Put(_ context.Context, token *domain.SessionToken) error {
	if token == nil || token.Token == "" {
		return domain.NewError(domain.KindInvalidInput, "empty session token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.Token] = *token
	return nil
}

// Get returns the token, or nil when it is not held.
func (s *TokenStore) Get(_ context.Context, token string) (*domain.SessionToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[token]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// DeleteExpiredBefore removes tokens that expired before cutoff.
func (s *TokenStore) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, t := range s.tokens {
		if t.ExpiresAt.Before(cutoff) {
			delete(s.tokens, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of held tokens.
func (s *TokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}
