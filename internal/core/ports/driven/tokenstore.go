package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// TokenStore holds issued session tokens.
type TokenStore interface {
	// Put stores or replaces a token.
	Put(ctx context.Context, token *domain.SessionToken) error

	// Get returns the token, or nil when it was never issued or has been
	// swept.
	Get(ctx context.Context, token string) (*domain.SessionToken, error)

	// DeleteExpiredBefore removes every token that expired before cutoff
	// and returns how many were removed.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int, error)
}
