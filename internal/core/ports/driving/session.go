package driving

import (
	"context"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// SessionService issues and validates collaborative-access tokens.
type SessionService interface {
	// Issue creates a fresh token with the configured lifetime.
	Issue(ctx context.Context) (*domain.SessionGrant, error)

	// Validate reports the token's status.
	Validate(ctx context.Context, token string) (domain.TokenStatus, error)

	// Check returns nil for a valid token and the matching TokenExpired,
	// TokenRevoked or TokenUnknown error otherwise.
	Check(ctx context.Context, token string) error

	// Revoke invalidates a token. Unknown tokens fail with TokenUnknown.
	Revoke(ctx context.Context, token string) error

	// Sweep forgets tokens that expired longer ago than the grace period.
	Sweep(ctx context.Context) (int, error)
}
