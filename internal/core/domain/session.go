package domain

import "time"

// SessionToken is an opaque, time-limited collaborative-access credential.
// It carries no document permissions; it is a connectivity handshake only.
type SessionToken struct {
	// Token is the opaque identifier.
	Token string

	// CreatedAt is when the token was issued.
	CreatedAt time.Time

	// ExpiresAt is when the token stops being valid.
	ExpiresAt time.Time

	// Revoked is set by an explicit revocation.
	Revoked bool
}

// Status evaluates the token at the given instant.
func (t *SessionToken) Status(now time.Time) TokenStatus {
	switch {
	case t.Revoked:
		return TokenRevoked
	case !now.Before(t.ExpiresAt):
		return TokenExpired
	default:
		return TokenValid
	}
}

// TokenStatus is the result of validating a session token.
type TokenStatus string

// Token validation results.
const (
	TokenValid   TokenStatus = "valid"
	TokenExpired TokenStatus = "expired"
	TokenRevoked TokenStatus = "revoked"
	TokenUnknown TokenStatus = "unknown"
)

// Err converts a non-valid status into its boundary error. Valid returns nil.
func (s TokenStatus) Err() error {
	switch s {
	case TokenValid:
		return nil
	case TokenExpired:
		return ErrTokenExpired
	case TokenRevoked:
		return ErrTokenRevoked
	default:
		return ErrTokenUnknown
	}
}

// SessionGrant is what the session boundary returns to a caller: the token,
// its expiry, and a connection string with a scannable encoding of it.
type SessionGrant struct {
	Token            string    `json:"token"`
	ExpiresAt        time.Time `json:"expiresAt"`
	ConnectionString string    `json:"connectionString"`
	QRCode           string    `json:"qrCode,omitempty"`
}
