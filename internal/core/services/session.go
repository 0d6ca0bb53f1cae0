package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
	"github.com/custodia-labs/docmirror/internal/logger"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

const (
	tokenBytes = 32

	// hostLabelLength is how many token characters name the host.
	hostLabelLength = 8

	// QRCodePNGSize is the edge length of rendered PNG codes, in pixels.
	QRCodePNGSize = 256
)

// SessionService issues and validates ephemeral collaborative-access
// tokens. Expired tokens are remembered for one more TTL so that late
// validations report expired rather than unknown.
type SessionService struct {
	store    driven.TokenStore
	settings domain.SessionSettings
	now      func() time.Time
	random   io.Reader
}

// NewSessionService creates a session service.
func NewSessionService(store driven.TokenStore, settings domain.SessionSettings) *SessionService {
	d := domain.DefaultAppSettings().Session
	if settings.TTL <= 0 {
		settings.TTL = d.TTL
	}
	if settings.Host == "" {
		settings.Host = d.Host
	}
	return &SessionService{
		store:    store,
		settings: settings,
		now:      time.Now,
		random:   rand.Reader,
	}
}

// Issue creates a token valid for the configured TTL.
func (s *SessionService) Issue(ctx context.Context) (*domain.SessionGrant, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := s.now().UTC()
	token := &domain.SessionToken{
		Token:     base64.RawURLEncoding.EncodeToString(buf),
		CreatedAt: now,
		ExpiresAt: now.Add(s.settings.TTL),
	}
	if err := s.store.Put(ctx, token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	conn := ConnectionString(token.Token, s.settings.Host)
	grant := &domain.SessionGrant{
		Token:            token.Token,
		ExpiresAt:        token.ExpiresAt,
		ConnectionString: conn,
	}
	if qr, err := qrcode.New(conn, qrcode.Medium); err == nil {
		grant.QRCode = qr.ToSmallString(false)
	} else {
		logger.Warn("render session QR code: %v", err)
	}
	logger.Debug("issued session token expiring %s", token.ExpiresAt.Format(time.RFC3339))
	return grant, nil
}

// Validate reports the status of a token.
func (s *SessionService) Validate(ctx context.Context, token string) (domain.TokenStatus, error) {
	if token == "" {
		return domain.TokenUnknown, nil
	}
	t, err := s.store.Get(ctx, token)
	if err != nil {
		return "", err
	}
	if t == nil {
		return domain.TokenUnknown, nil
	}
	return t.Status(s.now()), nil
}

// Check returns the boundary error for a token that is not valid.
func (s *SessionService) Check(ctx context.Context, token string) error {
	status, err := s.Validate(ctx, token)
	if err != nil {
		return err
	}
	return status.Err()
}

// Revoke invalidates a token. Revoking twice is a no-op.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	t, err := s.store.Get(ctx, token)
	if err != nil {
		return err
	}
	if t == nil {
		return domain.ErrTokenUnknown
	}
	if t.Revoked {
		return nil
	}
	t.Revoked = true
	return s.store.Put(ctx, t)
}

// Sweep forgets tokens that expired more than one TTL ago.
func (s *SessionService) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.settings.TTL)
	n, err := s.store.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Debug("swept %d expired session tokens", n)
	}
	return n, nil
}

// ConnectionString builds the ssh URL advertised for a token.
func ConnectionString(token, host string) string {
	return fmt.Sprintf("ssh://docmirror-%s.%s", hostLabel(token), host)
}

// QRCodePNG renders a connection string as a PNG image.
func QRCodePNG(conn string) ([]byte, error) {
	return qrcode.Encode(conn, qrcode.Medium, QRCodePNGSize)
}

// hostLabel keeps the first lower-cased alphanumerics of the token so the
// label is a valid DNS name.
func hostLabel(token string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(token) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == hostLabelLength {
				break
			}
		}
	}
	return b.String()
}
