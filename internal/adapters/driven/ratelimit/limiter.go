// Package ratelimit throttles calls to remote capability providers.
//
// A Limiter combines a token bucket with a backoff window that opens when
// a provider answers 429. The Embedding and Summary wrappers apply one to
// every request and retry throttled calls.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docmirror/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/docmirror/internal/logger"
)

// DefaultBackoff applies when a 429 response carries no Retry-After.
const DefaultBackoff = 5 * time.Second

// MaxRetries is how many times a throttled call is retried.
const MaxRetries = 2

// Limiter is a token bucket with a provider-imposed backoff window.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// New creates a limiter allowing rps requests per second. rps <= 0 means
// unlimited, leaving only the backoff window in effect.
func New(rps float64) *Limiter {
	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = max(1, int(rps))
	}
	return &Limiter{
		limiter: rate.NewLimiter(limit, burst),
		now:     time.Now,
	}
}

// Wait blocks until a request may be sent.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if d := retryAt.Sub(l.now()); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return l.limiter.Wait(ctx)
}

// Backoff pauses all requests for d, or DefaultBackoff when d <= 0. An
// earlier deadline never shortens a later one.
func (l *Limiter) Backoff(d time.Duration) {
	if d <= 0 {
		d = DefaultBackoff
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if at := l.now().Add(d); at.After(l.retryAt) {
		l.retryAt = at
	}
}

// do runs call under the limiter, retrying when the provider throttles.
func (l *Limiter) do(ctx context.Context, name string, call func() error) error {
	var err error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if werr := l.Wait(ctx); werr != nil {
			return werr
		}
		err = call()

		var se *httpapi.StatusError
		if !errors.As(err, &se) || !se.Throttled() {
			return err
		}
		logger.Debug("%s throttled, backing off %s (attempt %d)", name, se.RetryAfter, attempt+1)
		l.Backoff(se.RetryAfter)
	}
	return err
}
