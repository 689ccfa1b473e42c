// Package session owns the authenticated remote session. Other components
// borrow a Session per action and never hold one across tasks.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/joonhok/cafeloop/internal/naver"
)

// expiryMargin re-logs-in slightly before the reported expiry so a session
// never goes stale mid-action.
const expiryMargin = time.Minute

// Session is an authenticated context for one identity. The transport-level
// state (cookies) lives in the client; Session tracks validity.
type Session struct {
	Identity  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// LoginClient is the slice of the remote client the store needs.
type LoginClient interface {
	Login(ctx context.Context, id, password string) (time.Time, error)
}

// Store issues valid sessions, logging in on demand and re-logging-in after
// invalidation or expiry. It is the only holder of the credentials.
type Store struct {
	mu sync.Mutex

	client   LoginClient
	id       string
	password string

	cur *Session

	// authRetries is the extra login attempts allowed after a credential
	// rejection before the error is surfaced (run-fatal upstream).
	authRetries int
}

// NewStore creates a session store. authRetries < 0 falls back to 1.
func NewStore(client LoginClient, id, password string, authRetries int) *Store {
	if authRetries < 0 {
		authRetries = 1
	}
	return &Store{
		client:      client,
		id:          id,
		password:    password,
		authRetries: authRetries,
	}
}

// Acquire returns a currently valid session, performing the login sequence
// when none is held or the held one expired. Transport failures are retried
// with exponential backoff; credential rejections consume the small auth
// budget; captcha challenges surface immediately.
func (s *Store) Acquire(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur != nil && time.Now().Before(s.cur.ExpiresAt.Add(-expiryMargin)) {
		return s.cur, nil
	}
	s.cur = nil

	var lastErr error
	for attempt := 0; attempt <= s.authRetries; attempt++ {
		expiry, err := s.login(ctx)
		if err == nil {
			s.cur = &Session{
				Identity:  s.id,
				CreatedAt: time.Now(),
				ExpiresAt: expiry,
			}
			return s.cur, nil
		}
		lastErr = err
		if !errors.Is(err, naver.ErrAuth) {
			// Captcha, cancellation, or exhausted transport retries.
			return nil, err
		}
	}
	return nil, fmt.Errorf("giving up after %d login attempts: %w", s.authRetries+1, lastErr)
}

// login performs one login sequence, retrying transport-level failures.
func (s *Store) login(ctx context.Context) (time.Time, error) {
	var expiry time.Time
	op := func() error {
		exp, err := s.client.Login(ctx, s.id, s.password)
		if err != nil {
			if errors.Is(err, naver.ErrAuth) || errors.Is(err, naver.ErrCaptcha) {
				return backoff.Permanent(err)
			}
			return err
		}
		expiry = exp
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, 3), ctx)); err != nil {
		return time.Time{}, err
	}
	return expiry, nil
}

// Invalidate marks the session unusable, forcing the next Acquire to
// re-login. Called when the executor sees a logged-out response.
func (s *Store) Invalidate(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == sess {
		s.cur = nil
	}
}
