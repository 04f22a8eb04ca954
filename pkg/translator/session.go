package translator

import (
	"context"
	"sync"
	"time"

	"github.com/pagetranslate/pagetranslate/pkg/client"
)

// Session is an authenticated Ichigo session. The cookie is obtained once
// at creation and never replaced; there is no re-authentication.
type Session struct {
	mu        sync.RWMutex
	creds     Credentials
	cookie    string
	expiresAt time.Time
}

// Snapshot is a copy of the session fields a translate request needs.
type Snapshot struct {
	Fingerprint string
	ClientUUID  string
	Cookie      string
}

// NewSession logs in and returns the resulting session. A failed login
// returns the *client.AuthError and no session.
func NewSession(ctx context.Context, c *client.Client, creds Credentials) (*Session, error) {
	result, err := c.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}

	return &Session{
		creds:     creds,
		cookie:    result.Cookie,
		expiresAt: result.ExpiresAt,
	}, nil
}

// Snapshot copies the request fields. The lock is held only for the copy,
// never across encoding or network I/O.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Fingerprint: s.creds.Fingerprint,
		ClientUUID:  s.creds.ClientUUID,
		Cookie:      s.cookie,
	}
}

// Email returns the identity the session was created for.
func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Email
}

// ExpiresAt returns the access token expiry, zero if unknown.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}
