// Package handlers – admin sessions
//
// Server-side session store for the admin panel. Tokens are random UUIDs
// handed out in an HttpOnly cookie; nothing about the session is stored
// client-side, so a stolen cookie is only valid until expiry or logout.

package handlers

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionCookie = "admin_session"

// SessionStore issues and validates admin session tokens.
type SessionStore struct {
	TTL time.Duration

	mu       sync.Mutex
	sessions map[string]time.Time // token -> expiry

	// now is a seam for expiry tests.
	now func() time.Time
}

// NewSessionStore builds a store with the given session lifetime.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionStore{
		TTL:      ttl,
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Issue creates a new session and returns its token.
func (s *SessionStore) Issue() string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = s.now().Add(s.TTL)
	s.mu.Unlock()
	return token
}

// Valid reports whether the token names a live session. Expired sessions are
// pruned on lookup.
func (s *SessionStore) Valid(token string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.sessions[token]
	if !ok {
		return false
	}
	if s.now().After(exp) {
		delete(s.sessions, token)
		return false
	}
	return true
}

// Revoke ends the session named by token, if any.
func (s *SessionStore) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
