package services

import (
	"context"
	"sync"
	"time"

	"biodb-backend-go/internal/models"

	"github.com/google/uuid"
)

// SessionContext is the per-session login state. The zero value is an
// anonymous session.
type SessionContext struct {
	mu            sync.RWMutex
	authenticated bool
	user          *models.User
}

func NewSessionContext() *SessionContext {
	return &SessionContext{}
}

func (s *SessionContext) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// User returns a copy of the logged-in user, or nil for an anonymous session.
func (s *SessionContext) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// Role is empty while the session is anonymous.
func (s *SessionContext) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authenticated || s.user == nil {
		return ""
	}
	return s.user.Role
}

func (s *SessionContext) signIn(user models.User) {
	s.mu.Lock()
	s.authenticated = true
	s.user = &user
	s.mu.Unlock()
}

func (s *SessionContext) signOut() {
	s.mu.Lock()
	s.authenticated = false
	s.user = nil
	s.mu.Unlock()
}

// SessionStore keeps live sessions in memory; they do not survive a restart.
// Entries past their expiry are treated as missing and evicted.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]sessionEntry
	Now      func() time.Time
}

type sessionEntry struct {
	sess      *SessionContext
	expiresAt time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]sessionEntry{}, Now: time.Now}
}

// Put stores sess until expiresAt; a zero expiresAt never expires.
func (s *SessionStore) Put(sess *SessionContext, expiresAt time.Time) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = sessionEntry{sess: sess, expiresAt: expiresAt}
	s.mu.Unlock()
	return id
}

func (s *SessionStore) Get(id string) (*SessionContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if entry.expired(s.Now()) {
		delete(s.sessions, id)
		return nil, false
	}
	return entry.sess, true
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	now := s.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.sessions {
		if entry.expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps the store every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

func (e sessionEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
