// Package session provides per-client server-side state keyed by an opaque
// token. Handlers receive the store as a dependency; the token travels in a
// cookie.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Store holds one display name per session token. Sessions never expire on
// their own; logout deletes them.
type Store interface {
	// Create registers a new session and returns its opaque token.
	Create(displayName string) (token string)
	// Get returns the display name for a token, if the session exists.
	Get(token string) (displayName string, ok bool)
	// Delete invalidates the session. Unknown tokens are ignored.
	Delete(token string)
}

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]string)}
}

func (s *MemoryStore) Create(displayName string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = displayName
	s.mu.Unlock()
	return token
}

func (s *MemoryStore) Get(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.sessions[token]
	return name, ok
}

func (s *MemoryStore) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Len returns the number of active sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
