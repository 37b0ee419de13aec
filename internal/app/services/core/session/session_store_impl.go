package session

import (
	"sync"

	"carealert-service/internal/app/contracts"
	"carealert-service/internal/app/models"
)

// sessionStore holds the single live session. The resolver is the only
// writer; everything else reads.
type sessionStore struct {
	mu      sync.RWMutex
	current *models.Session
}

func NewSessionStore() contracts.SessionStore {
	return &sessionStore{}
}

func (s *sessionStore) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *sessionStore) Set(session *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = session
}

func (s *sessionStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}
