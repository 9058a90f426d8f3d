package sessions

import (
	"context"
	"sync"

	"photo-exchange-bot/internal/models"
)

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*models.VisitorSession
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]*models.VisitorSession),
	}
}

// Get returns a copy of the visitor's session, or nil if there is none
func (s *MemoryStore) Get(_ context.Context, visitorID int64) (*models.VisitorSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[visitorID]
	if !ok {
		return nil, nil
	}
	return clone(session), nil
}

// Save stores a copy of the session
func (s *MemoryStore) Save(_ context.Context, session *models.VisitorSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.VisitorID] = clone(session)
	return nil
}

// Len returns the number of stored sessions
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func clone(s *models.VisitorSession) *models.VisitorSession {
	c := *s
	c.VerifiedPhotos = append([]string(nil), s.VerifiedPhotos...)
	c.SentOwnerPhotos = make(map[string]struct{}, len(s.SentOwnerPhotos))
	for id := range s.SentOwnerPhotos {
		c.SentOwnerPhotos[id] = struct{}{}
	}
	return &c
}
