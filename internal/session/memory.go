package session

import (
	"context"
	"sync"
	"time"

	"github.com/keja/keja/internal/model"
)

// MemoryStore keeps sessions in process memory. Sessions do not survive a
// restart and are not shared between instances.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	now      func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]model.Session),
		now:      time.Now,
	}
}

// Save stores a copy of the session.
func (s *MemoryStore) Save(ctx context.Context, key string, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = *sess
	return nil
}

// Load returns the session for key. Expired entries are dropped on read.
func (s *MemoryStore) Load(ctx context.Context, key string) (*model.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	if sess.IsExpiredAt(s.now()) {
		s.mu.Lock()
		delete(s.sessions, key)
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

// Delete removes the session.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of stored sessions, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
