package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/domain/repository"
)

type memoryEntry struct {
	session   entity.Session
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process memory.
type MemorySessionStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemorySessionStore creates a store whose entries expire after ttl. A
// zero ttl keeps entries until deleted.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

var _ repository.SessionRepository = (*MemorySessionStore)(nil)

func (s *MemorySessionStore) Get(_ context.Context, digest string) (*entity.Session, error) {
	s.mu.RLock()
	e, ok := s.entries[digest]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, digest)
		s.mu.Unlock()
		return nil, nil
	}
	session := e.session
	if session.User != nil {
		user := *session.User
		session.User = &user
	}
	return &session, nil
}

func (s *MemorySessionStore) Save(_ context.Context, session *entity.Session) error {
	if session == nil {
		return nil
	}
	e := memoryEntry{session: *session}
	if session.User != nil {
		user := *session.User
		e.session.User = &user
	}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.entries[session.TokenDigest] = e
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, digest string) error {
	s.mu.Lock()
	delete(s.entries, digest)
	s.mu.Unlock()
	return nil
}

// Len is the number of stored sessions, expired ones included.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
