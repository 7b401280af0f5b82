package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
)

// SessionStore keeps server sessions and locks in memory.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	locks    map[string]time.Time
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.Session),
		locks:    make(map[string]time.Time),
		now:      time.Now,
	}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.IsExpired(s.now()) {
		delete(s.sessions, id)
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = s.now()
	}
	s.sessions[session.ID] = *session
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if until, ok := s.locks[key]; ok && s.now().Before(until) {
		return nil, domain.ErrBusy
	}
	s.locks[key] = s.now().Add(ttl)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.locks, key)
	}, nil
}

var (
	_ repository.SessionRepository = (*SessionStore)(nil)
	_ repository.Locker            = (*SessionStore)(nil)
)
