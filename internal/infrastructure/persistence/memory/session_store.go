package memory

import (
	"context"
	"sync"
	"time"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/user"
)

// SessionStore 内存会话存储，过期项在访问时清理
type SessionStore struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]time.Time // userID -> 过期时间
	revoked  map[string]time.Time // tokenID -> 过期时间
}

var _ user.SessionStore = (*SessionStore)(nil)

func NewSessionStore() *SessionStore {
	return &SessionStore{
		now:      time.Now,
		sessions: make(map[string]time.Time),
		revoked:  make(map[string]time.Time),
	}
}

func (s *SessionStore) SaveSession(_ context.Context, userID string, _ map[string]interface{}, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = s.now().Add(ttl)
	return nil
}

func (s *SessionStore) DeleteSession(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *SessionStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = s.now().Add(ttl)
	return nil
}

func (s *SessionStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
