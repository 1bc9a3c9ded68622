package tokens

import (
	"context"
	"fmt"
	"sync"
	"time"

	"givehub-backend/internal/domain"
)

type memoryEntry struct {
	subject   string
	expiresAt time.Time
}

// MemoryStore is a process-local Store for single-instance deployments and tests.
// Tokens do not survive a restart.
type MemoryStore struct {
	Now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Now: time.Now, entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *MemoryStore) Issue(_ context.Context, purpose Purpose, subject string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		s.entries = make(map[string]memoryEntry)
	}
	now := s.now()
	s.sweepLocked(now)
	for i := 0; i < maxIssueAttempts; i++ {
		token, err := newToken()
		if err != nil {
			return "", err
		}
		key := redisKey(purpose, token)
		if _, taken := s.entries[key]; taken {
			continue
		}
		s.entries[key] = memoryEntry{subject: subject, expiresAt: now.Add(ttl)}
		return token, nil
	}
	return "", fmt.Errorf("issue %s token: exhausted %d attempts", purpose, maxIssueAttempts)
}

func (s *MemoryStore) Consume(_ context.Context, purpose Purpose, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := redisKey(purpose, token)
	e, ok := s.entries[key]
	if !ok {
		return "", domain.ErrTokenNotFound
	}
	delete(s.entries, key)
	if !s.now().Before(e.expiresAt) {
		return "", domain.ErrTokenNotFound
	}
	return e.subject, nil
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}
