package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is the default process-local store. Sessions are lost on
// restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]Turn),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) AppendUserTurn(_ context.Context, userID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = append(s.sessions[userID], Turn{Role: RoleUser, Content: text, CreatedAt: s.now()})
	return nil
}

func (s *MemoryStore) AppendAssistantTurn(_ context.Context, userID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns, ok := s.sessions[userID]
	if !ok {
		return ErrNotFound
	}
	s.sessions[userID] = append(turns, Turn{Role: RoleAssistant, Content: text, CreatedAt: s.now()})
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *MemoryStore) History(_ context.Context, userID string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.sessions[userID]
	if len(turns) == 0 {
		return nil, nil
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *MemoryStore) Users(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
