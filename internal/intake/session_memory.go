package intake

import (
	"context"
	"sync"
	"time"
)

// MemorySessionStore is an in-process SessionStore for tests and
// single-node deployments without Redis.
type MemorySessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	state     State
	expiresAt time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemorySessionStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemorySessionStore) Get(_ context.Context, tenantID, phone string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(tenantID, phone)
	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil, nil
	}
	st := entry.state
	return &st, nil
}

func (s *MemorySessionStore) Put(_ context.Context, tenantID, phone string, st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[sessionKey(tenantID, phone)] = memoryEntry{
		state:     *st,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, tenantID, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionKey(tenantID, phone))
	return nil
}
