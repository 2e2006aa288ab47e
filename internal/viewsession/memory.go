package viewsession

import (
	"context"
	"sync"
	"time"

	"smartstore-backend/internal/history"
)

type memoryEntry struct {
	session   history.Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Idle sessions expire after ttl and
// are dropped by Sweep.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*history.Session, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || !m.now().Before(e.expiresAt) {
		return nil, ErrNotFound
	}
	s := e.session
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *history.Session) error {
	now := m.now()
	s.UpdatedAt = now

	m.mu.Lock()
	m.sessions[s.ID] = memoryEntry{session: *s, expiresAt: now.Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Sweep removes expired sessions and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.sessions {
		if !now.Before(e.expiresAt) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Len is the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
