package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"excel-interview-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore with TTL
// semantics. Entries are kept serialized so the store is a real serialization
// boundary, the same as the Redis implementation: what comes back from Get is
// a decode of what Put wrote, never a shared pointer.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return NewSessionStoreWithClock(ttl, time.Now)
}

// NewSessionStoreWithClock allows tests to drive TTL expiry deterministically.
func NewSessionStoreWithClock(ttl time.Duration, clock func() time.Time) *SessionStore {
	return &SessionStore{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]entry),
	}
}

func (s *SessionStore) Get(_ context.Context, sessionID string) (domain.SessionState, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[sessionID]
	s.mu.RUnlock()

	if !ok || (!e.expiresAt.IsZero() && !e.expiresAt.After(s.clock())) {
		return domain.SessionState{}, false, nil
	}

	var state domain.SessionState
	if err := json.Unmarshal(e.data, &state); err != nil {
		return domain.SessionState{}, false, fmt.Errorf("%w: %v", domain.ErrSessionCorrupt, err)
	}
	if err := state.Validate(); err != nil {
		return domain.SessionState{}, false, fmt.Errorf("%w: %v", domain.ErrSessionCorrupt, err)
	}
	return state, true, nil
}

func (s *SessionStore) Put(_ context.Context, sessionID string, state domain.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("serialize session %s: %w", sessionID, err)
	}

	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = s.clock().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[sessionID] = entry{data: data, expiresAt: expiresAt}
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Create(ctx context.Context, sessionID string, tasks []domain.Task) (domain.SessionState, error) {
	state := domain.NewSessionState(sessionID, tasks)
	if err := s.Put(ctx, sessionID, state); err != nil {
		return domain.SessionState{}, err
	}
	return state, nil
}
