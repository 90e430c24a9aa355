package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"excel-interview-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps each session as a single JSON document under a
// namespaced key with a TTL refreshed on every write. Absent keys (never
// created or expired) are not errors; only an unreachable server is.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (domain.SessionState, bool, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return domain.SessionState{}, false, nil
	}
	if err != nil {
		return domain.SessionState{}, false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var state domain.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.SessionState{}, false, fmt.Errorf("%w: session %s: %v", domain.ErrSessionCorrupt, sessionID, err)
	}
	if err := state.Validate(); err != nil {
		return domain.SessionState{}, false, fmt.Errorf("%w: %v", domain.ErrSessionCorrupt, err)
	}
	return state, true, nil
}

// Put overwrites the whole document and refreshes the TTL.
func (s *SessionStore) Put(ctx context.Context, sessionID string, state domain.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("serialize session %s: %w", sessionID, err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *SessionStore) Create(ctx context.Context, sessionID string, tasks []domain.Task) (domain.SessionState, error) {
	state := domain.NewSessionState(sessionID, tasks)
	if err := s.Put(ctx, sessionID, state); err != nil {
		return domain.SessionState{}, err
	}
	return state, nil
}

func (s *SessionStore) key(sessionID string) string {
	return "interview_session:" + sessionID
}
