package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"loan-referral/form"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists multi-step form state between requests.
type SessionStore interface {
	Load(ctx context.Context, id string) (form.Snapshot, error)
	Save(ctx context.Context, id string, snap form.Snapshot, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type sessionEntry struct {
	data    []byte
	expires time.Time
}

// MemorySessionStore keeps encoded snapshots in process memory.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]sessionEntry
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]sessionEntry),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Load(_ context.Context, id string) (form.Snapshot, error) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	if ok && !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.sessions, id)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return form.Snapshot{}, ErrSessionNotFound
	}
	var snap form.Snapshot
	if err := json.Unmarshal(e.data, &snap); err != nil {
		return form.Snapshot{}, err
	}
	return snap, nil
}

func (s *MemorySessionStore) Save(_ context.Context, id string, snap form.Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	e := sessionEntry{data: data}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.sessions[id] = e
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}
