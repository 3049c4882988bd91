package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCorruptSnapshot marks a stored snapshot that cannot be decoded.
var ErrCorruptSnapshot = errors.New("corrupt session snapshot")

// Persistence puts and fetches session snapshots.
type Persistence interface {
	Save(ctx context.Context, sessionID string, snap Snapshot) error
	Load(ctx context.Context, sessionID string) (Snapshot, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore keeps snapshots in process; used when no Redis is configured
// and in tests.
type MemoryStore struct {
	mu  sync.Mutex
	m   map[string]memEntry
	ttl time.Duration
	now func() time.Time
}

type memEntry struct {
	snap    Snapshot
	expires time.Time // zero: never
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		m:   make(map[string]memEntry),
		ttl: ttl,
		now: time.Now,
	}
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memEntry{snap: snap}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}
	s.m[sessionID] = e
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[sessionID]
	if !ok {
		return Snapshot{}, false, nil
	}
	if !e.expires.IsZero() && s.now().After(e.expires) {
		delete(s.m, sessionID)
		return Snapshot{}, false, nil
	}
	return e.snap, true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, sessionID)
	return nil
}
