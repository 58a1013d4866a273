package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/crosscount/pkg/metrics"
)

// MemoryStore keeps sessions in a slice. Nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions []Session
	closed   bool
}

// NewMemoryStore returns a store seeded with a copy of seed.
func NewMemoryStore(seed ...Session) *MemoryStore {
	s := &MemoryStore{}
	for _, sess := range seed {
		s.sessions = append(s.sessions, withID(sess))
	}
	return s
}

func withID(s Session) Session {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return s
}

// Append implements Store.
func (m *MemoryStore) Append(_ context.Context, s Session) (Session, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreAppendLatency("memory", msSince(start)) }()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Session{}, ErrClosed
	}
	s = withID(s)
	m.sessions = append(m.sessions, s)
	return s, nil
}

// All implements Store.
func (m *MemoryStore) All(_ context.Context) ([]Session, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreReadLatency("memory", msSince(start)) }()

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return slices.Clone(m.sessions), nil
}

// ByUser implements Store.
func (m *MemoryStore) ByUser(_ context.Context, username string) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	var out []Session
	for _, s := range m.sessions {
		if s.Username == username {
			out = append(out, s)
		}
	}
	return out, nil
}

// Count implements Store.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrClosed
	}
	return len(m.sessions), nil
}

// Replace implements Importer.
func (m *MemoryStore) Replace(_ context.Context, sessions []Session) error {
	fresh := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		fresh = append(fresh, withID(s))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.sessions = fresh
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
