package session

import (
	"context"
	"sync"
)

type memoryStore[T any] struct {
	mu       sync.RWMutex
	sessions map[int64]T
}

// NewMemoryStore constructs an in-memory Store. Snapshots are lost on restart.
func NewMemoryStore[T any]() Store[T] {
	return &memoryStore[T]{sessions: make(map[int64]T)}
}

func (m *memoryStore[T]) Get(_ context.Context, userID int64) (T, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.sessions[userID]
	return v, ok, nil
}

func (m *memoryStore[T]) Put(_ context.Context, userID int64, v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = v
	return nil
}

func (m *memoryStore[T]) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}
