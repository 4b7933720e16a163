package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a process-local Store for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	vehicles map[string]struct{}
	routes   map[string]struct{}
	users    map[int64]User
	orders   []Order
	nextID   int64
	now      func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vehicles: make(map[string]struct{}),
		routes:   make(map[string]struct{}),
		users:    make(map[int64]User),
		now:      time.Now,
	}
}

func (m *MemoryStore) AddVehicle(_ context.Context, name string) (bool, error) {
	return m.add(m.vehicles, name), nil
}

func (m *MemoryStore) RemoveVehicle(_ context.Context, name string) (bool, error) {
	return m.remove(m.vehicles, name), nil
}

func (m *MemoryStore) ListVehicles(context.Context) ([]string, error) {
	return m.list(m.vehicles), nil
}

func (m *MemoryStore) AddRoute(_ context.Context, name string) (bool, error) {
	return m.add(m.routes, name), nil
}

func (m *MemoryStore) RemoveRoute(_ context.Context, name string) (bool, error) {
	return m.remove(m.routes, name), nil
}

func (m *MemoryStore) ListRoutes(context.Context) ([]string, error) {
	return m.list(m.routes), nil
}

func (m *MemoryStore) add(set map[string]struct{}, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := set[name]; ok {
		return false
	}
	set[name] = struct{}{}
	return true
}

func (m *MemoryStore) remove(set map[string]struct{}, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := set[name]; !ok {
		return false
	}
	delete(set, name)
	return true
}

func (m *MemoryStore) list(set map[string]struct{}) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (m *MemoryStore) UpsertUser(_ context.Context, userID int64, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	u, ok := m.users[userID]
	if !ok {
		u = User{ID: userID, CreatedAt: now}
	}
	u.DisplayName = displayName
	u.UpdatedAt = now
	m.users[userID] = u
	return nil
}

func (m *MemoryStore) SetUserPhone(_ context.Context, userID int64, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	u, ok := m.users[userID]
	if !ok {
		u = User{ID: userID, CreatedAt: now}
	}
	u.Phone = phone
	u.UpdatedAt = now
	m.users[userID] = u
	return nil
}

func (m *MemoryStore) GetUser(_ context.Context, userID int64) (User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	return u, ok, nil
}

func (m *MemoryStore) CountUsers(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

func (m *MemoryStore) AppendOrder(_ context.Context, o Order) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	o.ID = m.nextID
	if o.CreatedAt.IsZero() {
		o.CreatedAt = m.now()
	}
	m.orders = append(m.orders, o)
	return o.ID, nil
}

func (m *MemoryStore) ListOrders(_ context.Context, limit int) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.orders)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Order, 0, n)
	for i := len(m.orders) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.orders[i])
	}
	return out, nil
}

func (m *MemoryStore) CountOrders(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders), nil
}
