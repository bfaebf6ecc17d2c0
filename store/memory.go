package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is the in-process backing, used by tests and by the web chat's
// throwaway sessions.
type Memory struct {
	mu    sync.Mutex
	users map[int64]User
}

func NewMemory() *Memory {
	return &Memory{users: make(map[int64]User)}
}

func (m *Memory) Get(ctx context.Context, id int64) (User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, false, nil
	}
	return cloneUser(u), true, nil
}

func (m *Memory) Update(ctx context.Context, id int64, mutate func(*User)) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		u = NewUser(id)
	}
	u = cloneUser(u)
	if mutate != nil {
		mutate(&u)
	}
	normalizeUser(&u, id)
	m.users[id] = u
	return cloneUser(u), nil
}

func (m *Memory) List(ctx context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
