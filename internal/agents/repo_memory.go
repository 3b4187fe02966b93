package agents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository for tests.
type MemoryRepo struct {
	mu     sync.Mutex
	Agents map[string]Agent
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{Agents: map[string]Agent{}} }

func (m *MemoryRepo) Get(ctx context.Context, id string) (Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Agents[id]
	if !ok || a.DeletedAt != nil {
		return Agent{}, ErrNotFound
	}
	return a, nil
}

func (m *MemoryRepo) List(ctx context.Context, userID string) ([]Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Agent
	for _, a := range m.Agents {
		if a.UserID == userID && a.DeletedAt == nil {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *MemoryRepo) Upsert(ctx context.Context, a Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Agents[a.ID] = a
	return nil
}

func (m *MemoryRepo) Update(ctx context.Context, a Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.Agents[a.ID]
	if !ok || cur.DeletedAt != nil {
		return ErrNotFound
	}
	a.CreatedAt = cur.CreatedAt
	m.Agents[a.ID] = a
	return nil
}

func (m *MemoryRepo) SoftDelete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Agents[id]
	if !ok || a.DeletedAt != nil {
		return ErrNotFound
	}
	now := time.Now().UTC()
	a.DeletedAt = &now
	m.Agents[id] = a
	return nil
}

func (m *MemoryRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Agents[id]
	if !ok || a.DeletedAt != nil {
		return ErrNotFound
	}
	a.Status = status
	m.Agents[id] = a
	return nil
}

func (m *MemoryRepo) ClearNumber(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Agents[id]
	if !ok || a.DeletedAt != nil {
		return ErrNotFound
	}
	a.AssignedNumber = nil
	m.Agents[id] = a
	return nil
}

func (m *MemoryRepo) FindRecentDuplicate(ctx context.Context, userID, name, phoneNumber string, since time.Time) (Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best Agent
	for _, a := range m.Agents {
		if a.DeletedAt != nil || a.UserID != userID || a.AgentName != name {
			continue
		}
		if a.AssignedNumber == nil || a.AssignedNumber.PhoneNumber != phoneNumber {
			continue
		}
		if a.CreatedAt.Before(since) {
			continue
		}
		if best.ID == "" || a.CreatedAt.After(best.CreatedAt) {
			best = a
		}
	}
	if best.ID == "" {
		return Agent{}, ErrNotFound
	}
	return best, nil
}
