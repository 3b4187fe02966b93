package notify

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repository for tests.
type MemoryRepo struct {
	mu    sync.Mutex
	Items []Notification

	// FailWith, when set, makes every Create fail. Used to verify callers
	// treat dispatch as best-effort.
	FailWith error
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (m *MemoryRepo) Create(ctx context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Items = append(m.Items, n)
	return nil
}
