package calls

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repository for tests.
type MemoryRepo struct {
	mu    sync.Mutex
	Calls map[string]Call

	// StatsCalls counts Statistics invocations, for cache assertions.
	StatsCalls int
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{Calls: map[string]Call{}} }

func (m *MemoryRepo) List(ctx context.Context, userID string, f ListFilter) ([]Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.Calls {
		if c.UserID != userID {
			continue
		}
		if f.AgentID != "" && c.AgentID != f.AgentID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Calls[id]
	if !ok {
		return Call{}, ErrNotFound
	}
	return c, nil
}

func (m *MemoryRepo) Statistics(ctx context.Context, userID string) (Statistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatsCalls++

	s := Statistics{UserID: userID}
	for _, c := range m.Calls {
		if c.UserID != userID {
			continue
		}
		s.TotalCalls++
		s.TotalSeconds += c.DurationSeconds
		switch c.Status {
		case CallStatusCompleted:
			s.CompletedCalls++
		case CallStatusFailed:
			s.FailedCalls++
		}
	}
	if s.TotalCalls > 0 {
		s.AvgSeconds = float64(s.TotalSeconds) / float64(s.TotalCalls)
	}
	return s, nil
}
