package numbers

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repository (and directory store) for tests. It
// mirrors the SQL repository's uniqueness and conditional-update behavior.
type MemoryRepo struct {
	mu   sync.Mutex
	Rows map[string]InboundNumber
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{Rows: map[string]InboundNumber{}} }

func (m *MemoryRepo) Get(ctx context.Context, id string) (InboundNumber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.Rows[id]
	if !ok {
		return InboundNumber{}, ErrNotFound
	}
	return n, nil
}

func (m *MemoryRepo) FindByNumber(ctx context.Context, phoneNumber string) (InboundNumber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findByNumberLocked(phoneNumber)
}

func (m *MemoryRepo) findByNumberLocked(phoneNumber string) (InboundNumber, error) {
	for _, n := range m.Rows {
		if n.PhoneNumber == phoneNumber {
			return n, nil
		}
	}
	return InboundNumber{}, ErrNotFound
}

func (m *MemoryRepo) List(ctx context.Context, userID string) ([]InboundNumber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []InboundNumber
	for _, n := range m.Rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepo) Insert(ctx context.Context, n InboundNumber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.findByNumberLocked(n.PhoneNumber); err == nil {
		return ErrPhoneNumberExists
	}
	m.Rows[n.ID] = n
	return nil
}

func (m *MemoryRepo) Update(ctx context.Context, n InboundNumber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Rows[n.ID]; !ok {
		return ErrNotFound
	}
	m.Rows[n.ID] = n
	return nil
}

func (m *MemoryRepo) ReassignAgent(ctx context.Context, phoneNumber, toAgentID, expectedHolder string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, err := m.findByNumberLocked(phoneNumber)
	if err != nil {
		return err
	}
	if n.AssignedToAgentID != expectedHolder && n.AssignedToAgentID != toAgentID {
		return ErrAssignmentConflict
	}
	n.AssignedToAgentID = toAgentID
	m.Rows[n.ID] = n
	return nil
}

func (m *MemoryRepo) ReleaseAgent(ctx context.Context, phoneNumber, holderAgentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, err := m.findByNumberLocked(phoneNumber)
	if err != nil {
		return nil
	}
	if n.AssignedToAgentID == holderAgentID {
		n.AssignedToAgentID = ""
		m.Rows[n.ID] = n
	}
	return nil
}
