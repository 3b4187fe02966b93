package knowledge

import (
	"context"
	"sort"
)

// MemoryRepo is an in-memory Repository for tests.
type MemoryRepo struct {
	Bases map[string]KnowledgeBase
	FAQs  map[string][]FAQ
	Docs  map[string][]Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		Bases: map[string]KnowledgeBase{},
		FAQs:  map[string][]FAQ{},
		Docs:  map[string][]Document{},
	}
}

func (m *MemoryRepo) List(ctx context.Context, userID string) ([]KnowledgeBase, error) {
	var out []KnowledgeBase
	for _, kb := range m.Bases {
		if kb.UserID == userID {
			out = append(out, kb)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (KnowledgeBase, error) {
	kb, ok := m.Bases[id]
	if !ok {
		return KnowledgeBase{}, ErrNotFound
	}
	return kb, nil
}

func (m *MemoryRepo) ListFAQs(ctx context.Context, kbID string) ([]FAQ, error) {
	return append([]FAQ(nil), m.FAQs[kbID]...), nil
}

func (m *MemoryRepo) ListDocuments(ctx context.Context, kbID string) ([]Document, error) {
	return append([]Document(nil), m.Docs[kbID]...), nil
}
