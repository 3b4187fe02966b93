package prompts

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is a simple in-memory prompt repository for tests and early development.
type MemoryRepo struct {
	mu      sync.Mutex
	Prompts map[string]AIPrompt
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{Prompts: map[string]AIPrompt{}} }

func (r *MemoryRepo) List(ctx context.Context, userID string) ([]AIPrompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]AIPrompt, 0)
	for _, p := range r.Prompts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (AIPrompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Prompts[id]
	if !ok {
		return AIPrompt{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) Insert(ctx context.Context, p AIPrompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Prompts[p.ID] = p
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, p AIPrompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Prompts[p.ID]; !ok {
		return ErrNotFound
	}
	r.Prompts[p.ID] = p
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Prompts[id]; !ok {
		return ErrNotFound
	}
	delete(r.Prompts, id)
	return nil
}

func (r *MemoryRepo) IncrementUsage(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Prompts[id]
	if !ok {
		return ErrNotFound
	}
	p.UsageCount++
	r.Prompts[id] = p
	return nil
}
