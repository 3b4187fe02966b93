package auth

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory user repository for tests and early development.
type MemoryRepo struct {
	mu sync.Mutex

	Users    []UserProfile
	Activity []LoginActivity
	History  map[string][]string // user_id -> hashes, newest first
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{History: map[string][]string{}} }

func (r *MemoryRepo) FindByEmail(ctx context.Context, email string) (UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return UserProfile{}, ErrUserNotFound
}

func (r *MemoryRepo) FindByID(ctx context.Context, id string) (UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return UserProfile{}, ErrUserNotFound
}

func (r *MemoryRepo) UserExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err == ErrUserNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *MemoryRepo) RecordLoginActivity(ctx context.Context, a LoginActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Activity = append(r.Activity, a)
	return nil
}

func (r *MemoryRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Users {
		if r.Users[i].ID == userID {
			r.Users[i].PasswordHash = passwordHash
			return nil
		}
	}
	return ErrUserNotFound
}

func (r *MemoryRepo) ListPasswordHashes(ctx context.Context, userID string, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, u := range r.Users {
		if u.ID == userID {
			out = append(out, u.PasswordHash)
			break
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	hist := r.History[userID]
	if len(hist) > limit {
		hist = hist[:limit]
	}
	return append(out, hist...), nil
}

func (r *MemoryRepo) AppendPasswordHistory(ctx context.Context, userID, passwordHash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.History[userID] = append([]string{passwordHash}, r.History[userID]...)
	return nil
}
