package notify

import (
	"context"
	"errors"
	"testing"
)

func TestCreate_Validates(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if err := svc.Create(context.Background(), Notification{Type: TypeAgentCreated, Title: "x"}); err != ErrInvalidNotification {
		t.Fatalf("expected ErrInvalidNotification, got %v", err)
	}
	if err := svc.Create(context.Background(), Notification{UserID: "u1", Type: TypeAgentCreated, Title: "Agent ready"}); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestCreate_AssignsIDAndTimestamp(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Create(context.Background(), Notification{UserID: "u1", Type: TypeCreditsLow, Title: "Low balance"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	got := repo.Items[0]
	if got.ID == "" || got.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp assigned, got %+v", got)
	}
}

func TestNotify_SwallowsRepositoryFailure(t *testing.T) {
	repo := NewMemoryRepo()
	repo.FailWith = errors.New("db down")
	svc := NewService(repo)

	// Must not panic or propagate.
	svc.Notify(context.Background(), "u1", TypeAgentCreated, "Agent ready", "", "")
}
