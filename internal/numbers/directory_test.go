package numbers

import (
	"context"
	"errors"
	"testing"

	"voiceagent-platform/internal/agents"
)

func TestDirectory_ConditionalReassign(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Rows["n1"] = InboundNumber{
		ID:          "n1",
		UserID:      "u1",
		PhoneNumber: "+15551234567",
		Provider:    ProviderTwilio,
	}
	dir := NewDirectory(repo)

	if err := dir.Reassign(context.Background(), "+15551234567", "agent-a", ""); err != nil {
		t.Fatalf("reassign unassigned: %v", err)
	}

	// Stale expectation loses.
	err := dir.Reassign(context.Background(), "+15551234567", "agent-b", "")
	if !errors.Is(err, agents.ErrNumberTaken) {
		t.Fatalf("expected ErrNumberTaken, got %v", err)
	}

	// Correct expectation wins.
	if err := dir.Reassign(context.Background(), "+15551234567", "agent-b", "agent-a"); err != nil {
		t.Fatalf("reassign with expected holder: %v", err)
	}

	n, _ := dir.Lookup(context.Background(), "+15551234567")
	if n.AssignedToAgentID != "agent-b" {
		t.Fatalf("expected agent-b holding, got %q", n.AssignedToAgentID)
	}
}

func TestDirectory_ReleaseOnlyByHolder(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Rows["n1"] = InboundNumber{
		ID:                "n1",
		UserID:            "u1",
		PhoneNumber:       "+15551234567",
		AssignedToAgentID: "agent-a",
	}
	dir := NewDirectory(repo)

	if err := dir.Release(context.Background(), "+15551234567", "agent-b"); err != nil {
		t.Fatalf("release by non-holder: %v", err)
	}
	n, _ := dir.Lookup(context.Background(), "+15551234567")
	if n.AssignedToAgentID != "agent-a" {
		t.Fatalf("non-holder release must be a no-op")
	}

	if err := dir.Release(context.Background(), "+15551234567", "agent-a"); err != nil {
		t.Fatalf("release: %v", err)
	}
	n, _ = dir.Lookup(context.Background(), "+15551234567")
	if n.AssignedToAgentID != "" {
		t.Fatalf("expected assignment cleared")
	}
}
