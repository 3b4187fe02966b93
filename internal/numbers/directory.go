package numbers

import (
	"context"
	"errors"

	"voiceagent-platform/internal/agents"
)

// ErrAssignmentConflict means a conditional reassignment found a different
// holder than expected; the caller raced another session.
var ErrAssignmentConflict = errors.New("numbers: number assignment changed concurrently")

// directoryStore is the slice of the repository the directory needs.
type directoryStore interface {
	FindByNumber(ctx context.Context, phoneNumber string) (InboundNumber, error)
	ReassignAgent(ctx context.Context, phoneNumber, toAgentID, expectedHolder string) error
	ReleaseAgent(ctx context.Context, phoneNumber, holderAgentID string) error
}

// Directory adapts the number store to the agent workflow's view of shared
// assignment state.
type Directory struct {
	store directoryStore
}

func NewDirectory(store directoryStore) Directory { return Directory{store: store} }

func (d Directory) Lookup(ctx context.Context, phoneNumber string) (agents.NumberAssignment, error) {
	n, err := d.store.FindByNumber(ctx, phoneNumber)
	if err != nil {
		return agents.NumberAssignment{}, err
	}
	return agents.NumberAssignment{
		Provider:          string(n.Provider),
		PhoneNumber:       n.PhoneNumber,
		CountryCode:       n.CountryCode,
		Credentials:       n.Credentials,
		OwnerUserID:       n.UserID,
		AssignedToAgentID: n.AssignedToAgentID,
	}, nil
}

func (d Directory) Reassign(ctx context.Context, phoneNumber, toAgentID, expectedHolder string) error {
	err := d.store.ReassignAgent(ctx, phoneNumber, toAgentID, expectedHolder)
	if errors.Is(err, ErrAssignmentConflict) {
		return agents.ErrNumberTaken
	}
	return err
}

func (d Directory) Release(ctx context.Context, phoneNumber, holderAgentID string) error {
	return d.store.ReleaseAgent(ctx, phoneNumber, holderAgentID)
}
