package numbers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"voiceagent-platform/internal/webhooks"
	"voiceagent-platform/pkg/logger"
)

var (
	ErrNotFound    = errors.New("numbers: not found")
	ErrNotOwner    = errors.New("numbers: number belongs to another user")
	ErrFormInvalid = errors.New("numbers: import form is incomplete")

	// ErrPhoneNumberExists is returned by repositories when the insert hits
	// the global uniqueness constraint on phone_number.
	ErrPhoneNumberExists = errors.New("numbers: phone number already exists")
)

// DuplicateError carries the reconciliation branch for an already-present
// phone number.
//
// SameUser offers the update-existing flow (confirmed via ConfirmUpdate with
// the pinned ExistingID). The other-user branches are hard errors; no
// reconciliation is offered.
type DuplicateError struct {
	PhoneNumber string
	ExistingID  string
	SameUser    bool

	// AssignedToAgentID names the holding agent when another user's number
	// is in use.
	AssignedToAgentID string
}

func (e *DuplicateError) Error() string {
	switch {
	case e.SameUser:
		return fmt.Sprintf("numbers: %s is already imported; confirm to update the existing record", e.PhoneNumber)
	case e.AssignedToAgentID != "":
		return fmt.Sprintf("numbers: %s belongs to another user and is assigned to agent %s", e.PhoneNumber, e.AssignedToAgentID)
	default:
		return fmt.Sprintf("numbers: %s belongs to another user", e.PhoneNumber)
	}
}

type Repository interface {
	Get(ctx context.Context, id string) (InboundNumber, error)
	FindByNumber(ctx context.Context, phoneNumber string) (InboundNumber, error)
	List(ctx context.Context, userID string) ([]InboundNumber, error)
	Insert(ctx context.Context, n InboundNumber) error
	Update(ctx context.Context, n InboundNumber) error
}

// ProvisionClient is the slice of the webhook dispatcher the import flow
// needs.
type ProvisionClient interface {
	ProvisionNumber(ctx context.Context, payload any) (webhooks.Response, error)
}

type Service struct {
	repo  Repository
	hooks ProvisionClient
	clock func() time.Time
}

func NewService(repo Repository, hooks ProvisionClient) *Service {
	return &Service{repo: repo, hooks: hooks, clock: time.Now}
}

func (s *Service) List(ctx context.Context, userID string) ([]InboundNumber, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id string) (InboundNumber, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return InboundNumber{}, err
	}
	if n.UserID != userID {
		return InboundNumber{}, ErrNotOwner
	}
	return n, nil
}

type provisionPayload struct {
	ID          string            `json:"id"`
	OwnerUserID string            `json:"owner_user_id"`
	PhoneNumber string            `json:"phone_number"`
	CountryCode string            `json:"country_code"`
	Provider    Provider          `json:"provider"`
	Credentials map[string]string `json:"credentials"`
	IsUpdate    bool              `json:"is_update"`
}

// Import provisions and stores a new number. The webhook call strictly
// precedes the row write: a failed provisioning attempt leaves no row
// behind. Duplicates are detected both before the insert and from the
// uniqueness violation itself, and routed into the reconciliation protocol.
func (s *Service) Import(ctx context.Context, userID string, f ImportForm) (InboundNumber, error) {
	if !FormValid(f) {
		return InboundNumber{}, ErrFormInvalid
	}
	full, err := CanonicalNumber(f.CountryCode, f.RawPhone)
	if err != nil {
		return InboundNumber{}, err
	}

	if existing, err := s.repo.FindByNumber(ctx, full); err == nil {
		return InboundNumber{}, s.duplicateError(userID, existing)
	} else if !errors.Is(err, ErrNotFound) {
		return InboundNumber{}, err
	}

	n := InboundNumber{
		ID:          uuid.NewString(),
		UserID:      userID,
		PhoneNumber: full,
		CountryCode: f.CountryCode,
		Provider:    f.Provider,
		Credentials: f.Credentials,
		Status:      StatusActivating,
	}

	resp, err := s.provision(ctx, n, false)
	if err != nil {
		return InboundNumber{}, err
	}
	n.WebhookStatus = resp.Status
	n.WebhookTestResult = resp.Message

	now := s.clock().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	if err := s.repo.Insert(ctx, n); err != nil {
		if errors.Is(err, ErrPhoneNumberExists) {
			// Lost a race with another import of the same number.
			if existing, ferr := s.repo.FindByNumber(ctx, full); ferr == nil {
				return InboundNumber{}, s.duplicateError(userID, existing)
			}
			return InboundNumber{}, err
		}
		return InboundNumber{}, err
	}
	return n, nil
}

// ConfirmUpdate runs the update-existing reconciliation: the webhook is
// re-POSTed with is_update set and the id pinned to the existing record,
// then that row is updated in place.
func (s *Service) ConfirmUpdate(ctx context.Context, userID, existingID string, f ImportForm) (InboundNumber, error) {
	if !FormValid(f) {
		return InboundNumber{}, ErrFormInvalid
	}
	existing, err := s.Get(ctx, userID, existingID)
	if err != nil {
		return InboundNumber{}, err
	}
	full, err := CanonicalNumber(f.CountryCode, f.RawPhone)
	if err != nil {
		return InboundNumber{}, err
	}
	if full != existing.PhoneNumber {
		return InboundNumber{}, fmt.Errorf("numbers: update targets %s, form has %s", existing.PhoneNumber, full)
	}

	n := existing
	n.CountryCode = f.CountryCode
	n.Provider = f.Provider
	n.Credentials = f.Credentials
	n.Status = StatusActivating

	resp, err := s.provision(ctx, n, true)
	if err != nil {
		return InboundNumber{}, err
	}
	n.WebhookStatus = resp.Status
	n.WebhookTestResult = resp.Message
	n.UpdatedAt = s.clock().UTC()

	if err := s.repo.Update(ctx, n); err != nil {
		return InboundNumber{}, err
	}
	return n, nil
}

func (s *Service) provision(ctx context.Context, n InboundNumber, isUpdate bool) (webhooks.Response, error) {
	resp, err := s.hooks.ProvisionNumber(ctx, provisionPayload{
		ID:          n.ID,
		OwnerUserID: n.UserID,
		PhoneNumber: n.PhoneNumber,
		CountryCode: n.CountryCode,
		Provider:    n.Provider,
		Credentials: n.Credentials,
		IsUpdate:    isUpdate,
	})
	if err != nil {
		if errors.Is(err, webhooks.ErrTimeout) {
			return webhooks.Response{}, fmt.Errorf("numbers: provisioning timed out: %w", err)
		}
		return webhooks.Response{}, fmt.Errorf("numbers: provisioning failed: %w", err)
	}
	if !resp.OK() {
		logger.From(ctx).Warn("provisioning webhook reported failure",
			slog.String("phone_number", n.PhoneNumber),
			slog.String("status", resp.Status),
			slog.String("message", resp.Message))
		return webhooks.Response{}, fmt.Errorf("numbers: provisioning rejected: %s", resp.Message)
	}
	return resp, nil
}

func (s *Service) duplicateError(userID string, existing InboundNumber) error {
	return &DuplicateError{
		PhoneNumber:       existing.PhoneNumber,
		ExistingID:        existing.ID,
		SameUser:          existing.UserID == userID,
		AssignedToAgentID: pickIfOtherUser(existing, userID),
	}
}

func pickIfOtherUser(existing InboundNumber, userID string) string {
	if existing.UserID == userID {
		return ""
	}
	return existing.AssignedToAgentID
}
