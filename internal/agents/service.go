package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"voiceagent-platform/internal/config"
	"voiceagent-platform/internal/credits"
	"voiceagent-platform/internal/knowledge"
	"voiceagent-platform/internal/notify"
	"voiceagent-platform/internal/webhooks"
	"voiceagent-platform/pkg/logger"
)

var (
	ErrNotFound        = errors.New("agents: not found")
	ErrNotOwner        = errors.New("agents: agent belongs to another user")
	ErrFormInvalid     = errors.New("agents: form is incomplete")
	ErrSubmitInFlight  = errors.New("agents: operation already in progress")
	ErrDuplicateSubmit = errors.New("agents: identical agent created moments ago")

	ErrNumberNotSelected   = errors.New("agents: no phone number selected")
	ErrNumberNotResolvable = errors.New("agents: selected phone number could not be resolved")
	ErrNumberTaken         = errors.New("agents: phone number was claimed by another agent")

	ErrInsufficientCredits = errors.New("agents: insufficient credits for agent creation")
)

// duplicateWindow is how recently an identical (owner, name, number) agent
// must have been created to count as a double submit rather than a
// legitimate distinct agent with reused fields.
const duplicateWindow = 5 * time.Second

// Repository is the persistence contract for agent rows.
type Repository interface {
	Get(ctx context.Context, id string) (Agent, error)
	List(ctx context.Context, userID string) ([]Agent, error)
	// Upsert inserts or fully replaces the row with the given id.
	Upsert(ctx context.Context, a Agent) error
	Update(ctx context.Context, a Agent) error
	SoftDelete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	// ClearNumber strips the denormalized number copy from an agent row.
	ClearNumber(ctx context.Context, id string) error
	// FindRecentDuplicate returns the newest non-deleted agent matching
	// (owner, name, number) created at or after the cutoff.
	FindRecentDuplicate(ctx context.Context, userID, name, phoneNumber string, since time.Time) (Agent, error)
}

// NumberAssignment is the directory's view of a phone number.
type NumberAssignment struct {
	Provider          string
	PhoneNumber       string
	CountryCode       string
	Credentials       map[string]string
	OwnerUserID       string
	AssignedToAgentID string
}

// NumberDirectory mediates access to the shared assigned_to_agent_id state.
// Reassign must be conditional on the expected holder so two sessions racing
// for the same number cannot both win.
type NumberDirectory interface {
	Lookup(ctx context.Context, phoneNumber string) (NumberAssignment, error)
	Reassign(ctx context.Context, phoneNumber, toAgentID, expectedHolder string) error
	// Release clears the assignment only while the given agent still holds it.
	Release(ctx context.Context, phoneNumber, holderAgentID string) error
}

// WebhookClient is the slice of the dispatcher the workflow needs.
type WebhookClient interface {
	CreateBot(ctx context.Context, payload any) (webhooks.Response, error)
	EditAgent(ctx context.Context, payload any) (webhooks.Response, error)
	BindNumber(ctx context.Context, payload any) (webhooks.Response, error)
	UnbindNumber(ctx context.Context, payload any) (webhooks.Response, error)
}

// CreditLedger is the slice of the credit service the workflow needs.
type CreditLedger interface {
	GetBalance(ctx context.Context, userID string) (credits.Balance, error)
	Debit(ctx context.Context, userID string, req credits.DebitRequest) (credits.LedgerEntry, credits.Balance, error)
	Refund(ctx context.Context, userID string, debited credits.LedgerEntry, idempotencyKey string) (credits.LedgerEntry, credits.Balance, error)
}

// KnowledgeResolver loads a knowledge base with FAQs and documents fresh at
// submit time.
type KnowledgeResolver interface {
	Resolve(ctx context.Context, userID, kbID string) (knowledge.Snapshot, error)
}

// Notifier dispatches best-effort user notifications.
type Notifier interface {
	Notify(ctx context.Context, userID string, typ notify.Type, title, message, link string)
}

// SubmitLocker is an optional cross-instance lock layered over the
// in-process guard. Nil disables it.
type SubmitLocker interface {
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, owner string) error
}

type Deps struct {
	Repo      Repository
	Numbers   NumberDirectory
	Credits   CreditLedger
	Hooks     WebhookClient
	Knowledge KnowledgeResolver
	Notifier  Notifier
	Locker    SubmitLocker
	Billing   config.BillingConfig
}

type Service struct {
	repo     Repository
	numbers  NumberDirectory
	ledger   CreditLedger
	hooks    WebhookClient
	kb       KnowledgeResolver
	notifier Notifier
	locker   SubmitLocker
	billing  config.BillingConfig
	guard    *inflightGuard
	clock    func() time.Time
}

func NewService(d Deps) *Service {
	return &Service{
		repo:     d.Repo,
		numbers:  d.Numbers,
		ledger:   d.Credits,
		hooks:    d.Hooks,
		kb:       d.Knowledge,
		notifier: d.Notifier,
		locker:   d.Locker,
		billing:  d.Billing,
		guard:    newInflightGuard(),
		clock:    time.Now,
	}
}

func (s *Service) Get(ctx context.Context, userID, id string) (Agent, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return Agent{}, err
	}
	if a.UserID != userID {
		return Agent{}, ErrNotOwner
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Agent, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if a.AssignedNumber != nil {
		if err := s.numbers.Release(ctx, a.AssignedNumber.PhoneNumber, a.ID); err != nil {
			logger.From(ctx).Warn("number release on delete failed",
				slog.String("agent_id", a.ID),
				slog.String("error", err.Error()))
		}
	}
	return s.repo.SoftDelete(ctx, id)
}

// SaveDraft upserts the current form into the agent row. The id is created
// once and reused for every subsequent save, so repeated saves touch one row.
// A synchronous in-flight guard rejects a second invocation racing the first.
func (s *Service) SaveDraft(ctx context.Context, userID, agentID string, f FormState) (Agent, error) {
	key := "draft:" + agentID
	if agentID == "" {
		key = "draft:new:" + userID
	}
	if !s.guard.tryAcquire(key) {
		return Agent{}, ErrSubmitInFlight
	}
	defer s.guard.release(key)

	if agentID == "" {
		agentID = uuid.NewString()
	}

	existing, err := s.repo.Get(ctx, agentID)
	switch {
	case err == nil:
		if existing.UserID != userID {
			return Agent{}, ErrNotOwner
		}
		if existing.Status != StatusDraft {
			// Non-draft agents are edited through Submit, never demoted.
			return Agent{}, fmt.Errorf("agents: %s is not a draft", agentID)
		}
	case errors.Is(err, ErrNotFound):
		existing = Agent{ID: agentID, UserID: userID, CreatedAt: s.clock().UTC()}
	default:
		return Agent{}, err
	}

	a := s.applyForm(existing, f)
	a.Status = StatusDraft
	a.UpdatedAt = s.clock().UTC()
	if err := s.repo.Upsert(ctx, a); err != nil {
		return Agent{}, err
	}
	return a, nil
}

type submitPath int

const (
	pathNew submitPath = iota
	pathPromoteDraft
	pathEdit
)

// Submit commits the agent. The ordering below is a guarantee, not an
// accident: the automation platform must never observe a number bound to two
// agents, and no external call may happen before the credit precheck on the
// creation paths.
func (s *Service) Submit(ctx context.Context, userID, agentID string, f FormState) (Agent, error) {
	// Check-and-set before the first blocking call, so rapid double clicks
	// collapse to one submission. A request without an id has no agent key
	// yet, so those serialize per user instead.
	key := "submit:" + agentID
	if agentID == "" {
		key = "submit:new:" + userID
	}
	if !s.guard.tryAcquire(key) {
		return Agent{}, ErrSubmitInFlight
	}
	defer s.guard.release(key)

	if agentID == "" {
		agentID = uuid.NewString()
	}

	if s.locker != nil {
		ok, err := s.locker.Acquire(ctx, key, userID, 30*time.Second)
		if err == nil && !ok {
			return Agent{}, ErrSubmitInFlight
		}
		if err != nil {
			logger.From(ctx).Warn("distributed submit lock unavailable",
				slog.String("error", err.Error()))
		} else {
			defer func() {
				if rerr := s.locker.Release(context.WithoutCancel(ctx), key, userID); rerr != nil {
					logger.From(ctx).Warn("submit lock release failed", slog.String("error", rerr.Error()))
				}
			}()
		}
	}

	if !FormValid(f) {
		return Agent{}, ErrFormInvalid
	}
	if f.PhoneNumber == "" {
		return Agent{}, ErrNumberNotSelected
	}

	path, existing, err := s.resolvePath(ctx, userID, agentID)
	if err != nil {
		return Agent{}, err
	}

	num, err := s.resolveNumber(ctx, userID, f.PhoneNumber)
	if err != nil {
		return Agent{}, err
	}

	now := s.clock().UTC()
	log := logger.From(ctx)

	if path == pathNew {
		dup, err := s.repo.FindRecentDuplicate(ctx, userID, f.AgentName, f.PhoneNumber, now.Add(-duplicateWindow))
		if err == nil && dup.ID != "" {
			log.Warn("duplicate agent submission detected",
				slog.String("existing_agent_id", dup.ID),
				slog.String("agent_name", f.AgentName))
			return Agent{}, ErrDuplicateSubmit
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return Agent{}, err
		}
	}

	isCreation := path == pathNew || path == pathPromoteDraft

	// Credit precheck happens before any external call on the creation
	// paths.
	if isCreation {
		bal, err := s.ledger.GetBalance(ctx, userID)
		if errors.Is(err, credits.ErrNotFound) || (err == nil && bal.BalanceMinor < s.billing.AgentCreateCostMinor) {
			return Agent{}, ErrInsufficientCredits
		}
		if err != nil {
			return Agent{}, err
		}
	}

	// Unbind a different current holder. Fatal on the creation paths,
	// best-effort on edit.
	if num.AssignedToAgentID != "" && num.AssignedToAgentID != agentID {
		if err := s.unbindHolder(ctx, num, isCreation); err != nil {
			return Agent{}, err
		}
	}

	payload, err := s.buildPayload(ctx, userID, agentID, f, num, path)
	if err != nil {
		return Agent{}, err
	}

	// Create-vs-edit webhook. A failure aborts the whole submit; nothing
	// has been written yet.
	var resp webhooks.Response
	if path == pathEdit {
		resp, err = s.hooks.EditAgent(ctx, payload)
	} else {
		resp, err = s.hooks.CreateBot(ctx, payload)
	}
	if err != nil {
		return Agent{}, err
	}
	if !resp.OK() {
		return Agent{}, fmt.Errorf("agents: provisioning webhook rejected submit: %s", resp.Message)
	}

	a := s.applyForm(existing, f)
	a.ID = agentID
	a.UserID = userID
	a.AssignedNumber = &AssignedNumber{
		Provider:    num.Provider,
		PhoneNumber: num.PhoneNumber,
		CountryCode: num.CountryCode,
		Credentials: num.Credentials,
	}
	a.UpdatedAt = now
	switch path {
	case pathNew:
		a.Status = StatusActivating
		a.CreatedAt = now
		if err := s.repo.Upsert(ctx, a); err != nil {
			return Agent{}, err
		}
	case pathPromoteDraft:
		a.Status = StatusActivating
		if err := s.repo.Update(ctx, a); err != nil {
			return Agent{}, err
		}
	case pathEdit:
		a.Status = existing.Status
		if err := s.repo.Update(ctx, a); err != nil {
			return Agent{}, err
		}
	}

	// Deduct credits with a compensating rollback.
	var debited credits.LedgerEntry
	if isCreation {
		entry, err := s.debitCreation(ctx, userID, agentID)
		if err != nil {
			s.rollbackCreation(ctx, path, agentID, f.PhoneNumber)
			return Agent{}, err
		}
		debited = entry
	}

	if err := s.reassignNumber(ctx, num, agentID, path); err != nil {
		// The charge landed but the agent never got its number. Refund the
		// debit and undo the row.
		if isCreation {
			s.refundCreation(ctx, userID, agentID, debited)
			s.rollbackCreation(ctx, path, agentID, f.PhoneNumber)
		}
		return Agent{}, err
	}

	s.notifySubmit(ctx, userID, a, path)
	return a, nil
}

func (s *Service) resolvePath(ctx context.Context, userID, agentID string) (submitPath, Agent, error) {
	existing, err := s.repo.Get(ctx, agentID)
	switch {
	case errors.Is(err, ErrNotFound):
		return pathNew, Agent{}, nil
	case err != nil:
		return 0, Agent{}, err
	case existing.UserID != userID:
		return 0, Agent{}, ErrNotOwner
	case existing.Status == StatusDraft:
		return pathPromoteDraft, existing, nil
	default:
		return pathEdit, existing, nil
	}
}

func (s *Service) resolveNumber(ctx context.Context, userID, phoneNumber string) (NumberAssignment, error) {
	num, err := s.numbers.Lookup(ctx, phoneNumber)
	if err != nil {
		return NumberAssignment{}, fmt.Errorf("%w: %v", ErrNumberNotResolvable, err)
	}
	if num.OwnerUserID != userID {
		return NumberAssignment{}, ErrNumberNotResolvable
	}
	return num, nil
}

// unbindHolder detaches the number from its current agent in the downstream
// platform and disables that agent.
func (s *Service) unbindHolder(ctx context.Context, num NumberAssignment, fatal bool) error {
	log := logger.From(ctx)
	holder := num.AssignedToAgentID

	resp, err := s.hooks.UnbindNumber(ctx, map[string]any{
		"agent_id":     holder,
		"phone_number": num.PhoneNumber,
	})
	if err != nil || !resp.OK() {
		if fatal {
			if err != nil {
				return fmt.Errorf("agents: unbind of current holder failed: %w", err)
			}
			return fmt.Errorf("agents: unbind of current holder rejected: %s", resp.Message)
		}
		log.Warn("unbind webhook failed, continuing",
			slog.String("holder_agent_id", holder),
			slog.Any("error", err))
	}

	// Disabling the prior holder and clearing its assignment are always
	// best-effort.
	if err := s.repo.UpdateStatus(ctx, holder, StatusInactive); err != nil {
		log.Warn("disabling prior holder failed", slog.String("agent_id", holder), slog.String("error", err.Error()))
	}
	if err := s.repo.ClearNumber(ctx, holder); err != nil {
		log.Warn("clearing prior holder number failed", slog.String("agent_id", holder), slog.String("error", err.Error()))
	}
	if err := s.numbers.Release(ctx, num.PhoneNumber, holder); err != nil {
		log.Warn("releasing number from prior holder failed", slog.String("agent_id", holder), slog.String("error", err.Error()))
	}
	return nil
}

type submitPayload struct {
	AgentID     string `json:"agent_id"`
	OwnerUserID string `json:"owner_user_id"`
	IsUpdate    bool   `json:"is_update"`

	Form   FormState           `json:"form"`
	Number payloadNumber       `json:"number"`
	KB     *knowledge.Snapshot `json:"knowledge_base,omitempty"`
}

type payloadNumber struct {
	Provider    string            `json:"provider"`
	PhoneNumber string            `json:"phone_number"`
	CountryCode string            `json:"country_code,omitempty"`
	Credentials map[string]string `json:"credentials,omitempty"`
}

// buildPayload assembles the outbound webhook body, resolving the knowledge
// base fresh so the platform never receives a stale FAQ or document list.
func (s *Service) buildPayload(ctx context.Context, userID, agentID string, f FormState, num NumberAssignment, path submitPath) (submitPayload, error) {
	p := submitPayload{
		AgentID:     agentID,
		OwnerUserID: userID,
		IsUpdate:    path == pathEdit,
		Form:        f,
		Number: payloadNumber{
			Provider:    num.Provider,
			PhoneNumber: num.PhoneNumber,
			CountryCode: num.CountryCode,
			Credentials: num.Credentials,
		},
	}
	if f.KnowledgeBaseID != "" {
		snap, err := s.kb.Resolve(ctx, userID, f.KnowledgeBaseID)
		if err != nil {
			return submitPayload{}, fmt.Errorf("agents: resolving knowledge base: %w", err)
		}
		p.KB = &snap
	}
	return p, nil
}

func (s *Service) debitCreation(ctx context.Context, userID, agentID string) (credits.LedgerEntry, error) {
	entry, _, err := s.ledger.Debit(ctx, userID, credits.DebitRequest{
		AmountMinor:    s.billing.AgentCreateCostMinor,
		Currency:       s.billing.Currency,
		ExternalRef:    agentID,
		IdempotencyKey: "agent_create:" + agentID,
		Metadata:       `{"reason":"agent_creation"}`,
	})
	return entry, err
}

// refundCreation compensates a creation debit that already landed. The
// idempotency key is derived from the agent id, so a retried submit cannot
// refund twice.
func (s *Service) refundCreation(ctx context.Context, userID, agentID string, debited credits.LedgerEntry) {
	if _, _, err := s.ledger.Refund(ctx, userID, debited, "agent_create_refund:"+agentID); err != nil {
		logger.From(ctx).Error("refunding creation debit failed",
			slog.String("agent_id", agentID),
			slog.String("error", err.Error()))
	}
}

// rollbackCreation compensates a failed creation debit: the fresh row is
// soft-deleted (or the draft reverted) and the number assignment released.
func (s *Service) rollbackCreation(ctx context.Context, path submitPath, agentID, phoneNumber string) {
	log := logger.From(ctx)
	var err error
	if path == pathNew {
		err = s.repo.SoftDelete(ctx, agentID)
	} else {
		err = s.repo.UpdateStatus(ctx, agentID, StatusDraft)
	}
	if err != nil {
		log.Error("creation rollback failed", slog.String("agent_id", agentID), slog.String("error", err.Error()))
	}
	if err := s.numbers.Release(ctx, phoneNumber, agentID); err != nil {
		log.Warn("number release during rollback failed", slog.String("agent_id", agentID), slog.String("error", err.Error()))
	}
}

// reassignNumber takes exclusive hold of the number for the committed agent.
// The assignment is re-read first so a holder that appeared since the submit
// started is still detected and disabled, instead of acting on stale state.
func (s *Service) reassignNumber(ctx context.Context, num NumberAssignment, agentID string, path submitPath) error {
	log := logger.From(ctx)

	current, err := s.numbers.Lookup(ctx, num.PhoneNumber)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNumberNotResolvable, err)
	}
	prior := current.AssignedToAgentID

	if err := s.numbers.Reassign(ctx, num.PhoneNumber, agentID, prior); err != nil {
		return err
	}

	if prior != "" && prior != agentID {
		if err := s.repo.UpdateStatus(ctx, prior, StatusInactive); err != nil {
			log.Warn("disabling displaced holder failed", slog.String("agent_id", prior), slog.String("error", err.Error()))
		}
		if err := s.repo.ClearNumber(ctx, prior); err != nil {
			log.Warn("clearing displaced holder number failed", slog.String("agent_id", prior), slog.String("error", err.Error()))
		}
	}

	// On edits the creation webhook never ran, so the platform is told about
	// the (re)binding separately. Best-effort.
	if path == pathEdit {
		if resp, err := s.hooks.BindNumber(ctx, map[string]any{
			"agent_id":     agentID,
			"phone_number": num.PhoneNumber,
		}); err != nil || !resp.OK() {
			log.Warn("bind webhook failed after edit",
				slog.String("agent_id", agentID),
				slog.Any("error", err))
		}
	}
	return nil
}

func (s *Service) notifySubmit(ctx context.Context, userID string, a Agent, path submitPath) {
	if s.notifier == nil {
		return
	}
	typ := notify.TypeAgentUpdated
	title := "Agent updated"
	if path != pathEdit {
		typ = notify.TypeAgentCreated
		title = "Agent created"
	}
	s.notifier.Notify(ctx, userID, typ, title,
		fmt.Sprintf("%s is being provisioned on %s", a.AgentName, a.AssignedNumber.PhoneNumber), "")
}

// applyForm copies the wizard form onto an agent row, clamping dials.
func (s *Service) applyForm(a Agent, f FormState) Agent {
	a.AgentName = f.AgentName
	a.CompanyName = f.CompanyName
	a.WebsiteURL = f.WebsiteURL
	a.Goal = f.Goal
	a.BackgroundContext = f.BackgroundContext
	a.Instructions = f.Instructions
	a.WelcomeMessages = append([]string(nil), f.WelcomeMessages...)
	a.Voice = f.Voice
	a.Language = f.Language
	a.AgentType = f.AgentType
	a.Timezone = f.Timezone
	a.Temperature = clamp01(f.Temperature)
	a.Confidence = clamp01(f.Confidence)
	a.Verbosity = clamp01(f.Verbosity)
	a.Fallback = f.Fallback
	a.KnowledgeBaseID = f.KnowledgeBaseID
	a.ScheduleID = f.ScheduleID
	a.Metadata = Metadata{
		Availability: f.Availability,
		Fallback:     &FallbackConfig{Enabled: f.Fallback.Enabled, Number: f.Fallback.Number},
	}
	return a
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
