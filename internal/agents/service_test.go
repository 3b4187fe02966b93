package agents

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"voiceagent-platform/internal/config"
	"voiceagent-platform/internal/credits"
	"voiceagent-platform/internal/knowledge"
	"voiceagent-platform/internal/notify"
	"voiceagent-platform/internal/webhooks"
)

type memNumbers struct {
	mu          sync.Mutex
	Nums        map[string]NumberAssignment
	ReassignErr error
}

func (m *memNumbers) Lookup(ctx context.Context, phone string) (NumberAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.Nums[phone]
	if !ok {
		return NumberAssignment{}, errors.New("number not found")
	}
	return n, nil
}

func (m *memNumbers) Reassign(ctx context.Context, phone, toAgentID, expectedHolder string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReassignErr != nil {
		return m.ReassignErr
	}
	n, ok := m.Nums[phone]
	if !ok {
		return errors.New("number not found")
	}
	if n.AssignedToAgentID != expectedHolder && n.AssignedToAgentID != toAgentID {
		return ErrNumberTaken
	}
	n.AssignedToAgentID = toAgentID
	m.Nums[phone] = n
	return nil
}

func (m *memNumbers) Release(ctx context.Context, phone, holderAgentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.Nums[phone]
	if ok && n.AssignedToAgentID == holderAgentID {
		n.AssignedToAgentID = ""
		m.Nums[phone] = n
	}
	return nil
}

func (m *memNumbers) holder(phone string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Nums[phone].AssignedToAgentID
}

type stubHooks struct {
	mu          sync.Mutex
	CreateCalls int
	EditCalls   int
	BindCalls   int
	UnbindCalls int

	CreateErr error
	UnbindErr error

	// CreateGate, when set, blocks CreateBot until closed; Entered is
	// signalled once the call is in flight.
	CreateGate chan struct{}
	Entered    chan struct{}
}

func okResponse() webhooks.Response {
	return webhooks.Response{HTTPStatus: 200, Status: "success"}
}

func (h *stubHooks) CreateBot(ctx context.Context, payload any) (webhooks.Response, error) {
	h.mu.Lock()
	h.CreateCalls++
	gate := h.CreateGate
	h.mu.Unlock()
	if h.Entered != nil {
		h.Entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if h.CreateErr != nil {
		return webhooks.Response{}, h.CreateErr
	}
	return okResponse(), nil
}

func (h *stubHooks) EditAgent(ctx context.Context, payload any) (webhooks.Response, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.EditCalls++
	return okResponse(), nil
}

func (h *stubHooks) BindNumber(ctx context.Context, payload any) (webhooks.Response, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.BindCalls++
	return okResponse(), nil
}

func (h *stubHooks) UnbindNumber(ctx context.Context, payload any) (webhooks.Response, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.UnbindCalls++
	if h.UnbindErr != nil {
		return webhooks.Response{}, h.UnbindErr
	}
	return okResponse(), nil
}

type stubLedger struct {
	mu       sync.Mutex
	Balance  int64
	DebitErr error
	Debits   []credits.DebitRequest
	Refunds  []credits.LedgerEntry
}

func (l *stubLedger) GetBalance(ctx context.Context, userID string) (credits.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return credits.Balance{UserID: userID, Currency: "USD", BalanceMinor: l.Balance}, nil
}

func (l *stubLedger) Debit(ctx context.Context, userID string, req credits.DebitRequest) (credits.LedgerEntry, credits.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.DebitErr != nil {
		return credits.LedgerEntry{}, credits.Balance{}, l.DebitErr
	}
	l.Balance -= req.AmountMinor
	l.Debits = append(l.Debits, req)
	entry := credits.LedgerEntry{
		ID:          "ledger-" + req.IdempotencyKey,
		Type:        credits.LedgerEntryTypeDebit,
		AmountMinor: -req.AmountMinor,
		Currency:    req.Currency,
	}
	return entry, credits.Balance{BalanceMinor: l.Balance}, nil
}

func (l *stubLedger) Refund(ctx context.Context, userID string, debited credits.LedgerEntry, idempotencyKey string) (credits.LedgerEntry, credits.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	amount := debited.AmountMinor
	if amount < 0 {
		amount = -amount
	}
	l.Balance += amount
	l.Refunds = append(l.Refunds, debited)
	return credits.LedgerEntry{ID: "refund-" + idempotencyKey, Type: credits.LedgerEntryTypeRefund, AmountMinor: amount}, credits.Balance{BalanceMinor: l.Balance}, nil
}

type stubKB struct{}

func (stubKB) Resolve(ctx context.Context, userID, kbID string) (knowledge.Snapshot, error) {
	return knowledge.Snapshot{ID: kbID, Name: "KB"}, nil
}

type stubNotifier struct {
	mu    sync.Mutex
	Types []notify.Type
}

func (n *stubNotifier) Notify(ctx context.Context, userID string, typ notify.Type, title, message, link string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Types = append(n.Types, typ)
}

type submitFixture struct {
	svc      *Service
	repo     *MemoryRepo
	numbers  *memNumbers
	hooks    *stubHooks
	ledger   *stubLedger
	notifier *stubNotifier
	now      time.Time
}

func newSubmitFixture() *submitFixture {
	fx := &submitFixture{
		repo: NewMemoryRepo(),
		numbers: &memNumbers{Nums: map[string]NumberAssignment{
			"+15551234567": {
				Provider:    "twilio",
				PhoneNumber: "+15551234567",
				CountryCode: "+1",
				OwnerUserID: "u1",
			},
		}},
		hooks:    &stubHooks{},
		ledger:   &stubLedger{Balance: 1000},
		notifier: &stubNotifier{},
		now:      time.Unix(1700000000, 0).UTC(),
	}
	fx.svc = NewService(Deps{
		Repo:      fx.repo,
		Numbers:   fx.numbers,
		Credits:   fx.ledger,
		Hooks:     fx.hooks,
		Knowledge: stubKB{},
		Notifier:  fx.notifier,
		Billing:   config.BillingConfig{AgentCreateCostMinor: 100, Currency: "USD"},
	})
	fx.svc.clock = func() time.Time { return fx.now }
	return fx
}

func TestSaveDraft_Idempotent(t *testing.T) {
	fx := newSubmitFixture()
	f := completeForm()

	a1, err := fx.svc.SaveDraft(context.Background(), "u1", "", f)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	a2, err := fx.svc.SaveDraft(context.Background(), "u1", a1.ID, f)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if a2.ID != a1.ID {
		t.Fatalf("expected id reuse, got %q vs %q", a2.ID, a1.ID)
	}
	if len(fx.repo.Agents) != 1 {
		t.Fatalf("expected one row, got %d", len(fx.repo.Agents))
	}
	if fx.repo.Agents[a1.ID].Status != StatusDraft {
		t.Fatalf("expected draft status")
	}
}

func TestSubmit_DoubleInvocationGuard(t *testing.T) {
	fx := newSubmitFixture()
	fx.hooks.CreateGate = make(chan struct{})
	fx.hooks.Entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := fx.svc.Submit(context.Background(), "u1", "agent-1", completeForm())
		done <- err
	}()
	<-fx.hooks.Entered

	// Second invocation while the first is awaiting the webhook.
	if _, err := fx.svc.Submit(context.Background(), "u1", "agent-1", completeForm()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	close(fx.hooks.CreateGate)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if fx.hooks.CreateCalls != 1 {
		t.Fatalf("expected exactly one webhook call, got %d", fx.hooks.CreateCalls)
	}
	if len(fx.repo.Agents) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(fx.repo.Agents))
	}
}

func TestSubmit_DoubleInvocationGuardWithoutAgentID(t *testing.T) {
	fx := newSubmitFixture()
	fx.hooks.CreateGate = make(chan struct{})
	fx.hooks.Entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := fx.svc.Submit(context.Background(), "u1", "", completeForm())
		done <- err
	}()
	<-fx.hooks.Entered

	// Without an id each invocation mints its own, so the guard must key on
	// the user to make these collide.
	if _, err := fx.svc.Submit(context.Background(), "u1", "", completeForm()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	close(fx.hooks.CreateGate)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if fx.hooks.CreateCalls != 1 {
		t.Fatalf("expected exactly one creation webhook call, got %d", fx.hooks.CreateCalls)
	}
	if len(fx.repo.Agents) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(fx.repo.Agents))
	}
}

// gatedRepo blocks Get until released, to hold a save inside the service.
type gatedRepo struct {
	*MemoryRepo
	Gate    chan struct{}
	Entered chan struct{}
}

func (g *gatedRepo) Get(ctx context.Context, id string) (Agent, error) {
	g.Entered <- struct{}{}
	<-g.Gate
	return g.MemoryRepo.Get(ctx, id)
}

func TestSaveDraft_DoubleInvocationGuardWithoutAgentID(t *testing.T) {
	fx := newSubmitFixture()
	gated := &gatedRepo{
		MemoryRepo: fx.repo,
		Gate:       make(chan struct{}),
		Entered:    make(chan struct{}, 2),
	}
	svc := NewService(Deps{
		Repo:    gated,
		Numbers: fx.numbers,
		Credits: fx.ledger,
		Hooks:   fx.hooks,
	})

	done := make(chan error, 1)
	go func() {
		_, err := svc.SaveDraft(context.Background(), "u1", "", completeForm())
		done <- err
	}()
	<-gated.Entered

	if _, err := svc.SaveDraft(context.Background(), "u1", "", completeForm()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	close(gated.Gate)
	if err := <-done; err != nil {
		t.Fatalf("first save: %v", err)
	}
	if len(fx.repo.Agents) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(fx.repo.Agents))
	}
}

func TestSubmit_CreditPrecheckBeforeAnyExternalCall(t *testing.T) {
	fx := newSubmitFixture()
	fx.ledger.Balance = 50

	_, err := fx.svc.Submit(context.Background(), "u1", "", completeForm())
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if fx.hooks.CreateCalls != 0 || fx.hooks.UnbindCalls != 0 {
		t.Fatalf("no webhook may fire before the credit precheck fails")
	}
}

func TestSubmit_NumberExclusivity(t *testing.T) {
	fx := newSubmitFixture()

	a, err := fx.svc.Submit(context.Background(), "u1", "agent-a", completeForm())
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if fx.numbers.holder("+15551234567") != a.ID {
		t.Fatalf("expected number held by %s", a.ID)
	}

	// Outside the duplicate window, with a different name.
	fx.now = fx.now.Add(time.Minute)
	f := completeForm()
	f.AgentName = "Scheduler"
	b, err := fx.svc.Submit(context.Background(), "u1", "agent-b", f)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if fx.hooks.UnbindCalls != 1 {
		t.Fatalf("expected one unbind call, got %d", fx.hooks.UnbindCalls)
	}
	prior, _ := fx.repo.Get(context.Background(), a.ID)
	if prior.Status != StatusInactive {
		t.Fatalf("expected displaced agent inactive, got %s", prior.Status)
	}
	if prior.AssignedNumber != nil {
		t.Fatalf("expected displaced agent number cleared")
	}
	if fx.numbers.holder("+15551234567") != b.ID {
		t.Fatalf("expected number held by %s", b.ID)
	}
	if b.AssignedNumber == nil || b.AssignedNumber.PhoneNumber != "+15551234567" {
		t.Fatalf("expected winner to carry the number copy")
	}
}

func TestSubmit_DuplicateWithinWindowRejected(t *testing.T) {
	fx := newSubmitFixture()

	if _, err := fx.svc.Submit(context.Background(), "u1", "agent-a", completeForm()); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// Same owner, name and number two seconds later: a double submit.
	fx.now = fx.now.Add(2 * time.Second)
	if _, err := fx.svc.Submit(context.Background(), "u1", "agent-b", completeForm()); !errors.Is(err, ErrDuplicateSubmit) {
		t.Fatalf("expected ErrDuplicateSubmit, got %v", err)
	}

	// Past the window it is a legitimate distinct agent with reused fields.
	fx.now = fx.now.Add(10 * time.Second)
	if _, err := fx.svc.Submit(context.Background(), "u1", "agent-c", completeForm()); err != nil {
		t.Fatalf("submit past window: %v", err)
	}
}

func TestSubmit_DebitFailureRollsBackNewAgent(t *testing.T) {
	fx := newSubmitFixture()
	fx.ledger.DebitErr = errors.New("ledger down")

	_, err := fx.svc.Submit(context.Background(), "u1", "agent-a", completeForm())
	if err == nil {
		t.Fatalf("expected debit failure surfaced")
	}
	if _, gerr := fx.repo.Get(context.Background(), "agent-a"); !errors.Is(gerr, ErrNotFound) {
		t.Fatalf("expected fresh row soft-deleted, got %v", gerr)
	}
	if got := fx.numbers.holder("+15551234567"); got != "" {
		t.Fatalf("expected number released, held by %q", got)
	}
}

func TestSubmit_ReassignFailureRefundsCreationDebit(t *testing.T) {
	fx := newSubmitFixture()
	fx.numbers.ReassignErr = errors.New("assignment conflict")

	_, err := fx.svc.Submit(context.Background(), "u1", "agent-a", completeForm())
	if err == nil {
		t.Fatalf("expected reassign failure surfaced")
	}
	if len(fx.ledger.Refunds) != 1 {
		t.Fatalf("expected one refund entry, got %d", len(fx.ledger.Refunds))
	}
	if fx.ledger.Balance != 1000 {
		t.Fatalf("expected balance restored to 1000, got %d", fx.ledger.Balance)
	}
	if _, gerr := fx.repo.Get(context.Background(), "agent-a"); !errors.Is(gerr, ErrNotFound) {
		t.Fatalf("expected fresh row soft-deleted, got %v", gerr)
	}
}

func TestSubmit_DebitFailureRevertsDraft(t *testing.T) {
	fx := newSubmitFixture()

	d, err := fx.svc.SaveDraft(context.Background(), "u1", "", completeForm())
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	fx.ledger.DebitErr = errors.New("ledger down")

	if _, err := fx.svc.Submit(context.Background(), "u1", d.ID, completeForm()); err == nil {
		t.Fatalf("expected debit failure surfaced")
	}
	got, err := fx.repo.Get(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusDraft {
		t.Fatalf("expected status reverted to draft, got %s", got.Status)
	}
}

func TestSubmit_UnbindFailureFatalOnCreation(t *testing.T) {
	fx := newSubmitFixture()
	fx.numbers.Nums["+15551234567"] = NumberAssignment{
		Provider:          "twilio",
		PhoneNumber:       "+15551234567",
		OwnerUserID:       "u1",
		AssignedToAgentID: "holder",
	}
	fx.repo.Agents["holder"] = Agent{ID: "holder", UserID: "u1", Status: StatusActive}
	fx.hooks.UnbindErr = errors.New("automation down")

	if _, err := fx.svc.Submit(context.Background(), "u1", "agent-a", completeForm()); err == nil {
		t.Fatalf("expected fatal unbind failure on creation")
	}
	if fx.hooks.CreateCalls != 0 {
		t.Fatalf("creation webhook must not fire after fatal unbind")
	}
	if _, err := fx.repo.Get(context.Background(), "agent-a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("no row may be written after fatal unbind")
	}
}

func TestSubmit_UnbindFailureBestEffortOnEdit(t *testing.T) {
	fx := newSubmitFixture()
	fx.numbers.Nums["+15551234567"] = NumberAssignment{
		Provider:          "twilio",
		PhoneNumber:       "+15551234567",
		OwnerUserID:       "u1",
		AssignedToAgentID: "holder",
	}
	fx.repo.Agents["holder"] = Agent{ID: "holder", UserID: "u1", Status: StatusActive}
	fx.repo.Agents["agent-b"] = Agent{ID: "agent-b", UserID: "u1", Status: StatusActive, CreatedAt: fx.now}
	fx.hooks.UnbindErr = errors.New("automation down")

	a, err := fx.svc.Submit(context.Background(), "u1", "agent-b", completeForm())
	if err != nil {
		t.Fatalf("edit submit should survive unbind failure: %v", err)
	}
	if fx.hooks.EditCalls != 1 {
		t.Fatalf("expected edit webhook, got %d calls", fx.hooks.EditCalls)
	}
	if a.Status != StatusActive {
		t.Fatalf("edit must keep the existing status, got %s", a.Status)
	}
	if fx.numbers.holder("+15551234567") != "agent-b" {
		t.Fatalf("expected number reassigned to agent-b")
	}
	if len(fx.ledger.Debits) != 0 {
		t.Fatalf("edits must not be billed")
	}
}

func TestSubmit_WebhookFailureAbortsWithoutWrite(t *testing.T) {
	fx := newSubmitFixture()
	fx.hooks.CreateErr = errors.New("automation down")

	if _, err := fx.svc.Submit(context.Background(), "u1", "agent-a", completeForm()); err == nil {
		t.Fatalf("expected webhook failure surfaced")
	}
	if _, err := fx.repo.Get(context.Background(), "agent-a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no row written")
	}
	if len(fx.ledger.Debits) != 0 {
		t.Fatalf("expected no debit")
	}
}

func TestSubmit_IncompleteFormRejected(t *testing.T) {
	fx := newSubmitFixture()
	f := completeForm()
	f.Instructions = ""

	if _, err := fx.svc.Submit(context.Background(), "u1", "", f); !errors.Is(err, ErrFormInvalid) {
		t.Fatalf("expected ErrFormInvalid, got %v", err)
	}
}

func TestSubmit_NotifiesOnSuccess(t *testing.T) {
	fx := newSubmitFixture()

	if _, err := fx.svc.Submit(context.Background(), "u1", "agent-a", completeForm()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(fx.notifier.Types) != 1 || fx.notifier.Types[0] != notify.TypeAgentCreated {
		t.Fatalf("expected one agent_created notification, got %v", fx.notifier.Types)
	}
}
