package credits

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"voiceagent-platform/pkg/utils"

	"github.com/google/uuid"
)

// Service provides credit-balance operations.
//
// Money invariants:
// - No balance updates without a ledger entry
// - Ledger is append-only (immutable)
// - All money operations must be executed in a DB transaction
//
// Balance strategy:
// - Balance is stored in a projection table (credit_balances) updated
//   atomically alongside ledger inserts.
type Service struct {
	db *sql.DB
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, clock: time.Now}
}

var (
	ErrNotFound            = errors.New("credits: not found")
	ErrInsufficientCredits = errors.New("credits: insufficient balance")
	ErrInvalidArgument     = errors.New("credits: invalid argument")
)

type CreditRequest struct {
	AmountMinor    int64  `json:"amount_minor"`
	Currency       string `json:"currency"`
	ExternalRef    string `json:"external_ref,omitempty"`
	IdempotencyKey string `json:"idempotency_key"`
	Metadata       string `json:"metadata,omitempty"`
}

type DebitRequest struct {
	AmountMinor    int64  `json:"amount_minor"`
	Currency       string `json:"currency"`
	ExternalRef    string `json:"external_ref,omitempty"`
	IdempotencyKey string `json:"idempotency_key"`
	Metadata       string `json:"metadata,omitempty"`
}

func (s *Service) GetBalance(ctx context.Context, userID string) (Balance, error) {
	if userID == "" {
		return Balance{}, ErrInvalidArgument
	}
	return getBalance(ctx, s.db, userID)
}

// Credit posts a top-up. Idempotent per (user, idempotency key).
func (s *Service) Credit(ctx context.Context, userID string, req CreditRequest) (LedgerEntry, Balance, error) {
	if err := validateMoneyReq(userID, req.AmountMinor, req.Currency, req.IdempotencyKey); err != nil {
		return LedgerEntry{}, Balance{}, err
	}

	now := s.clock().UTC()
	ledgerID := uuid.NewString()

	var outLedger LedgerEntry
	var outBal Balance

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if existing, ok, err := findLedgerByIdempotency(ctx, tx, userID, req.IdempotencyKey); err != nil {
			return err
		} else if ok {
			outLedger = existing
			b, err := getBalanceTx(ctx, tx, userID)
			if err != nil {
				return err
			}
			outBal = b
			return nil
		}

		entry := LedgerEntry{
			ID:             ledgerID,
			UserID:         userID,
			Type:           LedgerEntryTypeCredit,
			AmountMinor:    req.AmountMinor,
			Currency:       req.Currency,
			ExternalRef:    req.ExternalRef,
			IdempotencyKey: req.IdempotencyKey,
			Metadata:       req.Metadata,
			CreatedAt:      now,
		}
		if err := insertLedger(ctx, tx, entry); err != nil {
			return err
		}

		b, err := applyBalanceDelta(ctx, tx, userID, req.Currency, req.AmountMinor, now)
		if err != nil {
			return err
		}
		outLedger = entry
		outBal = b
		return nil
	})

	return outLedger, outBal, err
}

// Debit charges a user. Fails with ErrInsufficientCredits before writing
// anything when the projection balance cannot cover the amount.
// Idempotent per (user, idempotency key): a retried debit never double-charges.
func (s *Service) Debit(ctx context.Context, userID string, req DebitRequest) (LedgerEntry, Balance, error) {
	if err := validateMoneyReq(userID, req.AmountMinor, req.Currency, req.IdempotencyKey); err != nil {
		return LedgerEntry{}, Balance{}, err
	}

	now := s.clock().UTC()
	ledgerID := uuid.NewString()

	var outLedger LedgerEntry
	var outBal Balance

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if existing, ok, err := findLedgerByIdempotency(ctx, tx, userID, req.IdempotencyKey); err != nil {
			return err
		} else if ok {
			outLedger = existing
			b, err := getBalanceTx(ctx, tx, userID)
			if err != nil {
				return err
			}
			outBal = b
			return nil
		}

		// Lock the projection row to serialize concurrent debits per user.
		b, err := getBalanceForUpdate(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrInsufficientCredits
			}
			return err
		}
		if b.Currency != req.Currency {
			return ErrInvalidArgument
		}
		if b.BalanceMinor < req.AmountMinor {
			return ErrInsufficientCredits
		}

		entry := LedgerEntry{
			ID:             ledgerID,
			UserID:         userID,
			Type:           LedgerEntryTypeDebit,
			AmountMinor:    -req.AmountMinor,
			Currency:       req.Currency,
			ExternalRef:    req.ExternalRef,
			IdempotencyKey: req.IdempotencyKey,
			Metadata:       req.Metadata,
			CreatedAt:      now,
		}
		if err := insertLedger(ctx, tx, entry); err != nil {
			return err
		}

		out, err := applyBalanceDelta(ctx, tx, userID, req.Currency, -req.AmountMinor, now)
		if err != nil {
			return err
		}
		outLedger = entry
		outBal = out
		return nil
	})

	return outLedger, outBal, err
}

// Refund compensates a prior debit. The refunded ledger id goes into
// ExternalRef so the pair is auditable; the refund has its own idempotency
// key so a retried compensation never double-credits.
func (s *Service) Refund(ctx context.Context, userID string, debited LedgerEntry, idempotencyKey string) (LedgerEntry, Balance, error) {
	if userID == "" || debited.ID == "" || idempotencyKey == "" {
		return LedgerEntry{}, Balance{}, ErrInvalidArgument
	}
	amount := debited.AmountMinor
	if amount < 0 {
		amount = -amount
	}
	if amount == 0 {
		return LedgerEntry{}, Balance{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	ledgerID := uuid.NewString()

	var outLedger LedgerEntry
	var outBal Balance

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if existing, ok, err := findLedgerByIdempotency(ctx, tx, userID, idempotencyKey); err != nil {
			return err
		} else if ok {
			outLedger = existing
			b, err := getBalanceTx(ctx, tx, userID)
			if err != nil {
				return err
			}
			outBal = b
			return nil
		}

		entry := LedgerEntry{
			ID:             ledgerID,
			UserID:         userID,
			Type:           LedgerEntryTypeRefund,
			AmountMinor:    amount,
			Currency:       debited.Currency,
			ExternalRef:    debited.ID,
			IdempotencyKey: idempotencyKey,
			CreatedAt:      now,
		}
		if err := insertLedger(ctx, tx, entry); err != nil {
			return err
		}

		b, err := applyBalanceDelta(ctx, tx, userID, debited.Currency, amount, now)
		if err != nil {
			return err
		}
		outLedger = entry
		outBal = b
		return nil
	})

	return outLedger, outBal, err
}

func validateMoneyReq(userID string, amountMinor int64, currency, idempotencyKey string) error {
	if userID == "" {
		return ErrInvalidArgument
	}
	if currency == "" {
		return ErrInvalidArgument
	}
	if idempotencyKey == "" {
		return ErrInvalidArgument
	}
	if amountMinor <= 0 {
		return ErrInvalidArgument
	}
	return nil
}
