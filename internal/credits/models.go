package credits

import "time"

// LedgerEntry is an immutable append-only entry.
// Each row represents a credit/debit posted against a user's credit balance.
//
// Money invariant: any balance change MUST have a corresponding ledger entry.
type LedgerEntry struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	// Type categorizes the ledger entry. Keep stable.
	Type LedgerEntryType `json:"type" db:"type"`

	// AmountMinor is the signed amount in minor units (e.g., cents).
	// Credits are positive, debits are negative.
	AmountMinor int64  `json:"amount_minor" db:"amount_minor"`
	Currency    string `json:"currency" db:"currency"`

	// ExternalRef is optional: agent_id, invoice_id, the refunded ledger id, etc.
	ExternalRef string `json:"external_ref,omitempty" db:"external_ref"`

	// IdempotencyKey is required for safe retries of money-posting operations.
	IdempotencyKey string `json:"idempotency_key" db:"idempotency_key"`

	// Metadata is optional JSON for audit/debug (store as JSONB in Postgres).
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type LedgerEntryType string

const (
	LedgerEntryTypeCredit LedgerEntryType = "credit" // top-up, adjustment
	LedgerEntryTypeDebit  LedgerEntryType = "debit"  // agent creation fee
	LedgerEntryTypeRefund LedgerEntryType = "refund" // compensation for a failed commit
)

// Balance is the projection row for a user's available credits.
type Balance struct {
	UserID       string    `json:"user_id" db:"user_id"`
	Currency     string    `json:"currency" db:"currency"`
	BalanceMinor int64     `json:"balance_minor" db:"balance_minor"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
