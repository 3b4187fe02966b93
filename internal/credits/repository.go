package credits

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// NOTE: This repository assumes the following tables exist:
// - credit_ledger (immutable append-only)
// - credit_balances (projection)
//
// It also assumes an idempotency constraint:
// UNIQUE (user_id, idempotency_key) on credit_ledger

func getBalance(ctx context.Context, db *sql.DB, userID string) (Balance, error) {
	const q = `
SELECT user_id, currency, balance_minor, updated_at
FROM credit_balances
WHERE user_id = $1
`
	var b Balance
	if err := db.QueryRowContext(ctx, q, userID).Scan(
		&b.UserID,
		&b.Currency,
		&b.BalanceMinor,
		&b.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Balance{}, ErrNotFound
		}
		return Balance{}, err
	}
	return b, nil
}

func getBalanceTx(ctx context.Context, tx *sql.Tx, userID string) (Balance, error) {
	const q = `
SELECT user_id, currency, balance_minor, updated_at
FROM credit_balances
WHERE user_id = $1
`
	var b Balance
	if err := tx.QueryRowContext(ctx, q, userID).Scan(
		&b.UserID,
		&b.Currency,
		&b.BalanceMinor,
		&b.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Balance{}, ErrNotFound
		}
		return Balance{}, err
	}
	return b, nil
}

func getBalanceForUpdate(ctx context.Context, tx *sql.Tx, userID string) (Balance, error) {
	const q = `
SELECT user_id, currency, balance_minor, updated_at
FROM credit_balances
WHERE user_id = $1
FOR UPDATE
`
	var b Balance
	if err := tx.QueryRowContext(ctx, q, userID).Scan(
		&b.UserID,
		&b.Currency,
		&b.BalanceMinor,
		&b.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Balance{}, ErrNotFound
		}
		return Balance{}, err
	}
	return b, nil
}

func findLedgerByIdempotency(ctx context.Context, tx *sql.Tx, userID, key string) (LedgerEntry, bool, error) {
	const q = `
SELECT id, user_id, type, amount_minor, currency, external_ref, idempotency_key, metadata, created_at
FROM credit_ledger
WHERE user_id = $1 AND idempotency_key = $2
LIMIT 1
`
	var e LedgerEntry
	err := tx.QueryRowContext(ctx, q, userID, key).Scan(
		&e.ID,
		&e.UserID,
		&e.Type,
		&e.AmountMinor,
		&e.Currency,
		&e.ExternalRef,
		&e.IdempotencyKey,
		&e.Metadata,
		&e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LedgerEntry{}, false, nil
		}
		return LedgerEntry{}, false, err
	}
	return e, true, nil
}

func insertLedger(ctx context.Context, tx *sql.Tx, e LedgerEntry) error {
	const q = `
INSERT INTO credit_ledger (
  id, user_id, type, amount_minor, currency, external_ref, idempotency_key, metadata, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
)
`
	_, err := tx.ExecContext(ctx, q,
		e.ID,
		e.UserID,
		e.Type,
		e.AmountMinor,
		e.Currency,
		e.ExternalRef,
		e.IdempotencyKey,
		e.Metadata,
		e.CreatedAt,
	)
	return err
}

func applyBalanceDelta(ctx context.Context, tx *sql.Tx, userID, currency string, deltaMinor int64, now time.Time) (Balance, error) {
	// Upsert the balance row. Currency is kept stable; the service-level
	// currency check prevents mixed-currency rows.
	const q = `
INSERT INTO credit_balances (user_id, currency, balance_minor, updated_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (user_id)
DO UPDATE SET balance_minor = credit_balances.balance_minor + EXCLUDED.balance_minor,
              updated_at = EXCLUDED.updated_at
RETURNING user_id, currency, balance_minor, updated_at
`
	var b Balance
	if err := tx.QueryRowContext(ctx, q, userID, currency, deltaMinor, now).Scan(
		&b.UserID,
		&b.Currency,
		&b.BalanceMinor,
		&b.UpdatedAt,
	); err != nil {
		return Balance{}, err
	}
	return b, nil
}
