package numbers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository { return &SQLRepository{db: db} }

const numberColumns = `
id, user_id, phone_number, country_code, provider,
COALESCE(credentials, '{}'::jsonb)::text,
status, COALESCE(assigned_to_agent_id, ''),
COALESCE(webhook_status, ''), COALESCE(webhook_test_result, ''),
created_at, updated_at`

func (r *SQLRepository) Get(ctx context.Context, id string) (InboundNumber, error) {
	q := `SELECT ` + numberColumns + ` FROM inbound_numbers WHERE id = $1`
	n, err := scanNumber(r.db.QueryRowContext(ctx, q, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return InboundNumber{}, ErrNotFound
	}
	return n, err
}

func (r *SQLRepository) FindByNumber(ctx context.Context, phoneNumber string) (InboundNumber, error) {
	q := `SELECT ` + numberColumns + ` FROM inbound_numbers WHERE phone_number = $1`
	n, err := scanNumber(r.db.QueryRowContext(ctx, q, phoneNumber).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return InboundNumber{}, ErrNotFound
	}
	return n, err
}

func (r *SQLRepository) List(ctx context.Context, userID string) ([]InboundNumber, error) {
	q := `SELECT ` + numberColumns + ` FROM inbound_numbers WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InboundNumber
	for rows.Next() {
		n, err := scanNumber(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *SQLRepository) Insert(ctx context.Context, n InboundNumber) error {
	creds, err := json.Marshal(n.Credentials)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO inbound_numbers (
	id, user_id, phone_number, country_code, provider, credentials,
	status, webhook_status, webhook_test_result, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10, $11)
`
	_, err = r.db.ExecContext(ctx, q,
		n.ID, n.UserID, n.PhoneNumber, n.CountryCode, string(n.Provider), string(creds),
		string(n.Status), n.WebhookStatus, n.WebhookTestResult, n.CreatedAt, n.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrPhoneNumberExists
	}
	return err
}

func (r *SQLRepository) Update(ctx context.Context, n InboundNumber) error {
	creds, err := json.Marshal(n.Credentials)
	if err != nil {
		return err
	}
	const q = `
UPDATE inbound_numbers SET
	country_code = $2, provider = $3, credentials = $4::jsonb,
	status = $5, webhook_status = $6, webhook_test_result = $7, updated_at = $8
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		n.ID, n.CountryCode, string(n.Provider), string(creds),
		string(n.Status), n.WebhookStatus, n.WebhookTestResult, n.UpdatedAt,
	)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// ReassignAgent moves the assignment conditionally: it succeeds only while
// the number is unassigned, held by the expected agent, or already held by
// the target. Racing sessions cannot both win.
func (r *SQLRepository) ReassignAgent(ctx context.Context, phoneNumber, toAgentID, expectedHolder string) error {
	const q = `
UPDATE inbound_numbers
SET assigned_to_agent_id = $2, updated_at = NOW()
WHERE phone_number = $1
  AND (assigned_to_agent_id IS NOT DISTINCT FROM NULLIF($3, '')
       OR assigned_to_agent_id = $2)
`
	res, err := r.db.ExecContext(ctx, q, phoneNumber, toAgentID, expectedHolder)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrAssignmentConflict
	}
	return nil
}

// ReleaseAgent clears the assignment only while the given agent still holds
// it. A no-op otherwise.
func (r *SQLRepository) ReleaseAgent(ctx context.Context, phoneNumber, holderAgentID string) error {
	const q = `
UPDATE inbound_numbers
SET assigned_to_agent_id = NULL, updated_at = NOW()
WHERE phone_number = $1 AND assigned_to_agent_id = $2
`
	_, err := r.db.ExecContext(ctx, q, phoneNumber, holderAgentID)
	return err
}

func scanNumber(scan func(dest ...any) error) (InboundNumber, error) {
	var (
		n        InboundNumber
		creds    string
		provider string
		status   string
	)
	if err := scan(
		&n.ID, &n.UserID, &n.PhoneNumber, &n.CountryCode, &provider,
		&creds, &status, &n.AssignedToAgentID,
		&n.WebhookStatus, &n.WebhookTestResult,
		&n.CreatedAt, &n.UpdatedAt,
	); err != nil {
		return InboundNumber{}, err
	}
	n.Provider = Provider(provider)
	n.Status = Status(status)
	if err := json.Unmarshal([]byte(creds), &n.Credentials); err != nil {
		return InboundNumber{}, err
	}
	return n, nil
}
