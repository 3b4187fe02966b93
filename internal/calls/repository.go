package calls

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository { return &SQLRepository{db: db} }

const callColumns = `
id, user_id, COALESCE(agent_id, ''), "from", "to", status, duration,
COALESCE(recording_url, ''), COALESCE(transcript, ''), created_at`

func (r *SQLRepository) List(ctx context.Context, userID string, f ListFilter) ([]Call, error) {
	q := `SELECT ` + callColumns + ` FROM call_history WHERE user_id = $1`
	args := []any{userID}

	if f.AgentID != "" {
		args = append(args, f.AgentID)
		q += fmt.Sprintf(" AND agent_id = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		q += fmt.Sprintf(" AND status = $%d", len(args))
	}
	args = append(args, f.Limit)
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, f.Offset)
	q += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Call
	for rows.Next() {
		c, err := scanCall(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLRepository) Get(ctx context.Context, id string) (Call, error) {
	q := `SELECT ` + callColumns + ` FROM call_history WHERE id = $1`
	c, err := scanCall(r.db.QueryRowContext(ctx, q, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Call{}, ErrNotFound
	}
	return c, err
}

// Statistics calls the get_call_statistics procedure.
func (r *SQLRepository) Statistics(ctx context.Context, userID string) (Statistics, error) {
	const q = `SELECT total_calls, completed_calls, failed_calls, total_seconds, avg_seconds FROM get_call_statistics($1)`
	s := Statistics{UserID: userID}
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&s.TotalCalls, &s.CompletedCalls, &s.FailedCalls, &s.TotalSeconds, &s.AvgSeconds,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Statistics{UserID: userID}, nil
	}
	return s, err
}

func scanCall(scan func(dest ...any) error) (Call, error) {
	var (
		c      Call
		status string
	)
	if err := scan(
		&c.ID, &c.UserID, &c.AgentID, &c.From, &c.To, &status,
		&c.DurationSeconds, &c.RecordingURL, &c.Transcript, &c.CreatedAt,
	); err != nil {
		return Call{}, err
	}
	c.Status = CallStatus(status)
	return c, nil
}
