package notify

import (
	"context"
	"database/sql"
)

// SQLRepository writes notifications through the create_notification stored
// procedure so the insert shape stays owned by the database.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository { return &SQLRepository{db: db} }

func (r *SQLRepository) Create(ctx context.Context, n Notification) error {
	const q = `SELECT create_notification($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, q, n.ID, n.UserID, string(n.Type), n.Title, n.Message, nullIfEmpty(n.Link))
	return err
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
