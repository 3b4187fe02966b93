package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLRepository backs auth flows with the user_profiles, password_history and
// login_activity tables. Activity logging goes through the
// log_login_activity stored procedure.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository { return &SQLRepository{db: db} }

var ErrUserNotFound = errors.New("auth: user not found")

func (r *SQLRepository) FindByEmail(ctx context.Context, email string) (UserProfile, error) {
	const q = `
SELECT id, email, COALESCE(full_name, ''), role, password_hash, disabled, created_at
FROM user_profiles
WHERE lower(email) = lower($1)
`
	return r.scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (UserProfile, error) {
	const q = `
SELECT id, email, COALESCE(full_name, ''), role, password_hash, disabled, created_at
FROM user_profiles
WHERE id = $1
`
	return r.scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *SQLRepository) UserExists(ctx context.Context, email string) (bool, error) {
	const q = `SELECT check_user_exists($1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *SQLRepository) RecordLoginActivity(ctx context.Context, a LoginActivity) error {
	const q = `SELECT log_login_activity($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, q, nullIfEmpty(a.UserID), a.Email, a.IPAddress, a.UserAgent, a.Success)
	return err
}

func (r *SQLRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	const q = `UPDATE user_profiles SET password_hash = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, userID, passwordHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *SQLRepository) ListPasswordHashes(ctx context.Context, userID string, limit int) ([]string, error) {
	// Current hash first, then history newest-first.
	const q = `
SELECT password_hash FROM user_profiles WHERE id = $1
UNION ALL
SELECT password_hash FROM (
  SELECT password_hash, created_at FROM password_history
  WHERE user_id = $1
  ORDER BY created_at DESC
  LIMIT $2
) h
`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *SQLRepository) AppendPasswordHistory(ctx context.Context, userID, passwordHash string, at time.Time) error {
	const q = `INSERT INTO password_history (user_id, password_hash, created_at) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, q, userID, passwordHash, at)
	return err
}

func (r *SQLRepository) scanUser(row *sql.Row) (UserProfile, error) {
	var u UserProfile
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.PasswordHash, &u.Disabled, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserProfile{}, ErrUserNotFound
		}
		return UserProfile{}, err
	}
	return u, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
