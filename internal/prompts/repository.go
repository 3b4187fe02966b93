package prompts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// SQLRepository persists prompts in the ai_prompts table.
// welcome_messages, form_data and agent_profile are JSONB columns.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository { return &SQLRepository{db: db} }

const promptColumns = `
id, user_id, name, COALESCE(category, ''), system_prompt, COALESCE(begin_message, ''),
COALESCE(welcome_messages, 'null'::jsonb)::text,
COALESCE(form_data, 'null'::jsonb)::text,
COALESCE(agent_profile, 'null'::jsonb)::text,
is_active, is_template, usage_count, created_at, updated_at
`

func (r *SQLRepository) List(ctx context.Context, userID string) ([]AIPrompt, error) {
	q := `SELECT ` + promptColumns + ` FROM ai_prompts WHERE user_id = $1 ORDER BY updated_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AIPrompt
	for rows.Next() {
		p, err := scanPrompt(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLRepository) Get(ctx context.Context, id string) (AIPrompt, error) {
	q := `SELECT ` + promptColumns + ` FROM ai_prompts WHERE id = $1`
	p, err := scanPrompt(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AIPrompt{}, ErrNotFound
		}
		return AIPrompt{}, err
	}
	return p, nil
}

func (r *SQLRepository) Insert(ctx context.Context, p AIPrompt) error {
	const q = `
INSERT INTO ai_prompts (
  id, user_id, name, category, system_prompt, begin_message,
  welcome_messages, form_data, agent_profile,
  is_active, is_template, usage_count, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`
	wm, fd, ap, err := marshalPromptJSON(p)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		p.ID, p.UserID, p.Name, p.Category, p.SystemPrompt, p.BeginMessage,
		wm, fd, ap,
		p.IsActive, p.IsTemplate, p.UsageCount, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *SQLRepository) Update(ctx context.Context, p AIPrompt) error {
	const q = `
UPDATE ai_prompts SET
  name = $2, category = $3, system_prompt = $4, begin_message = $5,
  welcome_messages = $6, form_data = $7, agent_profile = $8,
  is_active = $9, is_template = $10, updated_at = $11
WHERE id = $1
`
	wm, fd, ap, err := marshalPromptJSON(p)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q,
		p.ID, p.Name, p.Category, p.SystemPrompt, p.BeginMessage,
		wm, fd, ap,
		p.IsActive, p.IsTemplate, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ai_prompts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLRepository) IncrementUsage(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE ai_prompts SET usage_count = usage_count + 1 WHERE id = $1`, id)
	return err
}

func scanPrompt(scan func(dest ...any) error) (AIPrompt, error) {
	var p AIPrompt
	var wmRaw, fdRaw, apRaw string
	err := scan(
		&p.ID, &p.UserID, &p.Name, &p.Category, &p.SystemPrompt, &p.BeginMessage,
		&wmRaw, &fdRaw, &apRaw,
		&p.IsActive, &p.IsTemplate, &p.UsageCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return AIPrompt{}, err
	}
	if wmRaw != "" && wmRaw != "null" {
		if err := json.Unmarshal([]byte(wmRaw), &p.WelcomeMessages); err != nil {
			return AIPrompt{}, err
		}
	}
	if fdRaw != "" && fdRaw != "null" {
		if err := json.Unmarshal([]byte(fdRaw), &p.FormData); err != nil {
			return AIPrompt{}, err
		}
	}
	if apRaw != "" && apRaw != "null" {
		p.AgentProfile = &AgentPromptProfile{}
		if err := json.Unmarshal([]byte(apRaw), p.AgentProfile); err != nil {
			return AIPrompt{}, err
		}
	}
	return p, nil
}

func marshalPromptJSON(p AIPrompt) (wm, fd, ap any, err error) {
	if p.WelcomeMessages != nil {
		b, e := json.Marshal(p.WelcomeMessages)
		if e != nil {
			return nil, nil, nil, e
		}
		wm = string(b)
	}
	if p.FormData != nil {
		b, e := json.Marshal(p.FormData)
		if e != nil {
			return nil, nil, nil, e
		}
		fd = string(b)
	}
	if p.AgentProfile != nil {
		b, e := json.Marshal(p.AgentProfile)
		if e != nil {
			return nil, nil, nil, e
		}
		ap = string(b)
	}
	return wm, fd, ap, nil
}
