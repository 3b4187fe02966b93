package agents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SQLRepository persists agents in voice_agents. Slices and structured
// blobs (welcome messages, number copy, metadata) live in JSONB columns;
// soft deletion uses deleted_at.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository { return &SQLRepository{db: db} }

const agentColumns = `
id, user_id, agent_name, company_name, website_url, goal,
background_context, instructions,
COALESCE(welcome_messages, '[]'::jsonb)::text,
voice, language, agent_type, timezone,
temperature, confidence, verbosity,
fallback_enabled, fallback_number,
COALESCE(assigned_number, 'null'::jsonb)::text,
knowledge_base_id, schedule_id, status,
COALESCE(metadata, 'null'::jsonb)::text,
deleted_at, created_at, updated_at`

func (r *SQLRepository) Get(ctx context.Context, id string) (Agent, error) {
	q := `SELECT ` + agentColumns + ` FROM voice_agents WHERE id = $1 AND deleted_at IS NULL`
	a, err := scanAgent(r.db.QueryRowContext(ctx, q, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Agent{}, ErrNotFound
	}
	return a, err
}

func (r *SQLRepository) List(ctx context.Context, userID string) ([]Agent, error) {
	q := `SELECT ` + agentColumns + ` FROM voice_agents
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY updated_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Agent
	for rows.Next() {
		a, err := scanAgent(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLRepository) Upsert(ctx context.Context, a Agent) error {
	wm, an, md, err := marshalAgentJSON(a)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO voice_agents (
	id, user_id, agent_name, company_name, website_url, goal,
	background_context, instructions, welcome_messages,
	voice, language, agent_type, timezone,
	temperature, confidence, verbosity,
	fallback_enabled, fallback_number,
	assigned_number, knowledge_base_id, schedule_id,
	status, metadata, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11, $12, $13,
	$14, $15, $16, $17, $18, $19::jsonb, $20, $21, $22, $23::jsonb, $24, $25
)
ON CONFLICT (id) DO UPDATE SET
	agent_name = EXCLUDED.agent_name,
	company_name = EXCLUDED.company_name,
	website_url = EXCLUDED.website_url,
	goal = EXCLUDED.goal,
	background_context = EXCLUDED.background_context,
	instructions = EXCLUDED.instructions,
	welcome_messages = EXCLUDED.welcome_messages,
	voice = EXCLUDED.voice,
	language = EXCLUDED.language,
	agent_type = EXCLUDED.agent_type,
	timezone = EXCLUDED.timezone,
	temperature = EXCLUDED.temperature,
	confidence = EXCLUDED.confidence,
	verbosity = EXCLUDED.verbosity,
	fallback_enabled = EXCLUDED.fallback_enabled,
	fallback_number = EXCLUDED.fallback_number,
	assigned_number = EXCLUDED.assigned_number,
	knowledge_base_id = EXCLUDED.knowledge_base_id,
	schedule_id = EXCLUDED.schedule_id,
	status = EXCLUDED.status,
	metadata = EXCLUDED.metadata,
	updated_at = EXCLUDED.updated_at
`
	_, err = r.db.ExecContext(ctx, q,
		a.ID, a.UserID, a.AgentName, a.CompanyName, a.WebsiteURL, a.Goal,
		a.BackgroundContext, a.Instructions, wm,
		a.Voice, a.Language, a.AgentType, a.Timezone,
		a.Temperature, a.Confidence, a.Verbosity,
		a.Fallback.Enabled, nullIfEmpty(a.Fallback.Number),
		an, nullIfEmpty(a.KnowledgeBaseID), nullIfEmpty(a.ScheduleID),
		string(a.Status), md, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *SQLRepository) Update(ctx context.Context, a Agent) error {
	wm, an, md, err := marshalAgentJSON(a)
	if err != nil {
		return err
	}
	const q = `
UPDATE voice_agents SET
	agent_name = $2, company_name = $3, website_url = $4, goal = $5,
	background_context = $6, instructions = $7, welcome_messages = $8::jsonb,
	voice = $9, language = $10, agent_type = $11, timezone = $12,
	temperature = $13, confidence = $14, verbosity = $15,
	fallback_enabled = $16, fallback_number = $17,
	assigned_number = $18::jsonb, knowledge_base_id = $19, schedule_id = $20,
	status = $21, metadata = $22::jsonb, updated_at = $23
WHERE id = $1 AND deleted_at IS NULL
`
	res, err := r.db.ExecContext(ctx, q,
		a.ID, a.AgentName, a.CompanyName, a.WebsiteURL, a.Goal,
		a.BackgroundContext, a.Instructions, wm,
		a.Voice, a.Language, a.AgentType, a.Timezone,
		a.Temperature, a.Confidence, a.Verbosity,
		a.Fallback.Enabled, nullIfEmpty(a.Fallback.Number),
		an, nullIfEmpty(a.KnowledgeBaseID), nullIfEmpty(a.ScheduleID),
		string(a.Status), md, a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *SQLRepository) SoftDelete(ctx context.Context, id string) error {
	const q = `UPDATE voice_agents SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *SQLRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	const q = `UPDATE voice_agents SET status = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, id, string(status))
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *SQLRepository) ClearNumber(ctx context.Context, id string) error {
	const q = `UPDATE voice_agents SET assigned_number = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *SQLRepository) FindRecentDuplicate(ctx context.Context, userID, name, phoneNumber string, since time.Time) (Agent, error) {
	q := `SELECT ` + agentColumns + ` FROM voice_agents
WHERE user_id = $1
  AND agent_name = $2
  AND assigned_number->>'phone_number' = $3
  AND created_at >= $4
  AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT 1`
	a, err := scanAgent(r.db.QueryRowContext(ctx, q, userID, name, phoneNumber, since).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Agent{}, ErrNotFound
	}
	return a, err
}

func scanAgent(scan func(dest ...any) error) (Agent, error) {
	var (
		a              Agent
		wm, an, md     string
		fallbackNumber sql.NullString
		kbID, schedID  sql.NullString
		status         string
		deletedAt      sql.NullTime
	)
	if err := scan(
		&a.ID, &a.UserID, &a.AgentName, &a.CompanyName, &a.WebsiteURL, &a.Goal,
		&a.BackgroundContext, &a.Instructions, &wm,
		&a.Voice, &a.Language, &a.AgentType, &a.Timezone,
		&a.Temperature, &a.Confidence, &a.Verbosity,
		&a.Fallback.Enabled, &fallbackNumber,
		&an, &kbID, &schedID, &status, &md,
		&deletedAt, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return Agent{}, err
	}

	a.Fallback.Number = fallbackNumber.String
	a.KnowledgeBaseID = kbID.String
	a.ScheduleID = schedID.String
	a.Status = Status(status)
	if deletedAt.Valid {
		t := deletedAt.Time
		a.DeletedAt = &t
	}
	if err := json.Unmarshal([]byte(wm), &a.WelcomeMessages); err != nil {
		return Agent{}, err
	}
	if err := json.Unmarshal([]byte(an), &a.AssignedNumber); err != nil {
		return Agent{}, err
	}
	var md2 *Metadata
	if err := json.Unmarshal([]byte(md), &md2); err != nil {
		return Agent{}, err
	}
	if md2 != nil {
		a.Metadata = *md2
	}
	return a, nil
}

func marshalAgentJSON(a Agent) (wm, an, md any, err error) {
	b, err := json.Marshal(a.WelcomeMessages)
	if err != nil {
		return nil, nil, nil, err
	}
	wm = string(b)

	if a.AssignedNumber != nil {
		b, err = json.Marshal(a.AssignedNumber)
		if err != nil {
			return nil, nil, nil, err
		}
		an = string(b)
	}

	b, err = json.Marshal(a.Metadata)
	if err != nil {
		return nil, nil, nil, err
	}
	md = string(b)
	return wm, an, md, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
