package knowledge

import (
	"context"
	"database/sql"
	"errors"
)

type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository { return &SQLRepository{db: db} }

func (r *SQLRepository) List(ctx context.Context, userID string) ([]KnowledgeBase, error) {
	const q = `
SELECT id, user_id, name, created_at
FROM knowledge_bases
WHERE user_id = $1
ORDER BY created_at DESC
`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KnowledgeBase
	for rows.Next() {
		var kb KnowledgeBase
		if err := rows.Scan(&kb.ID, &kb.UserID, &kb.Name, &kb.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, kb)
	}
	return out, rows.Err()
}

func (r *SQLRepository) Get(ctx context.Context, id string) (KnowledgeBase, error) {
	const q = `
SELECT id, user_id, name, created_at
FROM knowledge_bases
WHERE id = $1
`
	var kb KnowledgeBase
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&kb.ID, &kb.UserID, &kb.Name, &kb.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return KnowledgeBase{}, ErrNotFound
		}
		return KnowledgeBase{}, err
	}
	return kb, nil
}

func (r *SQLRepository) ListFAQs(ctx context.Context, kbID string) ([]FAQ, error) {
	const q = `
SELECT id, question, answer
FROM knowledge_base_faqs
WHERE knowledge_base_id = $1
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, kbID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FAQ
	for rows.Next() {
		var f FAQ
		if err := rows.Scan(&f.ID, &f.Question, &f.Answer); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *SQLRepository) ListDocuments(ctx context.Context, kbID string) ([]Document, error) {
	const q = `
SELECT id, file_name, file_url
FROM knowledge_base_documents
WHERE knowledge_base_id = $1
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, kbID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.FileName, &d.FileURL); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
