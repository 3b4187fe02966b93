// Package knowledge reads knowledge bases, FAQs and documents. Agent
// submission resolves these fresh so the outbound payload never carries a
// stale copy. Knowledge-base management itself lives outside this service.
package knowledge

import "time"

type KnowledgeBase struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type FAQ struct {
	ID       string `json:"id" db:"id"`
	Question string `json:"question" db:"question"`
	Answer   string `json:"answer" db:"answer"`
}

type Document struct {
	ID       string `json:"id" db:"id"`
	FileName string `json:"file_name" db:"file_name"`
	FileURL  string `json:"file_url" db:"file_url"`
}

// Snapshot is the fully resolved view of a knowledge base, assembled at
// agent-submit time for the outbound webhook payload.
type Snapshot struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	FAQs      []FAQ      `json:"faqs"`
	Documents []Document `json:"documents"`
}
