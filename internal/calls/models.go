// Package calls exposes the call-history browser and the aggregated call
// statistics the dashboard overview renders.
package calls

import "time"

// Call is one entry in a user's call history, written by the external
// calling platform.
type Call struct {
	ID      string `json:"id" db:"id"`
	UserID  string `json:"user_id" db:"user_id"`
	AgentID string `json:"agent_id,omitempty" db:"agent_id"`

	From string `json:"from" db:"from"`
	To   string `json:"to" db:"to"`

	Status CallStatus `json:"status" db:"status"`

	// Duration is the call duration in seconds.
	DurationSeconds int `json:"duration" db:"duration"`

	RecordingURL string `json:"recording_url,omitempty" db:"recording_url"`
	Transcript   string `json:"transcript,omitempty" db:"transcript"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CallStatus string

const (
	CallStatusInProgress CallStatus = "in_progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
	CallStatusNoAnswer   CallStatus = "no_answer"
	CallStatusBusy       CallStatus = "busy"
)

// Statistics is the shape returned by the get_call_statistics procedure.
type Statistics struct {
	UserID         string  `json:"user_id"`
	TotalCalls     int     `json:"total_calls"`
	CompletedCalls int     `json:"completed_calls"`
	FailedCalls    int     `json:"failed_calls"`
	TotalSeconds   int     `json:"total_seconds"`
	AvgSeconds     float64 `json:"avg_seconds"`
}

// ListFilter narrows and pages a history listing.
type ListFilter struct {
	AgentID string
	Status  CallStatus
	Limit   int
	Offset  int
}
