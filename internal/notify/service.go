// Package notify creates user-visible notification records.
//
// Dispatch is fire-and-forget: callers must never block a primary operation
// on a notification failure. Notify swallows errors after logging them; use
// the Repository directly only from code that needs the error.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"voiceagent-platform/pkg/logger"
)

type Notification struct {
	ID      string `json:"id" db:"id"`
	UserID  string `json:"user_id" db:"user_id"`
	Type    Type   `json:"type" db:"type"`
	Title   string `json:"title" db:"title"`
	Message string `json:"message" db:"message"`

	// Link is an optional dashboard URL the notification points at.
	Link string `json:"link,omitempty" db:"link"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Type string

const (
	TypeAgentCreated   Type = "agent_created"
	TypeAgentUpdated   Type = "agent_updated"
	TypeAgentDisabled  Type = "agent_disabled"
	TypeNumberImported Type = "number_imported"
	TypeCreditsLow     Type = "credits_low"
)

type Repository interface {
	Create(ctx context.Context, n Notification) error
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidNotification = errors.New("notify: invalid notification")

func (s *Service) Create(ctx context.Context, n Notification) error {
	if s.repo == nil {
		return errors.New("notify: repository not configured")
	}
	if n.UserID == "" || n.Type == "" || n.Title == "" {
		return ErrInvalidNotification
	}

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.clock().UTC()
	}
	return s.repo.Create(ctx, n)
}

// Notify is the best-effort entry point. A failed write is logged and
// discarded.
func (s *Service) Notify(ctx context.Context, userID string, typ Type, title, message, link string) {
	err := s.Create(ctx, Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Link:    link,
	})
	if err != nil {
		logger.From(ctx).Warn("notification dispatch failed",
			slog.String("user_id", userID),
			slog.String("type", string(typ)),
			slog.String("error", err.Error()))
	}
}
