package knowledge

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("knowledge: not found")
	ErrNotOwner = errors.New("knowledge: knowledge base belongs to another user")
)

type Repository interface {
	List(ctx context.Context, userID string) ([]KnowledgeBase, error)
	Get(ctx context.Context, id string) (KnowledgeBase, error)
	ListFAQs(ctx context.Context, kbID string) ([]FAQ, error)
	ListDocuments(ctx context.Context, kbID string) ([]Document, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID string) ([]KnowledgeBase, error) {
	return s.repo.List(ctx, userID)
}

// Resolve loads the knowledge base with its FAQs and documents, enforcing
// ownership.
func (s *Service) Resolve(ctx context.Context, userID, kbID string) (Snapshot, error) {
	kb, err := s.repo.Get(ctx, kbID)
	if err != nil {
		return Snapshot{}, err
	}
	if kb.UserID != userID {
		return Snapshot{}, ErrNotOwner
	}

	faqs, err := s.repo.ListFAQs(ctx, kbID)
	if err != nil {
		return Snapshot{}, err
	}
	docs, err := s.repo.ListDocuments(ctx, kbID)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{ID: kb.ID, Name: kb.Name, FAQs: faqs, Documents: docs}, nil
}
