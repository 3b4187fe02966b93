package prompts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("prompts: not found")
	ErrInvalidArgument = errors.New("prompts: invalid argument")
	ErrNotOwner        = errors.New("prompts: prompt belongs to another user")
	ErrNotConfigured   = errors.New("prompts: AI generation is not configured")
)

// Repository is the persistence contract for saved prompts.
// Implementations must enforce user scoping on reads.
type Repository interface {
	List(ctx context.Context, userID string) ([]AIPrompt, error)
	Get(ctx context.Context, id string) (AIPrompt, error)
	Insert(ctx context.Context, p AIPrompt) error
	Update(ctx context.Context, p AIPrompt) error
	Delete(ctx context.Context, id string) error
	IncrementUsage(ctx context.Context, id string) error
}

// Generator is the AI generation contract (implemented by internal/llm).
type Generator interface {
	// GeneratePrompt builds a full system prompt + welcome messages from a
	// structured business profile.
	GeneratePrompt(ctx context.Context, profile AgentPromptProfile) (GeneratedPrompt, error)
	// GenerateFromText builds a full agent config from free-form text.
	GenerateFromText(ctx context.Context, text string) (GeneratedPrompt, error)
	// FormatPrompt reformats an unstructured prompt without changing meaning.
	FormatPrompt(ctx context.Context, raw string) (string, error)
	// ExtractProfile pulls a structured business profile out of document text.
	ExtractProfile(ctx context.Context, text string) (AgentPromptProfile, error)
}

// TextExtractor is the document text-extraction contract
// (implemented by internal/webhooks).
type TextExtractor interface {
	ExtractText(ctx context.Context, payload any) (string, error)
}

// DocumentRef identifies an uploaded document for text extraction.
type DocumentRef struct {
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name,omitempty"`
}

// Service is the prompt workbench: CRUD over saved prompts plus the
// generation/formatting/extraction entry points shared with the agent wizard.
type Service struct {
	repo      Repository
	generator Generator
	extractor TextExtractor
	clock     func() time.Time
}

func NewService(repo Repository, generator Generator, extractor TextExtractor) *Service {
	return &Service{repo: repo, generator: generator, extractor: extractor, clock: time.Now}
}

func (s *Service) List(ctx context.Context, userID string) ([]AIPrompt, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.List(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id string) (AIPrompt, error) {
	if userID == "" || id == "" {
		return AIPrompt{}, ErrInvalidArgument
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return AIPrompt{}, err
	}
	if p.UserID != userID {
		return AIPrompt{}, ErrNotOwner
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, userID string, p AIPrompt) (AIPrompt, error) {
	if userID == "" {
		return AIPrompt{}, ErrInvalidArgument
	}
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.SystemPrompt) == "" {
		return AIPrompt{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	p.ID = uuid.NewString()
	p.UserID = userID
	p.UsageCount = 0
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.repo.Insert(ctx, p); err != nil {
		return AIPrompt{}, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, userID string, p AIPrompt) (AIPrompt, error) {
	existing, err := s.Get(ctx, userID, p.ID)
	if err != nil {
		return AIPrompt{}, err
	}
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.SystemPrompt) == "" {
		return AIPrompt{}, ErrInvalidArgument
	}

	p.UserID = existing.UserID
	p.UsageCount = existing.UsageCount
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return AIPrompt{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// MarkUsed bumps the usage counter. Best-effort: autofill must not fail
// because the counter could not be written.
func (s *Service) MarkUsed(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidArgument
	}
	return s.repo.IncrementUsage(ctx, id)
}

// Generate produces a prompt from a structured profile.
func (s *Service) Generate(ctx context.Context, profile AgentPromptProfile) (GeneratedPrompt, error) {
	if s.generator == nil {
		return GeneratedPrompt{}, ErrNotConfigured
	}
	return s.generator.GeneratePrompt(ctx, profile)
}

// GenerateFromText produces a prompt from free-form text.
func (s *Service) GenerateFromText(ctx context.Context, text string) (GeneratedPrompt, error) {
	if s.generator == nil {
		return GeneratedPrompt{}, ErrNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return GeneratedPrompt{}, ErrInvalidArgument
	}
	return s.generator.GenerateFromText(ctx, text)
}

// Format reformats an unstructured prompt.
func (s *Service) Format(ctx context.Context, raw string) (string, error) {
	if s.generator == nil {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(raw) == "" {
		return "", ErrInvalidArgument
	}
	return s.generator.FormatPrompt(ctx, raw)
}

// ProfileFromDocument runs the document-upload path: text extraction via the
// external webhook, then profile extraction via the AI service, then a
// list-union merge into the caller's existing profile.
func (s *Service) ProfileFromDocument(ctx context.Context, doc DocumentRef, existing AgentPromptProfile) (AgentPromptProfile, error) {
	if s.extractor == nil || s.generator == nil {
		return AgentPromptProfile{}, ErrNotConfigured
	}
	if doc.FileURL == "" {
		return AgentPromptProfile{}, ErrInvalidArgument
	}

	text, err := s.extractor.ExtractText(ctx, doc)
	if err != nil {
		return AgentPromptProfile{}, err
	}
	extracted, err := s.generator.ExtractProfile(ctx, text)
	if err != nil {
		return AgentPromptProfile{}, err
	}
	return MergeProfiles(existing, extracted), nil
}
