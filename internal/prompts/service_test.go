package prompts

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubGenerator struct {
	generated GeneratedPrompt
	profile   AgentPromptProfile
	err       error

	lastText string
}

func (g *stubGenerator) GeneratePrompt(ctx context.Context, profile AgentPromptProfile) (GeneratedPrompt, error) {
	return g.generated, g.err
}

func (g *stubGenerator) GenerateFromText(ctx context.Context, text string) (GeneratedPrompt, error) {
	g.lastText = text
	return g.generated, g.err
}

func (g *stubGenerator) FormatPrompt(ctx context.Context, raw string) (string, error) {
	return "# Formatted\n" + raw, g.err
}

func (g *stubGenerator) ExtractProfile(ctx context.Context, text string) (AgentPromptProfile, error) {
	g.lastText = text
	return g.profile, g.err
}

type stubExtractor struct {
	text string
	err  error
}

func (e *stubExtractor) ExtractText(ctx context.Context, payload any) (string, error) {
	return e.text, e.err
}

func newPromptService() (*Service, *MemoryRepo, *stubGenerator, *stubExtractor) {
	repo := NewMemoryRepo()
	gen := &stubGenerator{}
	ext := &stubExtractor{}
	svc := NewService(repo, gen, ext)
	svc.clock = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	return svc, repo, gen, ext
}

func TestCreate_RequiresNameAndSystemPrompt(t *testing.T) {
	svc, _, _, _ := newPromptService()

	if _, err := svc.Create(context.Background(), "u1", AIPrompt{Name: "", SystemPrompt: "x"}); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := svc.Create(context.Background(), "u1", AIPrompt{Name: "x", SystemPrompt: " "}); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestGet_EnforcesOwnership(t *testing.T) {
	svc, _, _, _ := newPromptService()

	p, err := svc.Create(context.Background(), "u1", AIPrompt{Name: "Sales", SystemPrompt: "You are..."})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Get(context.Background(), "u2", p.ID); err != ErrNotOwner {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestUpdate_PreservesUsageCountAndOwner(t *testing.T) {
	svc, repo, _, _ := newPromptService()

	p, _ := svc.Create(context.Background(), "u1", AIPrompt{Name: "Sales", SystemPrompt: "v1"})
	_ = repo.IncrementUsage(context.Background(), p.ID)

	p.SystemPrompt = "v2"
	p.UsageCount = 999 // client-supplied counter must be ignored
	out, err := svc.Update(context.Background(), "u1", p)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if out.UsageCount != 1 {
		t.Fatalf("expected usage count preserved at 1, got %d", out.UsageCount)
	}
	if out.UserID != "u1" {
		t.Fatalf("expected owner preserved, got %q", out.UserID)
	}
}

func TestProfileFromDocument_ExtractsAndMerges(t *testing.T) {
	svc, _, gen, ext := newPromptService()
	ext.text = "Acme Heating sells furnaces."
	gen.profile = AgentPromptProfile{CompanyName: "Acme Heating", Services: []string{"Furnace installs"}}

	existing := AgentPromptProfile{CompanyName: "Acme", Services: []string{"Repairs"}}
	out, err := svc.ProfileFromDocument(context.Background(), DocumentRef{FileURL: "https://x/doc.pdf"}, existing)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if out.CompanyName != "Acme" {
		t.Fatalf("expected existing company name kept, got %q", out.CompanyName)
	}
	if len(out.Services) != 2 {
		t.Fatalf("expected unioned services, got %v", out.Services)
	}
	if gen.lastText != ext.text {
		t.Fatalf("expected extracted text passed to profile extraction")
	}
}

func TestProfileFromDocument_ExtractionFailurePropagates(t *testing.T) {
	svc, _, _, ext := newPromptService()
	ext.err = errors.New("extraction down")

	_, err := svc.ProfileFromDocument(context.Background(), DocumentRef{FileURL: "https://x/doc.pdf"}, AgentPromptProfile{})
	if err == nil {
		t.Fatalf("expected error")
	}
}
