package llm

import (
	"testing"

	"voiceagent-platform/internal/config"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(config.OpenAIConfig{Model: "gpt-4o-mini"}); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := New(config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini"}); err != nil {
		t.Fatalf("expected client, got %v", err)
	}
}

func TestParseGenerated(t *testing.T) {
	out, err := ParseGenerated(`{"finalPrompt":"# Role\nYou answer calls.","welcomeMessages":["Hi!","Hello there."]}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out.FinalPrompt == "" || len(out.WelcomeMessages) != 2 {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestParseGenerated_StripsCodeFence(t *testing.T) {
	out, err := ParseGenerated("```json\n{\"finalPrompt\":\"p\",\"welcomeMessages\":[]}\n```")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out.FinalPrompt != "p" {
		t.Fatalf("unexpected prompt %q", out.FinalPrompt)
	}
}

func TestParseGenerated_RejectsEmptyPrompt(t *testing.T) {
	if _, err := ParseGenerated(`{"finalPrompt":"  ","welcomeMessages":["hi"]}`); err == nil {
		t.Fatalf("expected error for blank prompt")
	}
	if _, err := ParseGenerated(`not json`); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}
