package agents

import (
	"testing"

	"voiceagent-platform/internal/prompts"
)

func TestApplyPrompt_FormDataKeyPresence(t *testing.T) {
	form := FormState{AgentName: "Old", CompanyName: "Old Co", Goal: "support"}
	p := prompts.AIPrompt{
		FormData: map[string]any{
			"agentName":   "",
			"companyName": "Acme",
		},
	}

	out := ApplyPrompt(form, p)
	if out.AgentName != "" {
		t.Fatalf("present empty string must overwrite, got %q", out.AgentName)
	}
	if out.CompanyName != "Acme" {
		t.Fatalf("expected companyName overwritten, got %q", out.CompanyName)
	}
	if out.Goal != "support" {
		t.Fatalf("absent key must leave form value untouched, got %q", out.Goal)
	}
}

func TestApplyPrompt_ProfileFallback(t *testing.T) {
	form := FormState{CompanyName: "Old Co"}
	p := prompts.AIPrompt{
		AgentProfile: &prompts.AgentPromptProfile{
			CompanyName: "Acme",
			WebsiteURL:  "https://acme.example",
			CallGoal:    "book",
		},
	}

	out := ApplyPrompt(form, p)
	if out.CompanyName != "Acme" || out.WebsiteURL != "https://acme.example" || out.Goal != "book" {
		t.Fatalf("unexpected profile fallback result: %+v", out)
	}
}

func TestApplyPrompt_SystemPromptAlwaysWinsBackground(t *testing.T) {
	form := FormState{BackgroundContext: "old context"}
	p := prompts.AIPrompt{
		SystemPrompt: "# Role\nYou answer dental calls.",
		FormData:     map[string]any{"backgroundContext": "snapshot context"},
	}

	out := ApplyPrompt(form, p)
	if out.BackgroundContext != p.SystemPrompt {
		t.Fatalf("system prompt must overwrite background context, got %q", out.BackgroundContext)
	}
}

func TestApplyPrompt_WelcomeMessagePreference(t *testing.T) {
	p := prompts.AIPrompt{
		WelcomeMessages: []string{"Hi!", "Hello."},
		BeginMessage:    "legacy",
	}
	out := ApplyPrompt(FormState{}, p)
	if len(out.WelcomeMessages) != 2 || out.WelcomeMessages[0] != "Hi!" {
		t.Fatalf("expected welcome_messages preferred, got %v", out.WelcomeMessages)
	}

	out = ApplyPrompt(FormState{}, prompts.AIPrompt{BeginMessage: "legacy"})
	if len(out.WelcomeMessages) != 1 || out.WelcomeMessages[0] != "legacy" {
		t.Fatalf("expected begin_message wrapped, got %v", out.WelcomeMessages)
	}

	out = ApplyPrompt(FormState{WelcomeMessages: []string{"existing"}}, prompts.AIPrompt{})
	if len(out.WelcomeMessages) != 0 {
		t.Fatalf("expected empty welcome messages when prompt has none, got %v", out.WelcomeMessages)
	}
}

func TestApplyPrompt_FormDataWelcomeMessages(t *testing.T) {
	p := prompts.AIPrompt{
		FormData: map[string]any{
			"welcomeMessages": []any{"a", "b"},
			"temperature":     0.3,
		},
	}
	out := ApplyPrompt(FormState{Temperature: 0.9}, p)
	if len(out.WelcomeMessages) != 2 {
		t.Fatalf("expected snapshot welcome messages, got %v", out.WelcomeMessages)
	}
	if out.Temperature != 0.3 {
		t.Fatalf("expected snapshot temperature, got %v", out.Temperature)
	}
}
