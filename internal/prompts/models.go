package prompts

import "time"

// AIPrompt is a user-owned saved prompt.
//
// Autofill sources, in precedence order:
// - FormData: structured snapshot of every agent-creation form field,
//   enabling exact autofill (key presence matters: an intentionally empty
//   string overwrites, an absent key never does).
// - AgentProfile: looser structured profile, legacy fallback path.
// - SystemPrompt: always overwrites the form's background context when set.
type AIPrompt struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	Name         string `json:"name" db:"name"`
	Category     string `json:"category,omitempty" db:"category"`
	SystemPrompt string `json:"system_prompt" db:"system_prompt"`

	// BeginMessage is the legacy single welcome message; WelcomeMessages
	// supersedes it when present.
	BeginMessage    string   `json:"begin_message,omitempty" db:"begin_message"`
	WelcomeMessages []string `json:"welcome_messages,omitempty" db:"welcome_messages"`

	// FormData is decoded from JSONB; nil when the prompt predates snapshots.
	FormData map[string]any `json:"form_data,omitempty" db:"form_data"`

	// AgentProfile is decoded from JSONB; nil when absent.
	AgentProfile *AgentPromptProfile `json:"agent_profile,omitempty" db:"agent_profile"`

	IsActive   bool `json:"is_active" db:"is_active"`
	IsTemplate bool `json:"is_template" db:"is_template"`
	UsageCount int  `json:"usage_count" db:"usage_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AgentPromptProfile is the structured business profile fed to the AI
// generation service. Pure data-transfer shape, not persisted on its own.
type AgentPromptProfile struct {
	CompanyName     string `json:"company_name,omitempty"`
	Industry        string `json:"industry,omitempty"`
	WebsiteURL      string `json:"website_url,omitempty"`
	Description     string `json:"description,omitempty"`
	TargetAudience  string `json:"target_audience,omitempty"`
	ValueProposition string `json:"value_proposition,omitempty"`

	Services   []string `json:"services,omitempty"`
	FAQs       []string `json:"faqs,omitempty"`
	Objections []string `json:"objections,omitempty"`
	Policies   []string `json:"policies,omitempty"`

	CallType string `json:"call_type,omitempty"` // inbound | outbound
	CallGoal string `json:"call_goal,omitempty"` // qualify | book | support | survey
	Tone     string `json:"tone,omitempty"`      // professional | friendly | casual
}

// GeneratedPrompt is the AI generation result consumed by both the prompt
// workbench and the agent-creation wizard.
type GeneratedPrompt struct {
	FinalPrompt     string   `json:"finalPrompt"`
	WelcomeMessages []string `json:"welcomeMessages"`
}
