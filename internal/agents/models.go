// Package agents implements the agent-configuration workflow: the sectioned
// creation wizard, draft persistence, and the final submit orchestration that
// commits an agent, bills the owner and takes exclusive hold of a phone
// number.
package agents

import "time"

type Status string

const (
	// StatusDraft rows are persisted incrementally by the wizard and are
	// neither billed nor provisioned.
	StatusDraft Status = "draft"
	// StatusActivating is set on commit; the automation platform flips the
	// row to active out-of-band once provisioning finishes.
	StatusActivating Status = "activating"
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
)

// FallbackConfig routes calls to a human number when the agent cannot help.
type FallbackConfig struct {
	Enabled bool   `json:"enabled"`
	Number  string `json:"number,omitempty"`
}

// Availability is the call-availability window stored in agent metadata.
type Availability struct {
	Days  []string `json:"days,omitempty"`
	Start string   `json:"start,omitempty"`
	End   string   `json:"end,omitempty"`
}

// Metadata is the free-form agent metadata blob.
type Metadata struct {
	Availability *Availability   `json:"availability,omitempty"`
	Fallback     *FallbackConfig `json:"fallback,omitempty"`
}

// AssignedNumber is the denormalized copy of the phone number held by an
// agent, including provider credentials, so the calling platform payload can
// be assembled without a join.
type AssignedNumber struct {
	Provider    string            `json:"provider"`
	PhoneNumber string            `json:"phone_number"`
	CountryCode string            `json:"country_code,omitempty"`
	Credentials map[string]string `json:"credentials,omitempty"`
}

type Agent struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	AgentName         string   `json:"agent_name" db:"agent_name"`
	CompanyName       string   `json:"company_name" db:"company_name"`
	WebsiteURL        string   `json:"website_url" db:"website_url"`
	Goal              string   `json:"goal" db:"goal"`
	BackgroundContext string   `json:"background_context" db:"background_context"`
	Instructions      string   `json:"instructions" db:"instructions"`
	WelcomeMessages   []string `json:"welcome_messages" db:"welcome_messages"`

	Voice     string `json:"voice" db:"voice"`
	Language  string `json:"language" db:"language"`
	AgentType string `json:"agent_type" db:"agent_type"`
	Timezone  string `json:"timezone" db:"timezone"`

	// Dials are clamped to [0,1].
	Temperature float64 `json:"temperature" db:"temperature"`
	Confidence  float64 `json:"confidence" db:"confidence"`
	Verbosity   float64 `json:"verbosity" db:"verbosity"`

	Fallback        FallbackConfig  `json:"fallback"`
	AssignedNumber  *AssignedNumber `json:"assigned_number,omitempty"`
	KnowledgeBaseID string          `json:"knowledge_base_id,omitempty" db:"knowledge_base_id"`
	ScheduleID      string          `json:"schedule_id,omitempty" db:"schedule_id"`

	Status   Status   `json:"status" db:"status"`
	Metadata Metadata `json:"metadata"`

	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// FormState is the in-memory wizard form. It is the single source the
// section predicates, the autofill merge and the submit payload all read
// from.
type FormState struct {
	AgentName         string   `json:"agentName"`
	CompanyName       string   `json:"companyName"`
	WebsiteURL        string   `json:"websiteUrl"`
	Goal              string   `json:"goal"`
	BackgroundContext string   `json:"backgroundContext"`
	Instructions      string   `json:"instructions"`
	WelcomeMessages   []string `json:"welcomeMessages"`

	Voice       string `json:"voice"`
	Language    string `json:"language"`
	AgentType   string `json:"agentType"`
	Timezone    string `json:"timezone"`
	PhoneNumber string `json:"phoneNumber"`

	Temperature float64 `json:"temperature"`
	Confidence  float64 `json:"confidence"`
	Verbosity   float64 `json:"verbosity"`

	Fallback        FallbackConfig `json:"fallback"`
	KnowledgeBaseID string         `json:"knowledgeBaseId,omitempty"`
	ScheduleID      string         `json:"scheduleId,omitempty"`
	Availability    *Availability  `json:"availability,omitempty"`
}
