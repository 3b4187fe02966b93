// Package numbers implements the phone-number import workflow: the three
// step wizard, provisioning-webhook-first submission, and the duplicate
// reconciliation protocol over the globally unique phone_number column.
package numbers

import "time"

type Provider string

const (
	ProviderTwilio Provider = "twilio"
	ProviderVonage Provider = "vonage"
	ProviderTelnyx Provider = "telnyx"
)

func ValidProvider(p Provider) bool {
	switch p {
	case ProviderTwilio, ProviderVonage, ProviderTelnyx:
		return true
	}
	return false
}

// requiredCredentialFields lists the provider-specific credential fields the
// configuration step must fill.
func requiredCredentialFields(p Provider) []string {
	switch p {
	case ProviderTwilio:
		return []string{"account_sid", "auth_token"}
	case ProviderVonage:
		return []string{"api_key", "api_secret", "application_id"}
	case ProviderTelnyx:
		return []string{"api_key", "connection_id"}
	default:
		return nil
	}
}

type Status string

const (
	StatusActive     Status = "active"
	StatusPending    Status = "pending"
	StatusSuspended  Status = "suspended"
	StatusInactive   Status = "inactive"
	StatusActivating Status = "activating"
)

// InboundNumber is a provisioned phone number. phone_number is globally
// unique across all users; assigned_to_agent_id is a weak back-reference
// used for lookup only.
type InboundNumber struct {
	ID          string   `json:"id" db:"id"`
	UserID      string   `json:"user_id" db:"user_id"`
	PhoneNumber string   `json:"phone_number" db:"phone_number"`
	CountryCode string   `json:"country_code" db:"country_code"`
	Provider    Provider `json:"provider" db:"provider"`

	// Credentials holds the provider-specific fields from the wizard's
	// configuration step.
	Credentials map[string]string `json:"credentials" db:"credentials"`

	Status            Status `json:"status" db:"status"`
	AssignedToAgentID string `json:"assigned_to_agent_id,omitempty" db:"assigned_to_agent_id"`

	// WebhookStatus and WebhookTestResult record the last provisioning
	// attempt as reported by the automation endpoint.
	WebhookStatus     string `json:"webhook_status,omitempty" db:"webhook_status"`
	WebhookTestResult string `json:"webhook_test_result,omitempty" db:"webhook_test_result"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
