package agents

import "voiceagent-platform/internal/prompts"

// ApplyPrompt merges a saved prompt into the wizard form and returns the
// merged copy.
//
// Precedence, which must hold exactly:
//  1. form_data snapshot, field by field, keyed on presence: an
//     intentionally empty string overwrites the form value, an absent key
//     never touches it.
//  2. agent_profile derivation as the fallback when no snapshot exists.
//  3. backgroundContext is always overwritten with the prompt's raw system
//     prompt when one exists, whichever path ran.
//
// Welcome messages outside the snapshot path prefer the stored array, then
// wrap the legacy begin_message, else empty.
func ApplyPrompt(f FormState, p prompts.AIPrompt) FormState {
	if p.FormData != nil {
		applyFormData(&f, p.FormData)
	} else if p.AgentProfile != nil {
		applyProfile(&f, *p.AgentProfile)
		f.WelcomeMessages = promptWelcomeMessages(p)
	} else {
		f.WelcomeMessages = promptWelcomeMessages(p)
	}

	if p.SystemPrompt != "" {
		f.BackgroundContext = p.SystemPrompt
	}
	return f
}

func applyFormData(f *FormState, data map[string]any) {
	setString(data, "agentName", &f.AgentName)
	setString(data, "companyName", &f.CompanyName)
	setString(data, "websiteUrl", &f.WebsiteURL)
	setString(data, "goal", &f.Goal)
	setString(data, "backgroundContext", &f.BackgroundContext)
	setString(data, "instructions", &f.Instructions)
	setString(data, "voice", &f.Voice)
	setString(data, "language", &f.Language)
	setString(data, "agentType", &f.AgentType)
	setString(data, "timezone", &f.Timezone)
	setString(data, "phoneNumber", &f.PhoneNumber)

	setFloat(data, "temperature", &f.Temperature)
	setFloat(data, "confidence", &f.Confidence)
	setFloat(data, "verbosity", &f.Verbosity)

	if raw, ok := data["welcomeMessages"]; ok {
		f.WelcomeMessages = toStringSlice(raw)
	}
}

func applyProfile(f *FormState, p prompts.AgentPromptProfile) {
	if p.CompanyName != "" {
		f.CompanyName = p.CompanyName
	}
	if p.WebsiteURL != "" {
		f.WebsiteURL = p.WebsiteURL
	}
	if p.CallGoal != "" {
		f.Goal = p.CallGoal
	}
	if p.Description != "" {
		f.BackgroundContext = p.Description
	}
}

func promptWelcomeMessages(p prompts.AIPrompt) []string {
	if len(p.WelcomeMessages) > 0 {
		return append([]string(nil), p.WelcomeMessages...)
	}
	if p.BeginMessage != "" {
		return []string{p.BeginMessage}
	}
	return nil
}

// setString writes only when the key is present; a present empty string is
// an intentional overwrite.
func setString(data map[string]any, key string, dst *string) {
	raw, ok := data[key]
	if !ok {
		return
	}
	if s, ok := raw.(string); ok {
		*dst = s
	}
}

func setFloat(data map[string]any, key string, dst *float64) {
	raw, ok := data[key]
	if !ok {
		return
	}
	// JSON numbers decode as float64.
	if v, ok := raw.(float64); ok {
		*dst = v
	}
}

func toStringSlice(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
