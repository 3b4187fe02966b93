package numbers

import "strings"

// Step identifies one screen of the import wizard.
type Step string

const (
	StepProvider Step = "provider"
	StepPhone    Step = "phone"
	StepConfig   Step = "config"
)

var stepOrder = []Step{StepProvider, StepPhone, StepConfig}

// ImportForm is the in-memory wizard form.
type ImportForm struct {
	Provider    Provider          `json:"provider"`
	RawPhone    string            `json:"rawPhone"`
	CountryCode string            `json:"countryCode"`
	Credentials map[string]string `json:"credentials"`
}

// StepValid reports whether one step's own gate is satisfied.
func StepValid(f ImportForm, s Step) bool {
	switch s {
	case StepProvider:
		return ValidProvider(f.Provider)
	case StepPhone:
		return len(NormalizeDigits(f.RawPhone)) == nationalDigits &&
			strings.TrimSpace(f.CountryCode) != ""
	case StepConfig:
		for _, field := range requiredCredentialFields(f.Provider) {
			if strings.TrimSpace(f.Credentials[field]) == "" {
				return false
			}
		}
		return ValidProvider(f.Provider)
	default:
		return false
	}
}

// FormValid is the submission gate: every step valid.
func FormValid(f ImportForm) bool {
	for _, s := range stepOrder {
		if !StepValid(f, s) {
			return false
		}
	}
	return true
}
