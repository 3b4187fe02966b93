package agents

import "strings"

// Section identifies one wizard screen. The four form sections are ordered;
// overview and logs are read-only tabs that only exist once an agent does.
type Section string

const (
	SectionDetails   Section = "details"
	SectionVoice     Section = "voice"
	SectionSettings  Section = "settings"
	SectionSchedules Section = "schedules"
	SectionOverview  Section = "overview"
	SectionLogs      Section = "logs"
)

var formSections = []Section{SectionDetails, SectionVoice, SectionSettings, SectionSchedules}

func isFormSection(s Section) bool {
	for _, fs := range formSections {
		if fs == s {
			return true
		}
	}
	return false
}

// Wizard tracks the current section and which sections have been visited.
// It replaces the scattered isEditMode/activeSection/activeTab booleans with
// one authoritative state value and an explicit transition rule.
type Wizard struct {
	Current Section

	// AgentExists gates the read-only overview and logs tabs.
	AgentExists bool

	visited map[Section]bool
}

func NewWizard(agentExists bool) *Wizard {
	return &Wizard{
		Current:     SectionDetails,
		AgentExists: agentExists,
		visited:     map[Section]bool{SectionDetails: true},
	}
}

// CanNavigate reports whether moving to the target section is allowed.
// Section completeness never gates navigation; the only hard gate in the
// workflow is FormValid at submit time. Overview and logs require an
// existing agent.
func (w *Wizard) CanNavigate(to Section) bool {
	switch {
	case to == SectionOverview || to == SectionLogs:
		return w.AgentExists
	case isFormSection(to):
		return true
	default:
		return false
	}
}

func (w *Wizard) Navigate(to Section) bool {
	if !w.CanNavigate(to) {
		return false
	}
	w.Current = to
	w.visited[to] = true
	return true
}

func (w *Wizard) Visited(s Section) bool { return w.visited[s] }

const (
	minWelcomeMessages = 1
	maxWelcomeMessages = 5
)

// sectionChecks returns the atomic field checks for one section. The
// schedules section has no required fields.
func sectionChecks(f FormState, s Section) []bool {
	switch s {
	case SectionDetails:
		return []bool{
			notBlank(f.AgentName),
			notBlank(f.CompanyName),
			notBlank(f.WebsiteURL),
			notBlank(f.Goal),
			notBlank(f.BackgroundContext),
		}
	case SectionVoice:
		n := welcomeMessageCount(f.WelcomeMessages)
		return []bool{
			n >= minWelcomeMessages && n <= maxWelcomeMessages,
			notBlank(f.Instructions),
		}
	case SectionSettings:
		return []bool{
			notBlank(f.Voice),
			notBlank(f.Language),
			notBlank(f.AgentType),
			notBlank(f.Timezone),
			notBlank(f.PhoneNumber),
		}
	default:
		return nil
	}
}

// SectionComplete reports whether every required field of the section is
// filled.
func SectionComplete(f FormState, s Section) bool {
	for _, ok := range sectionChecks(f, s) {
		if !ok {
			return false
		}
	}
	return true
}

// CompletionPercent is the share of satisfied atomic field checks across all
// form sections, for the progress indicator. Informational only.
func CompletionPercent(f FormState) int {
	var total, satisfied int
	for _, s := range formSections {
		for _, ok := range sectionChecks(f, s) {
			total++
			if ok {
				satisfied++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return satisfied * 100 / total
}

// FormValid is the submit gate: every form section complete.
func FormValid(f FormState) bool {
	for _, s := range formSections {
		if !SectionComplete(f, s) {
			return false
		}
	}
	return true
}

func notBlank(s string) bool { return strings.TrimSpace(s) != "" }

func welcomeMessageCount(msgs []string) int {
	n := 0
	for _, m := range msgs {
		if notBlank(m) {
			n++
		}
	}
	return n
}
