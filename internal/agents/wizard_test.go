package agents

import "testing"

func completeForm() FormState {
	return FormState{
		AgentName:         "Receptionist",
		CompanyName:       "Acme Dental",
		WebsiteURL:        "https://acmedental.example",
		Goal:              "book",
		BackgroundContext: "Acme Dental is a clinic in Austin.",
		Instructions:      "Greet the caller and offer to book an appointment.",
		WelcomeMessages:   []string{"Hi, thanks for calling Acme Dental!"},
		Voice:             "nova",
		Language:          "en-US",
		AgentType:         "inbound",
		Timezone:          "America/Chicago",
		PhoneNumber:       "+15551234567",
	}
}

func TestSectionComplete(t *testing.T) {
	f := completeForm()

	for _, s := range []Section{SectionDetails, SectionVoice, SectionSettings, SectionSchedules} {
		if !SectionComplete(f, s) {
			t.Fatalf("expected %s complete", s)
		}
	}

	f.Goal = "  "
	if SectionComplete(f, SectionDetails) {
		t.Fatalf("blank goal should fail details")
	}

	f = completeForm()
	f.WelcomeMessages = nil
	if SectionComplete(f, SectionVoice) {
		t.Fatalf("zero welcome messages should fail voice")
	}
	f.WelcomeMessages = []string{"a", "b", "c", "d", "e", "f"}
	if SectionComplete(f, SectionVoice) {
		t.Fatalf("six welcome messages should fail voice")
	}

	f = completeForm()
	f.PhoneNumber = ""
	if SectionComplete(f, SectionSettings) {
		t.Fatalf("missing number should fail settings")
	}
}

func TestCompletionPercent(t *testing.T) {
	if got := CompletionPercent(FormState{}); got != 0 {
		t.Fatalf("empty form: expected 0, got %d", got)
	}
	if got := CompletionPercent(completeForm()); got != 100 {
		t.Fatalf("complete form: expected 100, got %d", got)
	}

	f := completeForm()
	f.AgentName = ""
	// 11 of 12 atomic checks satisfied.
	if got := CompletionPercent(f); got != 91 {
		t.Fatalf("expected 91, got %d", got)
	}
}

func TestFormValid(t *testing.T) {
	if !FormValid(completeForm()) {
		t.Fatalf("expected complete form valid")
	}
	f := completeForm()
	f.Instructions = ""
	if FormValid(f) {
		t.Fatalf("missing instructions should invalidate form")
	}
}

func TestWizardNavigation(t *testing.T) {
	w := NewWizard(false)
	if w.Current != SectionDetails {
		t.Fatalf("expected wizard to start at details")
	}

	// Form sections are always reachable regardless of completeness.
	for _, s := range []Section{SectionSchedules, SectionVoice, SectionSettings, SectionDetails} {
		if !w.Navigate(s) {
			t.Fatalf("expected navigation to %s allowed", s)
		}
	}
	if !w.Visited(SectionSchedules) {
		t.Fatalf("expected schedules marked visited")
	}

	// Overview and logs only exist once an agent does.
	if w.Navigate(SectionOverview) || w.Navigate(SectionLogs) {
		t.Fatalf("overview/logs should be gated on agent existence")
	}
	w.AgentExists = true
	if !w.Navigate(SectionOverview) {
		t.Fatalf("expected overview reachable once agent exists")
	}

	if w.Navigate(Section("bogus")) {
		t.Fatalf("unknown section should be rejected")
	}
}
