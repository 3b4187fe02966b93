package catalog

import "testing"

func TestValidVoice(t *testing.T) {
	if !ValidVoice("nova") {
		t.Fatalf("expected nova valid")
	}
	if ValidVoice("unknown") {
		t.Fatalf("expected unknown rejected")
	}
}

func TestValidTimezone(t *testing.T) {
	if !ValidTimezone("America/Chicago") {
		t.Fatalf("expected America/Chicago valid")
	}
	if ValidTimezone("Mars/Olympus_Mons") {
		t.Fatalf("expected unknown zone rejected")
	}
}

func TestCountryCodesHavePlusPrefix(t *testing.T) {
	for _, cc := range CountryCodes() {
		if len(cc.Code) < 2 || cc.Code[0] != '+' {
			t.Fatalf("bad code %q for %s", cc.Code, cc.Country)
		}
	}
}
