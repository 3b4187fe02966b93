package numbers

import "testing"

func TestNormalizeDigits(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"5551234567", "5551234567"},
		{"(555) 123-4567", "5551234567"},
		{"(555) 123-4567 ext 9", "5551234567"},
		{"555.123.4567890", "5551234567"},
		{"555-1234", "5551234"},
		{"abc", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeDigits(tc.in); got != tc.want {
			t.Errorf("NormalizeDigits(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalNumber(t *testing.T) {
	got, err := CanonicalNumber("+1", "(555) 123-4567 ext 9")
	if err != nil {
		t.Fatalf("canonical: %v", err)
	}
	if got != "+15551234567" {
		t.Fatalf("got %q", got)
	}

	got, err = CanonicalNumber("44", "2071234567")
	if err != nil {
		t.Fatalf("canonical: %v", err)
	}
	if got != "+442071234567" {
		t.Fatalf("got %q", got)
	}

	if _, err := CanonicalNumber("+1", "123"); err == nil {
		t.Fatalf("expected short number rejected")
	}
	if _, err := CanonicalNumber("", "5551234567"); err == nil {
		t.Fatalf("expected missing country code rejected")
	}
}
