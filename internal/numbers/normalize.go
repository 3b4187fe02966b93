package numbers

import (
	"fmt"
	"strings"
)

const nationalDigits = 10

// NormalizeDigits strips every non-digit character and truncates the result
// to ten digits.
func NormalizeDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
			if b.Len() == nationalDigits {
				break
			}
		}
	}
	return b.String()
}

// CanonicalNumber builds the stored full number from a country calling code
// and a raw digits input: normalized national digits appended to the code.
func CanonicalNumber(countryCode, raw string) (string, error) {
	digits := NormalizeDigits(raw)
	if len(digits) != nationalDigits {
		return "", fmt.Errorf("numbers: expected %d digits, got %d", nationalDigits, len(digits))
	}
	cc := strings.TrimSpace(countryCode)
	if cc == "" {
		return "", fmt.Errorf("numbers: country code is required")
	}
	if !strings.HasPrefix(cc, "+") {
		cc = "+" + cc
	}
	return cc + digits, nil
}
