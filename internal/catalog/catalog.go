// Package catalog serves the static option lists the wizard dropdowns use.
package catalog

// Voice is a selectable agent voice.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Language string `json:"language"`
	Preview  string `json:"preview_url,omitempty"`
}

// CountryCode is a selectable country calling code.
type CountryCode struct {
	Country string `json:"country"`
	Code    string `json:"code"`
}

func Voices() []Voice {
	return []Voice{
		{ID: "alloy", Name: "Alloy", Gender: "neutral", Language: "en-US"},
		{ID: "ash", Name: "Ash", Gender: "male", Language: "en-US"},
		{ID: "coral", Name: "Coral", Gender: "female", Language: "en-US"},
		{ID: "echo", Name: "Echo", Gender: "male", Language: "en-US"},
		{ID: "nova", Name: "Nova", Gender: "female", Language: "en-US"},
		{ID: "sage", Name: "Sage", Gender: "female", Language: "en-US"},
		{ID: "shimmer", Name: "Shimmer", Gender: "female", Language: "en-US"},
		{ID: "verse", Name: "Verse", Gender: "male", Language: "en-GB"},
	}
}

func Timezones() []string {
	return []string{
		"America/New_York",
		"America/Chicago",
		"America/Denver",
		"America/Phoenix",
		"America/Los_Angeles",
		"America/Anchorage",
		"Pacific/Honolulu",
		"America/Toronto",
		"America/Mexico_City",
		"America/Sao_Paulo",
		"Europe/London",
		"Europe/Dublin",
		"Europe/Paris",
		"Europe/Berlin",
		"Europe/Madrid",
		"Europe/Rome",
		"Europe/Amsterdam",
		"Europe/Stockholm",
		"Asia/Dubai",
		"Asia/Kolkata",
		"Asia/Singapore",
		"Asia/Hong_Kong",
		"Asia/Tokyo",
		"Australia/Sydney",
		"Pacific/Auckland",
	}
}

func CountryCodes() []CountryCode {
	return []CountryCode{
		{Country: "United States", Code: "+1"},
		{Country: "Canada", Code: "+1"},
		{Country: "United Kingdom", Code: "+44"},
		{Country: "Ireland", Code: "+353"},
		{Country: "France", Code: "+33"},
		{Country: "Germany", Code: "+49"},
		{Country: "Spain", Code: "+34"},
		{Country: "Italy", Code: "+39"},
		{Country: "Netherlands", Code: "+31"},
		{Country: "Sweden", Code: "+46"},
		{Country: "Australia", Code: "+61"},
		{Country: "New Zealand", Code: "+64"},
		{Country: "India", Code: "+91"},
		{Country: "Singapore", Code: "+65"},
		{Country: "Japan", Code: "+81"},
		{Country: "United Arab Emirates", Code: "+971"},
		{Country: "Brazil", Code: "+55"},
		{Country: "Mexico", Code: "+52"},
	}
}

// ValidVoice reports whether the id is in the catalog.
func ValidVoice(id string) bool {
	for _, v := range Voices() {
		if v.ID == id {
			return true
		}
	}
	return false
}

// ValidTimezone reports whether the zone is in the catalog.
func ValidTimezone(tz string) bool {
	for _, z := range Timezones() {
		if z == tz {
			return true
		}
	}
	return false
}
