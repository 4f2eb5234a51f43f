package extract

import "regexp"

// The recognised timezone tokens. CET is listed before CEST; the word
// boundaries keep the shorter token from matching inside the longer one.
var timezonePatterns = []struct {
	re *regexp.Regexp
	tz string
}{
	{regexp.MustCompile(`(?i)\bcet\b`), "CET"},
	{regexp.MustCompile(`(?i)\bcest\b`), "CEST"},
	{regexp.MustCompile(`(?i)\best\b`), "EST"},
	{regexp.MustCompile(`(?i)\bbst\b`), "BST"},
}

func matchTimezone(content string) string {
	for _, p := range timezonePatterns {
		if p.re.MatchString(content) {
			return p.tz
		}
	}
	return ""
}
