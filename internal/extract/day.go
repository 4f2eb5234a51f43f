package extract

import "regexp"

// Keyword families for relative days. Authors post in English and French
// interchangeably, so both vocabularies are recognised.
var (
	todayKeywords    = []string{"today", "tonight", "tn", "ce soir", "aujourd'hui", "asap", "now", "urgent"}
	tomorrowKeywords = []string{"tomorrow", "demain", "tmr", "tmrw"}
)

var weekdayPatterns = []struct {
	re  *regexp.Regexp
	day string
}{
	{regexp.MustCompile(`\b(monday|lundi|mon)\b`), "Monday"},
	{regexp.MustCompile(`\b(tuesday|mardi|tue)\b`), "Tuesday"},
	{regexp.MustCompile(`\b(wednesday|mercredi|wed)\b`), "Wednesday"},
	{regexp.MustCompile(`\b(thursday|jeudi|thu)\b`), "Thursday"},
	{regexp.MustCompile(`\b(friday|vendredi|fri)\b`), "Friday"},
	{regexp.MustCompile(`\b(saturday|samedi|sat)\b`), "Saturday"},
	{regexp.MustCompile(`\b(sunday|dimanche|sun)\b`), "Sunday"},
}

// matchAvailability resolves the posting's day. Relative keywords take
// precedence over named weekdays. This is the only extracted field with a
// default: a post with no day signal means "today" in practice.
func matchAvailability(lower string) string {
	if containsAny(lower, todayKeywords...) {
		return "Today"
	}
	if containsAny(lower, tomorrowKeywords...) {
		return "Tomorrow"
	}
	for _, p := range weekdayPatterns {
		if p.re.MatchString(lower) {
			return p.day
		}
	}
	return "Today"
}
