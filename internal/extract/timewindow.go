package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Time-range pattern families, highest confidence first. A lone hour with
// no end bound is never accepted as a window, so a record always carries
// either a complete start/end pair or neither.
var (
	// "10-12PM", "10:30-11PM". The shared period applies to both bounds.
	ampmRangeRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(?:[-–—]|to)\s*(\d{1,2})(?::(\d{2}))?\s*(AM|PM)\b`)

	// "21h-23h", "21h30/23h".
	hourMarkerRangeRe = regexp.MustCompile(`(?i)\b(\d{1,2})h(\d{2})?[/\s-]*(?:to|à|[-–—/])[/\s-]*(\d{1,2})h(\d{2})?\b`)

	// "21:00-23:30".
	colonRangeRe = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})[\s-]*(?:to|à|[-–—])[\s-]*(\d{1,2}):(\d{2})\b`)

	// "21-23". Both hours are restricted to 7..23 so rating expressions
	// like "3-3" or "4-4.5" never read as a window.
	bareRangeRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:to|à|[-–—])\s*(\d{1,2})\b`)
)

// matchTimeWindow extracts a start/end pair in 24-hour HH:MM form, or two
// empty strings when no range pattern applies.
func matchTimeWindow(content string) (string, string) {
	matchers := []func(string) (string, string, bool){
		matchAMPMRange,
		matchHourMarkerRange,
		matchColonRange,
		matchBareRange,
	}
	for _, m := range matchers {
		if start, end, ok := m(content); ok {
			return start, end
		}
	}
	return "", ""
}

func matchAMPMRange(content string) (string, string, bool) {
	m := ampmRangeRe.FindStringSubmatch(content)
	if m == nil {
		return "", "", false
	}
	startHour, _ := strconv.Atoi(m[1])
	endHour, _ := strconv.Atoi(m[3])

	// "10-12PM" reads as 10PM to midnight, not 10AM to noon: an end hour
	// of 12 under PM means 12AM.
	switch {
	case strings.EqualFold(m[5], "PM"):
		if startHour < 12 {
			startHour += 12
		}
		if endHour == 12 {
			endHour = 0
		} else {
			endHour += 12
		}
	default: // AM
		if startHour == 12 {
			startHour = 0
		}
		if endHour == 12 {
			endHour = 0
		}
	}

	if !validHour(startHour) || !validHour(endHour) {
		return "", "", false
	}
	return clock(startHour, m[2]), clock(endHour, m[4]), true
}

func matchHourMarkerRange(content string) (string, string, bool) {
	m := hourMarkerRangeRe.FindStringSubmatch(content)
	if m == nil {
		return "", "", false
	}
	startHour, _ := strconv.Atoi(m[1])
	endHour, _ := strconv.Atoi(m[3])
	if !validHour(startHour) || !validHour(endHour) {
		return "", "", false
	}
	return clock(startHour, m[2]), clock(endHour, m[4]), true
}

func matchColonRange(content string) (string, string, bool) {
	m := colonRangeRe.FindStringSubmatch(content)
	if m == nil {
		return "", "", false
	}
	startHour, _ := strconv.Atoi(m[1])
	endHour, _ := strconv.Atoi(m[3])
	if !validHour(startHour) || !validHour(endHour) {
		return "", "", false
	}
	return clock(startHour, m[2]), clock(endHour, m[4]), true
}

func matchBareRange(content string) (string, string, bool) {
	for _, m := range bareRangeRe.FindAllStringSubmatch(content, -1) {
		startHour, _ := strconv.Atoi(m[1])
		endHour, _ := strconv.Atoi(m[2])
		if startHour >= 7 && startHour <= 23 && endHour >= 7 && endHour <= 23 {
			return clock(startHour, ""), clock(endHour, ""), true
		}
	}
	return "", "", false
}

func validHour(h int) bool { return h >= 0 && h <= 23 }

// clock formats an hour and an optional minute capture as HH:MM.
func clock(hour int, min string) string {
	if min == "" {
		min = "00"
	}
	return fmt.Sprintf("%02d:%s", hour, min)
}
