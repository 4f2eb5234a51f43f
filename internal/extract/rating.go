package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goforscrim/scrimsync/internal/core/domain"
)

// Skill-rating pattern families, tried in precedence order. Each family
// carries its own boundary guard so that adjacent time expressions
// ("21-22", "4K2-21") are never captured as ratings.
var (
	// "4.4/4.5k", "2.8-3k": dotted low-high range; the lower bound wins.
	dottedRangeRe = regexp.MustCompile(`(?i)\b([1-5])\.([0-9])[/-]([1-5])\.?([0-9])?k\b`)

	// "3k4/5": abbreviated range. The trailing digit must not start a
	// longer number, otherwise "4K2-21" would parse as a rating.
	abbrevRangeRe = regexp.MustCompile(`(?i)\b([1-5])k([0-9])[/-]([0-9])`)

	// "4K4" → "4.4k": compact single value.
	compactRe = regexp.MustCompile(`(?i)([1-5])k([0-9])`)

	// "4.5+" → "4.5k".
	plusRe = regexp.MustCompile(`([1-5])\.([0-9])\+`)

	// "3k", "3.5k": plain decimal-or-integer-with-k.
	simpleRe = regexp.MustCompile(`(?i)\b([1-5])\.?([0-9])?k\b`)

	// "3500" → "3.5k": bare 4-digit rating ending in zero.
	fourDigitRe = regexp.MustCompile(`\b([1-5])([0-9]{2})0\b`)
)

type ratingMatcher func(content string) (string, bool)

// ratingMatchers is the cascade; the first family that matches wins.
var ratingMatchers = []ratingMatcher{
	matchDottedRange,
	matchAbbrevRange,
	matchCompact,
	matchPlus,
	matchSimple,
	matchFourDigit,
}

// matchSkillRating returns the normalised rating expression ("4.4k") or
// empty when no family matches.
func matchSkillRating(content string) string {
	for _, m := range ratingMatchers {
		if v, ok := m(content); ok {
			return v
		}
	}
	return ""
}

func matchDottedRange(content string) (string, bool) {
	m := dottedRangeRe.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return m[1] + "." + m[2] + "k", true
}

func matchAbbrevRange(content string) (string, bool) {
	for _, idx := range abbrevRangeRe.FindAllStringSubmatchIndex(content, -1) {
		if digitFollows(content, idx[1]) {
			continue
		}
		return content[idx[2]:idx[3]] + "." + content[idx[4]:idx[5]] + "k", true
	}
	return "", false
}

func matchCompact(content string) (string, bool) {
	for _, idx := range compactRe.FindAllStringSubmatchIndex(content, -1) {
		if alnumFollows(content, idx[1]) {
			continue
		}
		return content[idx[2]:idx[3]] + "." + content[idx[4]:idx[5]] + "k", true
	}
	return "", false
}

func matchPlus(content string) (string, bool) {
	for _, idx := range plusRe.FindAllStringSubmatchIndex(content, -1) {
		if digitFollows(content, idx[1]) {
			continue
		}
		return content[idx[2]:idx[3]] + "." + content[idx[4]:idx[5]] + "k", true
	}
	return "", false
}

func matchSimple(content string) (string, bool) {
	m := simpleRe.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	decimal := m[2]
	if decimal == "" {
		decimal = "0"
	}
	return m[1] + "." + decimal + "k", true
}

func matchFourDigit(content string) (string, bool) {
	m := fourDigitRe.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	v, err := strconv.Atoi(m[1] + m[2] + "0")
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%.1fk", float64(v)/1000), true
}

// digitFollows reports whether the byte at pos is an ASCII digit.
func digitFollows(s string, pos int) bool {
	return pos < len(s) && s[pos] >= '0' && s[pos] <= '9'
}

// alnumFollows reports whether the byte at pos is an ASCII letter or digit.
func alnumFollows(s string, pos int) bool {
	if pos >= len(s) {
		return false
	}
	c := s[pos]
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// ratingValue converts "3.2k" to 3200. Reports false on malformed input.
func ratingValue(rating string) (float64, bool) {
	s := strings.TrimSuffix(strings.ToLower(rating), "k")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f * 1000, true
}

var gmRe = regexp.MustCompile(`(?i)\bgm\b`)

// deriveRank maps a captured rating to a rank by fixed thresholds; the
// numeric mapping takes precedence over keyword detection. Higher ranks
// are checked first so "grandmaster" never falls into the "master" bucket.
func deriveRank(rating, lower string) string {
	if rating != "" {
		if v, ok := ratingValue(rating); ok {
			switch {
			case v >= 4500:
				return domain.RankChampion
			case v >= 4000:
				return domain.RankGM
			case v >= 3500:
				return domain.RankMaster
			case v >= 3000:
				return domain.RankDiamant
			case v >= 2500:
				return domain.RankPlatine
			}
		}
	}
	return matchRankKeyword(lower)
}

func matchRankKeyword(lower string) string {
	switch {
	case containsAny(lower, "champ", "champion"):
		return domain.RankChampion
	case gmRe.MatchString(lower) || containsAny(lower, "grandmaster", "grand master"):
		return domain.RankGM
	case containsAny(lower, "master", "mast"):
		return domain.RankMaster
	case containsAny(lower, "dia", "diamant", "diamond"):
		return domain.RankDiamant
	case containsAny(lower, "plat", "platine", "platinum"):
		return domain.RankPlatine
	}
	return ""
}
