package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Fingerprint identifies "the same post" across channels and across time.
// It hashes the author with a normalised form of the content, so cosmetic
// edits (casing, spacing, punctuation) do not change identity while any
// substantive edit does.
func Fingerprint(authorID, content string) string {
	h := sha256.New()
	h.Write([]byte(authorID))
	h.Write([]byte{0})
	h.Write([]byte(Normalize(content)))
	return hex.EncodeToString(h.Sum(nil))
}

// Normalize lower-cases the content, strips punctuation and collapses
// runs of whitespace into single spaces.
func Normalize(content string) string {
	var b strings.Builder
	b.Grow(len(content))
	space := false
	for _, r := range strings.ToLower(content) {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			// dropped
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
