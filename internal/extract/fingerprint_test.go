package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "lowercases", content: "LFS Tonight", want: "lfs tonight"},
		{name: "collapses whitespace", content: "lfs   tonight\n\teu", want: "lfs tonight eu"},
		{name: "strips punctuation", content: "lfs, tonight!!! (eu)", want: "lfs tonight eu"},
		{name: "strips leading and trailing space", content: "  lfs tonight  ", want: "lfs tonight"},
		{name: "keeps digits and letters", content: "3.5k 21-23", want: "35k 2123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.content))
		})
	}
}

func TestFingerprint(t *testing.T) {
	base := Fingerprint("author-1", "LFS tonight 3.5k EU")

	// Stable across cosmetic differences.
	assert.Equal(t, base, Fingerprint("author-1", "lfs   tonight 3.5k eu"))
	assert.Equal(t, base, Fingerprint("author-1", "LFS tonight, 3.5k (EU)"))

	// Different author or substantive edit changes identity.
	assert.NotEqual(t, base, Fingerprint("author-2", "LFS tonight 3.5k EU"))
	assert.NotEqual(t, base, Fingerprint("author-1", "LFS tomorrow 3.5k EU"))

	// 64 hex chars.
	assert.Len(t, base, 64)
}
