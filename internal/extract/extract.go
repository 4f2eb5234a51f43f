package extract

import (
	"strings"

	"github.com/goforscrim/scrimsync/internal/core/domain"
)

// Extract parses one message into a structured record. The channel name on
// the message serves as a lower-confidence fallback signal for region and
// platform when the text itself names neither.
func Extract(msg domain.RawMessage) domain.ExtractedRecord {
	content := msg.Content
	lower := strings.ToLower(content)

	rec := domain.ExtractedRecord{
		Kind:              matchKind(lower),
		Region:            matchRegion(lower, msg.ChannelName),
		Platform:          matchPlatform(lower, msg.ChannelName),
		AvailabilityDay:   matchAvailability(lower),
		Timezone:          matchTimezone(content),
		SourceMessageID:   msg.ID,
		SourceURL:         msg.URL(),
		AuthorID:          msg.AuthorID,
		AuthorUsername:    msg.AuthorUsername,
		AuthorDisplayName: msg.AuthorDisplayName,
		SourceTimestamp:   msg.Timestamp,
		ChannelID:         msg.ChannelID,
		ChannelName:       msg.ChannelName,
	}

	rec.SkillRating = matchSkillRating(content)
	rec.Rank = deriveRank(rec.SkillRating, lower)
	rec.TimeStart, rec.TimeEnd = matchTimeWindow(content)

	return rec
}

// containsAny reports whether s contains any of the given substrings.
func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
