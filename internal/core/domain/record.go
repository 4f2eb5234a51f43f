package domain

import "time"

// Kind classifies what a post is looking for.
type Kind string

// Kind values. Unclassified means no keyword matched; the record is still
// kept, and callers decide whether to display it.
const (
	KindScrim        Kind = "scrim"
	KindWarmup       Kind = "warmup"
	KindUnclassified Kind = ""
)

// Rank is the closed set of rank labels a record may carry.
const (
	RankPlatine  = "Platine"
	RankDiamant  = "Diamant"
	RankMaster   = "Master"
	RankGM       = "GM"
	RankChampion = "Champion"
)

// Regions recognised by the extractor.
const (
	RegionEU   = "EU"
	RegionNA   = "NA"
	RegionAPAC = "APAC"
	RegionSA   = "SA"
)

// Platforms recognised by the extractor.
const (
	PlatformPC      = "PC"
	PlatformConsole = "Console"
)

// ExtractedRecord is the structured result of parsing one message. All
// fields except AvailabilityDay and the source linkage are optional; an
// empty string means the signal was absent, never a guessed default.
type ExtractedRecord struct {
	Kind Kind

	// Region is one of EU, NA, APAC, SA, or empty.
	Region string

	// Platform is PC, Console, or empty.
	Platform string

	// SkillRating is the raw matched rating expression, e.g. "3.4k".
	SkillRating string

	// Rank is derived from SkillRating by thresholds, falling back to a
	// keyword match. One of the Rank constants, or empty.
	Rank string

	// AvailabilityDay always has a value; "Today" when nothing matched.
	AvailabilityDay string

	// TimeStart and TimeEnd are HH:MM 24-hour bounds. Both are set or
	// both are empty, never just one.
	TimeStart string
	TimeEnd   string

	// Timezone is one of CET, CEST, EST, BST, or empty.
	Timezone string

	// Source linkage.
	SourceMessageID   string
	SourceURL         string
	AuthorID          string
	AuthorUsername    string
	AuthorDisplayName string
	SourceTimestamp   time.Time
	ChannelID         string
	ChannelName       string
}

// HasTimeWindow reports whether a complete time window was extracted.
func (r *ExtractedRecord) HasTimeWindow() bool {
	return r.TimeStart != "" && r.TimeEnd != ""
}

// StoredRecord is a persisted scrim post. It extends ExtractedRecord with
// the content fingerprint used for deduplication and the set of channels
// the same post was observed in.
type StoredRecord struct {
	ExtractedRecord

	// Fingerprint is hash(author id, normalized content); it identifies
	// the same logical post across channels and reposts.
	Fingerprint string

	// PostedInChannels is every channel name this fingerprint has been
	// observed in. Order is not significant.
	PostedInChannels []string

	// CreatedAt is assigned by the store on insert.
	CreatedAt time.Time
}

// InChannel reports whether the record was observed in the named channel.
func (r *StoredRecord) InChannel(name string) bool {
	for _, c := range r.PostedInChannels {
		if c == name {
			return true
		}
	}
	return false
}

// MergeChannels unions the given channel names into PostedInChannels and
// reports whether the set changed.
func (r *StoredRecord) MergeChannels(names []string) bool {
	changed := false
	for _, n := range names {
		if n == "" || r.InChannel(n) {
			continue
		}
		r.PostedInChannels = append(r.PostedInChannels, n)
		changed = true
	}
	return changed
}
