package domain

import "time"

// SyncMode selects how much history a sync run fetches per channel.
type SyncMode string

const (
	// SyncIncremental fetches one page of messages after the channel's
	// cursor. This is the cheap mode meant for frequent runs.
	SyncIncremental SyncMode = "incremental"

	// SyncFullWindow pages backwards through the channel until the
	// retention horizon or the page limit is reached, ignoring cursors.
	SyncFullWindow SyncMode = "full-window"
)

// SyncCursor is the per-channel bookmark of the last processed message.
// It is owned exclusively by the sync engine.
type SyncCursor struct {
	ChannelID     string
	ChannelName   string
	LastMessageID string
	LastSyncAt    time.Time
}

// SyncReport aggregates the outcome of one sync run.
type SyncReport struct {
	// Added is the number of new stored records inserted.
	Added int

	// Skipped counts messages that produced no record (retracted posts
	// with no prior record).
	Skipped int

	// Merged counts channel-set merges into existing records.
	Merged int

	// Deleted counts records removed by retraction.
	Deleted int

	// Errors counts per-message and per-channel failures. The run
	// continues past them.
	Errors int

	// Channels describes per-channel fetch results.
	Channels []ChannelStat
}

// ChannelStat is the fetch outcome for one channel within a run.
type ChannelStat struct {
	ChannelID    string
	ChannelName  string
	MessageCount int
	Failed       bool
}
