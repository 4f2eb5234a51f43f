package domain

import "time"

// RawMessage is a message as fetched from a chat channel. It is read-only
// input to the extractor and the merge engine.
type RawMessage struct {
	// ID is the provider-assigned message id. Ids are snowflakes and sort
	// chronologically within a channel.
	ID string

	// Content is the free-text body of the message.
	Content string

	// Timestamp is when the message was posted at the source.
	Timestamp time.Time

	// ChannelID identifies the channel the message was fetched from.
	ChannelID string

	// ChannelName is the display name of that channel, when known.
	ChannelName string

	// GuildID identifies the server the channel belongs to, when known.
	// Used only to build the canonical message URL.
	GuildID string

	// AuthorID is the stable id of the message author.
	AuthorID string

	// AuthorUsername is the author's account name.
	AuthorUsername string

	// AuthorDisplayName is the author's display name, if set.
	AuthorDisplayName string
}

// URL returns the canonical link to the message.
func (m *RawMessage) URL() string {
	guild := m.GuildID
	if guild == "" {
		guild = "@me"
	}
	return "https://discord.com/channels/" + guild + "/" + m.ChannelID + "/" + m.ID
}

// ChannelInfo is the channel metadata exposed by the message source.
type ChannelInfo struct {
	// ID is the channel id.
	ID string

	// Name is the channel display name.
	Name string
}
