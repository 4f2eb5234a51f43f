package domain

import (
	"fmt"
	"time"
)

// Default policy thresholds. The 10-minute merge window and 7-day retention
// are inherited policy choices; they are configurable rather than fixed.
const (
	DefaultMergeWindow     = 10 * time.Minute
	DefaultRetention       = 7 * 24 * time.Hour
	DefaultPageSize        = 100
	DefaultMaxPages        = 3
	DefaultBatchSize       = 5
	DefaultSyncInterval    = time.Minute
	DefaultCleanupInterval = 24 * time.Hour
)

// Config is the application configuration, loaded from the TOML config
// file with environment overrides for secrets.
type Config struct {
	// DiscordToken authenticates against the message source API.
	// Required for sync; loaded from DISCORD_USER_TOKEN when unset.
	DiscordToken string `toml:"discord_token"`

	// ContactWebhookURL receives contact-form submissions. Optional.
	ContactWebhookURL string `toml:"contact_webhook_url"`

	// Channels is the list of channel ids to synchronise.
	Channels []string `toml:"channels"`

	// BatchSize is how many channels one sync invocation processes.
	BatchSize int `toml:"batch_size"`

	// MergeWindow is how close in time a re-observed fingerprint must be
	// to count as the same live post rather than a repost.
	MergeWindow time.Duration `toml:"merge_window"`

	// Retention is how old a record may be before cleanup removes it.
	Retention time.Duration `toml:"retention"`

	// PageSize is the message page size requested from the source.
	PageSize int `toml:"page_size"`

	// MaxPages bounds backwards pagination in full-window mode.
	MaxPages int `toml:"max_pages"`

	// ListenAddr is the HTTP API bind address for serve.
	ListenAddr string `toml:"listen_addr"`

	// SyncInterval is the scheduler cadence for incremental sync.
	SyncInterval time.Duration `toml:"sync_interval"`

	// CleanupInterval is the scheduler cadence for retention cleanup.
	CleanupInterval time.Duration `toml:"cleanup_interval"`

	// Verbose enables debug logging.
	Verbose bool `toml:"verbose"`
}

// DefaultConfig returns a Config with every threshold at its default.
func DefaultConfig() Config {
	return Config{
		BatchSize:       DefaultBatchSize,
		MergeWindow:     DefaultMergeWindow,
		Retention:       DefaultRetention,
		PageSize:        DefaultPageSize,
		MaxPages:        DefaultMaxPages,
		ListenAddr:      "127.0.0.1:8787",
		SyncInterval:    DefaultSyncInterval,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// ApplyDefaults fills zero-valued thresholds from the defaults.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.MergeWindow <= 0 {
		c.MergeWindow = d.MergeWindow
	}
	if c.Retention <= 0 {
		c.Retention = d.Retention
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.MaxPages <= 0 {
		c.MaxPages = d.MaxPages
	}
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.SyncInterval <= 0 {
		c.SyncInterval = d.SyncInterval
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = d.CleanupInterval
	}
}

// ValidateForSync checks the configuration needed to run a sync.
func (c *Config) ValidateForSync() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("%w: discord_token (or DISCORD_USER_TOKEN)", ErrConfigMissing)
	}
	if len(c.Channels) == 0 {
		return fmt.Errorf("%w: channels", ErrConfigMissing)
	}
	return nil
}
