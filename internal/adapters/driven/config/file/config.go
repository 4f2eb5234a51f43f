package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/goforscrim/scrimsync/internal/core/domain"
)

// Environment variables that override file values.
const (
	EnvDiscordToken      = "DISCORD_USER_TOKEN"
	EnvContactWebhookURL = "CONTACT_WEBHOOK_URL"
	EnvConfigPath        = "SCRIMSYNC_CONFIG"
)

// rawConfig is the TOML shape of the config file. Durations are strings
// in Go duration syntax ("10m", "168h") so the file stays hand-editable.
type rawConfig struct {
	DiscordToken      string   `toml:"discord_token"`
	ContactWebhookURL string   `toml:"contact_webhook_url"`
	Channels          []string `toml:"channels"`
	BatchSize         int      `toml:"batch_size"`
	MergeWindow       string   `toml:"merge_window"`
	Retention         string   `toml:"retention"`
	PageSize          int      `toml:"page_size"`
	MaxPages          int      `toml:"max_pages"`
	ListenAddr        string   `toml:"listen_addr"`
	SyncInterval      string   `toml:"sync_interval"`
	CleanupInterval   string   `toml:"cleanup_interval"`
	Verbose           bool     `toml:"verbose"`
}

// DefaultPath returns the config file location, SCRIMSYNC_CONFIG when
// set, otherwise ~/.scrimsync/config.toml.
func DefaultPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".scrimsync", "config.toml"), nil
}

// Load reads the configuration. A missing file is not an error; defaults
// and environment overrides still apply, and validation is the caller's
// concern.
func Load(path string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fall through to env overrides.
	case err != nil:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	default:
		var raw rawConfig
		if err := toml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
		if err := applyRaw(&cfg, raw); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if token := os.Getenv(EnvDiscordToken); token != "" {
		cfg.DiscordToken = token
	}
	if url := os.Getenv(EnvContactWebhookURL); url != "" {
		cfg.ContactWebhookURL = url
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

func applyRaw(cfg *domain.Config, raw rawConfig) error {
	cfg.DiscordToken = raw.DiscordToken
	cfg.ContactWebhookURL = raw.ContactWebhookURL
	cfg.Channels = raw.Channels
	cfg.BatchSize = raw.BatchSize
	cfg.PageSize = raw.PageSize
	cfg.MaxPages = raw.MaxPages
	cfg.ListenAddr = raw.ListenAddr
	cfg.Verbose = raw.Verbose

	durations := []struct {
		value string
		key   string
		dst   *time.Duration
	}{
		{raw.MergeWindow, "merge_window", &cfg.MergeWindow},
		{raw.Retention, "retention", &cfg.Retention},
		{raw.SyncInterval, "sync_interval", &cfg.SyncInterval},
		{raw.CleanupInterval, "cleanup_interval", &cfg.CleanupInterval},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("%w: %s %q", domain.ErrInvalidInput, d.key, d.value)
		}
		*d.dst = parsed
	}
	return nil
}

// WriteDefault writes a starter config file with every threshold at its
// default. It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config already exists at %s", domain.ErrAlreadyExists, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	d := domain.DefaultConfig()
	raw := rawConfig{
		Channels:        []string{},
		BatchSize:       d.BatchSize,
		MergeWindow:     d.MergeWindow.String(),
		Retention:       d.Retention.String(),
		PageSize:        d.PageSize,
		MaxPages:        d.MaxPages,
		ListenAddr:      d.ListenAddr,
		SyncInterval:    d.SyncInterval.String(),
		CleanupInterval: d.CleanupInterval.String(),
	}

	data, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
