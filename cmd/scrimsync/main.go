// Command scrimsync collects looking-for-scrim posts from Discord
// channels into a deduplicated local store and serves them over a small
// HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/goforscrim/scrimsync/internal/adapters/driven/config/file"
	"github.com/goforscrim/scrimsync/internal/adapters/driven/notify/discordwebhook"
	"github.com/goforscrim/scrimsync/internal/adapters/driven/storage/sqlite"
	"github.com/goforscrim/scrimsync/internal/adapters/driving/cli"
	"github.com/goforscrim/scrimsync/internal/connectors/discord"
	"github.com/goforscrim/scrimsync/internal/core/services"
	"github.com/goforscrim/scrimsync/internal/logger"
)

// Overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := file.Load("")
	if err != nil {
		return err
	}
	if cfg.Verbose {
		logger.SetVerbose(true)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	source := discord.NewClient(cfg.DiscordToken, discord.DefaultRetryPolicy())
	engine := services.NewSyncEngine(source, store.RecordStore(), store.CursorStore(), services.SyncOptions{
		MergeWindow: cfg.MergeWindow,
		Retention:   cfg.Retention,
		PageSize:    cfg.PageSize,
		MaxPages:    cfg.MaxPages,
	})
	notifier := discordwebhook.NewNotifier(cfg.ContactWebhookURL)

	cli.SetVersion(version)
	cli.SetServices(cfg, engine, store.RecordStore(), store.CursorStore(), store.SchedulerStore(), notifier)
	return cli.Execute()
}
