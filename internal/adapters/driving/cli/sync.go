package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goforscrim/scrimsync/internal/core/domain"
)

var syncFull bool

var syncCmd = &cobra.Command{
	Use:   "sync [channel-id...]",
	Short: "Synchronise scrim listings from Discord channels",
	Long: `Fetches new messages from the configured channels, extracts scrim
listings and stores them. With channel IDs as arguments, only those
channels are synchronised. The --full flag pages back through the whole
retention window instead of resuming from the per-channel cursor.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncFull, "full", false, "re-scan the whole retention window")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	channels := args
	if len(channels) == 0 {
		channels = appConfig.Channels
	}

	// Missing credentials are fatal, not a per-channel failure.
	cfg := appConfig
	cfg.Channels = channels
	if err := cfg.ValidateForSync(); err != nil {
		return err
	}

	mode := domain.SyncIncremental
	if syncFull {
		mode = domain.SyncFullWindow
	}

	cmd.Printf("Synchronising %d channel(s)...\n", len(channels))

	report, err := syncService.SyncChannels(context.Background(), channels, mode)
	if errors.Is(err, domain.ErrSyncInProgress) {
		cmd.Println("A sync is already running.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	for _, ch := range report.Channels {
		if ch.Failed {
			cmd.Printf("  %s: failed\n", channelLabel(ch))
			continue
		}
		cmd.Printf("  %s: %d message(s)\n", channelLabel(ch), ch.MessageCount)
	}
	cmd.Printf("Done: %d added, %d merged, %d deleted, %d skipped, %d error(s).\n",
		report.Added, report.Merged, report.Deleted, report.Skipped, report.Errors)
	return nil
}

func channelLabel(ch domain.ChannelStat) string {
	if ch.ChannelName != "" {
		return ch.ChannelName
	}
	return ch.ChannelID
}
