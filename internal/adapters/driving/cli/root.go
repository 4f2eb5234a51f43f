// Package cli implements the scrimsync command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/goforscrim/scrimsync/internal/core/domain"
	"github.com/goforscrim/scrimsync/internal/core/ports/driven"
	"github.com/goforscrim/scrimsync/internal/core/ports/driving"
	"github.com/goforscrim/scrimsync/internal/logger"
)

// version is overridden at build time with -ldflags.
var version = "dev"

// Services installed by the composition root before Execute. Commands
// guard against missing services so partial wiring fails cleanly.
var (
	appConfig       domain.Config
	syncService     driving.Syncer
	recordStore     driven.RecordStore
	cursorStore     driven.CursorStore
	schedulerStore  driven.SchedulerStore
	contactNotifier driven.Notifier
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "scrimsync",
	Short: "Collect scrim listings from Discord channels",
	Long: `scrimsync watches looking-for-scrim Discord channels, extracts the
structured details from each post (rating, region, platform, availability)
and keeps a deduplicated seven-day window of listings.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verboseFlag || appConfig.Verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
}

// SetServices installs the application services the commands act on.
func SetServices(
	cfg domain.Config,
	syncer driving.Syncer,
	records driven.RecordStore,
	cursors driven.CursorStore,
	scheduler driven.SchedulerStore,
	notifier driven.Notifier,
) {
	appConfig = cfg
	syncService = syncer
	recordStore = records
	cursorStore = cursors
	schedulerStore = scheduler
	contactNotifier = notifier
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
