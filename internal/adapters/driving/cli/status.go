package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goforscrim/scrimsync/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-channel sync progress and scheduled tasks",
	Long: `Prints the sync cursor of every known channel (last processed
message, last sync time) and the state of the background tasks.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

const statusTimeFormat = "2006-01-02 15:04:05"

func runStatus(cmd *cobra.Command, _ []string) error {
	if cursorStore == nil {
		return errors.New("cursor store not configured")
	}

	ctx := context.Background()

	cursors, err := cursorStore.ListCursors(ctx)
	if err != nil {
		return fmt.Errorf("listing cursors failed: %w", err)
	}

	if len(cursors) == 0 {
		cmd.Println("No channels synchronised yet.")
	} else {
		cmd.Println("Channels:")
		for _, c := range cursors {
			label := c.ChannelName
			if label == "" {
				label = c.ChannelID
			}
			cmd.Printf("  %s  last message %s  synced %s\n",
				label, c.LastMessageID, c.LastSyncAt.Local().Format(statusTimeFormat))
		}
	}

	if schedulerStore == nil {
		return nil
	}

	tasks, err := schedulerStore.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("listing tasks failed: %w", err)
	}
	if len(tasks) == 0 {
		return nil
	}

	cmd.Println("Tasks:")
	for _, task := range tasks {
		cmd.Printf("  %s  every %s%s\n", task.Name, task.Interval, taskStatusSuffix(task))
	}
	return nil
}

func taskStatusSuffix(task domain.ScheduledTask) string {
	switch {
	case !task.Enabled:
		return "  disabled"
	case task.LastError != "":
		return "  last run failed: " + task.LastError
	case task.LastRun.IsZero():
		return "  not run yet"
	default:
		return "  last run " + task.LastRun.Local().Format(statusTimeFormat)
	}
}
