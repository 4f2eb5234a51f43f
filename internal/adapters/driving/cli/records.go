package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goforscrim/scrimsync/internal/core/domain"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List the stored scrim listings",
	Long: `Prints every listing inside the retention window, newest first.
One line per listing: author, rating, region, platform, availability and
the channels the post was seen in.`,
	RunE: runRecords,
}

func init() {
	rootCmd.AddCommand(recordsCmd)
}

func runRecords(cmd *cobra.Command, _ []string) error {
	if recordStore == nil {
		return errors.New("record store not configured")
	}

	cutoff := time.Now().Add(-appConfig.Retention)
	records, err := recordStore.ListSince(context.Background(), cutoff)
	if err != nil {
		return fmt.Errorf("listing records failed: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No listings stored.")
		return nil
	}

	for _, rec := range records {
		cmd.Println(formatRecord(rec))
	}
	cmd.Printf("%d listing(s).\n", len(records))
	return nil
}

// formatRecord renders one listing as a single line, leaving out fields
// the extractor did not find.
func formatRecord(rec domain.StoredRecord) string {
	parts := []string{rec.SourceTimestamp.Local().Format("Jan 02 15:04")}

	author := rec.AuthorDisplayName
	if author == "" {
		author = rec.AuthorUsername
	}
	parts = append(parts, author)

	if rec.SkillRating != "" {
		rating := rec.SkillRating
		if rec.Rank != "" {
			rating += " (" + rec.Rank + ")"
		}
		parts = append(parts, rating)
	}
	if rec.Region != "" {
		parts = append(parts, rec.Region)
	}
	if rec.Platform != "" {
		parts = append(parts, rec.Platform)
	}
	if rec.Kind != domain.KindUnclassified {
		parts = append(parts, string(rec.Kind))
	}

	when := rec.AvailabilityDay
	if rec.HasTimeWindow() {
		when += " " + rec.TimeStart + "-" + rec.TimeEnd
		if rec.Timezone != "" {
			when += " " + rec.Timezone
		}
	}
	parts = append(parts, when)

	if len(rec.PostedInChannels) > 0 {
		parts = append(parts, "#"+strings.Join(rec.PostedInChannels, " #"))
	}
	return strings.Join(parts, "  ")
}
