package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goforscrim/scrimsync/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := file.DefaultPath()
		if err != nil {
			return err
		}
		if err := file.WriteDefault(path); err != nil {
			return err
		}
		cmd.Printf("Wrote %s\n", path)
		cmd.Println("Set discord_token (or DISCORD_USER_TOKEN) and the channel list before syncing.")
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := file.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
		cmd.Println(path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
