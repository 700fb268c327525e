// Orderdesk is a terminal client for the record platform.
//
// It shows platform records, builds product orders for them in an
// interactive wizard, and provides direct commands for searching the
// catalog, creating orders and following the order event feed.
//
// Usage:
//
//	orderdesk [command] [flags]
//
// Running without arguments launches the order wizard for the most recently
// used record. See 'orderdesk --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/orderdesk/internal/config"
	"github.com/muurk/orderdesk/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "orderdesk",
	Short: "OrderDesk record viewer and order wizard",
	Long: `A terminal client for viewing platform records and creating product orders.

Settings are read from the config file (see 'orderdesk config path'); the API
token is read from the ORDERDESK_TOKEN environment variable and never stored.

If no command is specified, the order wizard launches for the most recently
used record.`,
	Version:           version.Version,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run wizard when no subcommand provided
		return runWizard(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("orderdesk %s (commit: %s)\n", version.Version, version.Commit)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the settings file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE:  runConfigShow,
}
