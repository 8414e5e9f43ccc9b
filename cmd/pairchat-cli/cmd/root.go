package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pairchat-cli",
	Short: "Operator CLI for the pairchat server",
	Long: `pairchat-cli inspects the pairchat server's event catalogue.

Available commands:
  topics    List, inspect and validate the event topics the server publishes
  version   Print the CLI version

Use "pairchat-cli [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
