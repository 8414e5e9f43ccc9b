package cmd

import (
	"github.com/spf13/cobra"
)

// topicsCmd represents the topics command
var topicsCmd = &cobra.Command{
	Use:     "topics",
	Aliases: []string{"events"},
	Short:   "Explore the event topics published by the server",
	Long: `The topics command lists and inspects the topics the server publishes on its
message bus. Module topics (pairing.*) describe pairing outcomes; framework topics
(ws.*) describe the WebSocket transport.

Available subcommands:
  list      List all registered topics with optional filtering
  get       Get detailed information about a specific topic
  validate  Validate a topic name and definition

Examples:
  pairchat-cli topics list
  pairchat-cli topics list --scope=framework
  pairchat-cli events get pairing.session.paired
  pairchat-cli topics validate pairing.session.connected`,
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}
