package cmd

import (
	"fmt"

	"github.com/nfrund/pairchat/cmd/pairchat-cli/internal/topics"
	"github.com/nfrund/pairchat/internal/topicmgr"
	"github.com/spf13/cobra"
)

// topicsValidateCmd represents the topics validate command
var topicsValidateCmd = &cobra.Command{
	Use:   "validate <topic-name>",
	Short: "Validate a topic definition",
	Long: `Check a topic name against the naming rules (lowercase dotted segments, no
reserved prefix) and, when the topic is registered, its definition against the
scope rules for framework and module topics.

Examples:
  pairchat-cli topics validate pairing.session.paired
  pairchat-cli topics validate Invalid.Topic`,
	Args: cobra.ExactArgs(1),
	RunE: topicsValidateHandler,
}

func topicsValidateHandler(cmd *cobra.Command, args []string) error {
	topicName := args[0]

	manager, err := topics.Initialize()
	if err != nil {
		return fmt.Errorf("failed to initialize topics: %w", err)
	}

	validator := topicmgr.NewValidator()
	nameErr := validator.ValidateName(topicName)

	topic, found := manager.Get(topicName)
	var defErr error
	if found {
		defErr = validator.ValidateDefinition(topic)
	} else if nameErr == nil {
		defErr = fmt.Errorf("topic '%s' not found", topicName)
	}

	out := cmd.OutOrStdout()
	topics.DisplayValidationResult(out, topicName, topic, nameErr, defErr)
	if nameErr != nil {
		return nameErr
	}
	return defErr
}

func init() {
	topicsCmd.AddCommand(topicsValidateCmd)
}
