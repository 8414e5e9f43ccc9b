package cmd

import (
	"fmt"
	"strings"

	"github.com/nfrund/pairchat/cmd/pairchat-cli/internal/topics"
	"github.com/nfrund/pairchat/internal/topicmgr"
	"github.com/spf13/cobra"
)

var (
	listOutputFormat string
	listModuleFilter string
	listScopeFilter  string
)

// topicsListCmd represents the topics list command
var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered topics",
	Long: `List every topic registered by the server, in table or JSON form.

Examples:
  pairchat-cli topics list                     # all topics, table format
  pairchat-cli topics list --format json       # all topics, JSON
  pairchat-cli topics list --module pairing    # pairing topics only
  pairchat-cli topics list --scope framework   # transport topics only`,
	RunE: topicsListHandler,
}

func topicsListHandler(cmd *cobra.Command, args []string) error {
	manager, err := topics.Initialize()
	if err != nil {
		return fmt.Errorf("failed to initialize topics: %w", err)
	}

	var scope topicmgr.TopicScope
	if listScopeFilter != "" {
		if scope = parseScope(listScopeFilter); scope == "" {
			return fmt.Errorf("invalid scope '%s', valid scopes: framework, module", listScopeFilter)
		}
	}

	topicList := manager.List()
	if listModuleFilter != "" {
		topicList = manager.ListByModule(listModuleFilter)
	}
	if scope != "" {
		filtered := topicList[:0]
		for _, topic := range topicList {
			if topic.Scope() == scope {
				filtered = append(filtered, topic)
			}
		}
		topicList = filtered
	}

	out := cmd.OutOrStdout()
	if len(topicList) == 0 {
		message := "No topics found"
		var filters []string
		if listModuleFilter != "" {
			filters = append(filters, fmt.Sprintf("module '%s'", listModuleFilter))
		}
		if listScopeFilter != "" {
			filters = append(filters, fmt.Sprintf("scope '%s'", listScopeFilter))
		}
		if len(filters) > 0 {
			message += " matching: " + strings.Join(filters, ", ")
		}
		fmt.Fprintln(out, message)
		return nil
	}

	switch listOutputFormat {
	case "json":
		return topics.DisplayTopicsJSON(out, topicList)
	case "table":
		topics.DisplayTopicsTable(out, topicList)
		return nil
	default:
		return fmt.Errorf("unsupported output format '%s', use 'table' or 'json'", listOutputFormat)
	}
}

// parseScope converts string scope to topicmgr.TopicScope
func parseScope(scopeStr string) topicmgr.TopicScope {
	switch strings.ToLower(scopeStr) {
	case "framework":
		return topicmgr.ScopeFramework
	case "module":
		return topicmgr.ScopeModule
	default:
		return ""
	}
}

func init() {
	topicsCmd.AddCommand(topicsListCmd)

	topicsListCmd.Flags().StringVarP(&listOutputFormat, "format", "f", "table", "Output format (table, json)")
	topicsListCmd.Flags().StringVarP(&listModuleFilter, "module", "m", "", "Filter topics by module name")
	topicsListCmd.Flags().StringVarP(&listScopeFilter, "scope", "s", "", "Filter topics by scope (framework, module)")
}
