package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pflow-dev/pflow-core/internal/cli"
)

var (
	listOutputFormat string
	listQuiet        bool
	listConfigPath   string
	listQuery        string
)

// listResourceTypes are the resource kinds `pflow list` understands,
// repointed at internal/registry and the saved-workflow directory instead
// of an aggregator RPC call.
var listResourceTypes = []string{"nodes", "workflows"}

var listCmd = &cobra.Command{
	Use:   "list <nodes|workflows>",
	Short: "List node types or workflows",
	Long: `List resources known to pflow:

  nodes      - the node type catalog (builtins plus discovered MCP tools)
  workflows  - saved workflow definitions under the config directory

Use --query to substring-filter by key/name or description.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: listResourceTypes,
	RunE:      runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listOutputFormat, "output", "o", "table", "Output format (table, wide, json, yaml)")
	listCmd.Flags().BoolVarP(&listQuiet, "quiet", "q", false, "Suppress the discovery spinner")
	listCmd.Flags().StringVar(&listConfigPath, "config-path", "", "Custom configuration directory path (defaults to ~/.pflow)")
	listCmd.Flags().StringVar(&listQuery, "query", "", "Substring filter over name/key and description")
}

func runList(cmd *cobra.Command, args []string) error {
	resourceType := args[0]
	switch resourceType {
	case "node", "nodes":
		resourceType = "nodes"
	case "workflow", "workflows":
		resourceType = "workflows"
	default:
		return &UsageError{Err: fmt.Errorf("unknown resource type %q, expected nodes or workflows", resourceType)}
	}

	if err := cli.ValidateOutputFormat(listOutputFormat); err != nil {
		return &UsageError{Err: err}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var env *environment
	err := withSpinner("Discovering nodes and MCP servers...", listQuiet, func() error {
		var bootstrapErr error
		env, bootstrapErr = bootstrapEnvironment(ctx, listConfigPath, false)
		return bootstrapErr
	})
	if err != nil {
		return fmt.Errorf("initializing pflow environment: %w", err)
	}

	switch resourceType {
	case "nodes":
		return renderList(cmd, "nodes", listEntries(env))
	default:
		return renderList(cmd, "workflows", listWorkflowSummaries(env))
	}
}

func listEntries(env *environment) []interface{} {
	if listQuery != "" {
		out, _ := toGenericList(env.registry.Search(listQuery))
		return out
	}
	out, _ := toGenericList(env.registry.List())
	return out
}

func listWorkflowSummaries(env *environment) []interface{} {
	workflows, err := listSavedWorkflows(env.configDir)
	if err != nil {
		return nil
	}
	type summary struct {
		Name        string   `json:"name"`
		Description string   `json:"description,omitempty"`
		Steps       int      `json:"steps"`
		Keywords    []string `json:"search_keywords,omitempty"`
	}
	var filtered []summary
	for _, w := range workflows {
		if !matchesQuery(w, listQuery) {
			continue
		}
		filtered = append(filtered, summary{Name: w.Name, Description: w.Description, Steps: len(w.Nodes), Keywords: w.SearchKeywords})
	}
	out, _ := toGenericList(filtered)
	return out
}

// toGenericList round-trips v through JSON to the map[string]interface{}
// shape cli.TableFormatter expects, since it type-switches on decoded JSON
// shapes rather than concrete Go structs.
func toGenericList(v interface{}) ([]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out []interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func renderList(cmd *cobra.Command, resourceType string, items []interface{}) error {
	switch cli.OutputFormat(listOutputFormat) {
	case cli.OutputFormatJSON:
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	case cli.OutputFormatYAML:
		data, err := yaml.Marshal(items)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	default:
		formatter := cli.NewTableFormatter(cli.ExecutorOptions{
			Format:    cli.OutputFormat(listOutputFormat),
			NoHeaders: false,
			Quiet:     listQuiet,
		})
		return formatter.FormatData(items)
	}
}
