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
	getOutputFormat string
	getConfigPath   string
)

var getCmd = &cobra.Command{
	Use:   "get <nodes|workflows> <name>",
	Short: "Show details for a single node type or workflow",
	Args:  cobra.ExactArgs(2),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringVarP(&getOutputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	getCmd.Flags().StringVar(&getConfigPath, "config-path", "", "Custom configuration directory path (defaults to ~/.pflow)")
}

func runGet(cmd *cobra.Command, args []string) error {
	resourceType, name := args[0], args[1]

	if err := cli.ValidateOutputFormat(getOutputFormat); err != nil {
		return &UsageError{Err: err}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := bootstrapEnvironment(ctx, getConfigPath, false)
	if err != nil {
		return fmt.Errorf("initializing pflow environment: %w", err)
	}

	var item interface{}
	switch resourceType {
	case "node", "nodes":
		entry, ok := env.registry.Get(name)
		if !ok {
			return &UsageError{Err: fmt.Errorf("no node type named %q", name)}
		}
		item = entry
	case "workflow", "workflows":
		path, err := resolveWorkflowRef(env.configDir, name)
		if err != nil {
			return &UsageError{Err: err}
		}
		w, err := loadWorkflowFile(path)
		if err != nil {
			return err
		}
		item = w
	default:
		return &UsageError{Err: fmt.Errorf("unknown resource type %q, expected nodes or workflows", resourceType)}
	}

	return renderItem(cmd, item)
}

func renderItem(cmd *cobra.Command, item interface{}) error {
	switch cli.OutputFormat(getOutputFormat) {
	case cli.OutputFormatJSON:
		data, err := json.MarshalIndent(item, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	case cli.OutputFormatYAML:
		data, err := yaml.Marshal(item)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	default:
		data, err := json.Marshal(item)
		if err != nil {
			return err
		}
		var generic map[string]interface{}
		if err := json.Unmarshal(data, &generic); err != nil {
			return err
		}
		formatter := cli.NewTableFormatter(cli.ExecutorOptions{Format: cli.OutputFormat(getOutputFormat)})
		return formatter.FormatData(generic)
	}
}
