package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	runConfigPath string
	runDebug      bool
	runQuiet      bool
)

// runWorkflowCmd is pflow's one-shot workflow runner: load, compile,
// execute, print rendered outputs — the direct replacement for the
// teacher's implicit serve-then-call-a-tool flow (SPEC_FULL.md's
// AMBIENT STACK CLI section).
var runWorkflowCmd = &cobra.Command{
	Use:   "run-workflow <path-or-name> [key=value ...]",
	Short: "Compile and run a workflow, printing its outputs",
	Long: `Loads a workflow from a JSON IR file, a .pflow.md markdown file, or a
saved workflow name under the config directory's workflows/ folder, compiles
it against the node registry, runs it to completion, and prints the rendered
outputs as JSON.

Trailing key=value arguments become workflow inputs; values are parsed as
JSON when possible (numbers, booleans, objects, arrays), falling back to a
plain string otherwise.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRunWorkflow,
}

func init() {
	rootCmd.AddCommand(runWorkflowCmd)

	runWorkflowCmd.Flags().StringVar(&runConfigPath, "config-path", "", "Custom configuration directory path (defaults to ~/.pflow)")
	runWorkflowCmd.Flags().BoolVar(&runDebug, "debug", false, "Enable verbose logging")
	runWorkflowCmd.Flags().BoolVar(&runQuiet, "quiet", false, "Suppress the discovery spinner")
}

func runRunWorkflow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ref := args[0]
	inputs, err := parseKeyValueArgs(args[1:])
	if err != nil {
		return &UsageError{Err: err}
	}

	var env *environment
	err = withSpinner("Discovering nodes and MCP servers...", runQuiet, func() error {
		var bootstrapErr error
		env, bootstrapErr = bootstrapEnvironment(ctx, runConfigPath, runDebug)
		return bootstrapErr
	})
	if err != nil {
		return fmt.Errorf("initializing pflow environment: %w", err)
	}

	resolved, err := resolveWorkflowRef(env.configDir, ref)
	if err != nil {
		return &UsageError{Err: err}
	}
	w, err := loadWorkflowFile(resolved)
	if err != nil {
		return err
	}

	result, err := compileAndRun(ctx, env, w, inputs)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result.Outputs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling outputs: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// parseKeyValueArgs turns "key=value" CLI arguments into a workflow input
// map, JSON-decoding each value when it parses as valid JSON (so "5",
// "true", and "{\"a\":1}" all come through typed) and falling back to the
// raw string otherwise.
func parseKeyValueArgs(args []string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid input %q, expected key=value", arg)
		}
		out[key] = parseInputValue(value)
	}
	return out, nil
}

func parseInputValue(raw string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}
