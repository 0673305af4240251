package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	validateConfigPath string
	validateQuiet      bool
)

// validateCmd checks a workflow's IR and registry references without
// running it: ir.Validate's structural pass plus compiler.Compile's
// REGISTRY_MISS/PARAM_UNKNOWN/OUTPUT_SOURCE_UNKNOWN/cycle checks.
var validateCmd = &cobra.Command{
	Use:   "validate <path-or-name>",
	Short: "Validate a workflow without executing it",
	Long: `Loads a workflow from a JSON IR file, a .pflow.md markdown file, or a
saved workflow name, and runs it through the same validation and compilation
checks run-workflow would, without executing any node.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateConfigPath, "config-path", "", "Custom configuration directory path (defaults to ~/.pflow)")
	validateCmd.Flags().BoolVar(&validateQuiet, "quiet", false, "Suppress the discovery spinner")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var env *environment
	err := withSpinner("Discovering nodes and MCP servers...", validateQuiet, func() error {
		var bootstrapErr error
		env, bootstrapErr = bootstrapEnvironment(ctx, validateConfigPath, false)
		return bootstrapErr
	})
	if err != nil {
		return fmt.Errorf("initializing pflow environment: %w", err)
	}

	resolved, err := resolveWorkflowRef(env.configDir, args[0])
	if err != nil {
		return &UsageError{Err: err}
	}
	w, err := loadWorkflowFile(resolved)
	if err != nil {
		return err
	}

	if _, err := compileWorkflow(env, w); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "workflow %q is valid\n", w.Name)
	return nil
}
