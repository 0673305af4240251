package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands, per spec.md §6: 0 success, 1 execution
// failure, 2 usage error, 130 interrupt.
const (
	ExitCodeSuccess     = 0
	ExitCodeError       = 1
	ExitCodeUsage       = 2
	ExitCodeInterrupted = 130
)

// UsageError marks a failure as a command-line usage problem (bad flags,
// missing positional args, unknown node/workflow identifiers given on
// the command line) rather than a workflow execution failure, so
// getExitCode can tell the two apart.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// rootCmd represents the base command for the pflow application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pflow",
	Short: "Compile and run declarative MCP-agent workflows",
	Long: `pflow compiles workflow definitions (JSON IR or .pflow.md markdown)
into an executable graph over built-in, shell, and MCP-backed nodes, then
runs or serves them.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	// This is useful for providing cleaner error output to the user.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
// This can be used by other commands to access the build version.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// It initializes and executes the root command, which in turn handles subcommands and flags.
// This function is called by main.main().
func Execute() {
	// SetVersionTemplate defines a custom template for displaying the version.
	// This is used when the --version flag is invoked.
	rootCmd.SetVersionTemplate(`{{printf "pflow version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return ExitCodeInterrupted
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitCodeUsage
	}

	return ExitCodeError
}

// init is a special Go function that is executed when the package is initialized.
// It is used here to add subcommands to the root command.
func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
