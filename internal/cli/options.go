package cli

import "fmt"

// OutputFormat represents the supported output formats for CLI commands.
// Grounded on the teacher's internal/cli/executor.go OutputFormat type;
// kept verbatim since it is the CLI's output-rendering contract, not a
// remote-execution concern.
type OutputFormat string

const (
	// OutputFormatTable formats output as a kubectl-style plain table
	OutputFormatTable OutputFormat = "table"
	// OutputFormatWide formats output as a table with additional columns
	OutputFormatWide OutputFormat = "wide"
	// OutputFormatJSON formats output as raw JSON data
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML formats output as YAML data converted from JSON
	OutputFormatYAML OutputFormat = "yaml"
)

// ValidOutputFormats contains all valid output format values.
var ValidOutputFormats = []OutputFormat{
	OutputFormatTable,
	OutputFormatWide,
	OutputFormatJSON,
	OutputFormatYAML,
}

// ValidateOutputFormat validates that the given format string is a supported output format.
func ValidateOutputFormat(format string) error {
	switch OutputFormat(format) {
	case OutputFormatTable, OutputFormatWide, OutputFormatJSON, OutputFormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %q (valid: table, wide, json, yaml)", format)
	}
}

// ExecutorOptions controls how a CLI command renders its result. Trimmed
// from the teacher's ExecutorOptions: pflow's list/get/run/validate
// commands call internal/registry, internal/compiler and
// internal/runtime directly rather than an RPC ToolExecutor against a
// remote aggregator, so Endpoint/Context/AuthMode have no referent here.
type ExecutorOptions struct {
	// Format specifies the desired output format (table, wide, json, yaml)
	Format OutputFormat
	// NoHeaders suppresses the header row in table output
	NoHeaders bool
	// Quiet suppresses progress indicators and non-essential output
	Quiet bool
	// Debug enables verbose logging during command execution
	Debug bool
}
