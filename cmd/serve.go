package cmd

import (
	"context"
	"fmt"

	mcpsdk "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/pflow-dev/pflow-core/pkg/logging"
)

// serveDebug enables verbose logging across the serve process.
var serveDebug bool

// serveConfigPath overrides the default ~/.pflow configuration directory.
var serveConfigPath string

// serveWatch keeps an fsnotify watch on the MCP server catalog so edits
// while serve is running trigger re-discovery without a restart.
var serveWatch bool

// serveCmd starts pflow's agent-facing MCP server: discover_workflows,
// validate_workflow, execute_workflow, debug_workflow, export_workflow,
// browse_nodes as thin adapters over the compiler/runtime/registry stack.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pflow agent-facing MCP server",
	Long: `Starts an MCP server exposing discover_workflows, validate_workflow,
execute_workflow, debug_workflow, export_workflow, and browse_nodes so an
agent can drive the workflow engine over the Model Context Protocol instead
of shelling out to the pflow CLI.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable verbose logging")
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Custom configuration directory path (defaults to ~/.pflow)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "Watch the MCP server catalog for changes and re-discover live")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := bootstrapEnvironment(ctx, serveConfigPath, serveDebug)
	if err != nil {
		return fmt.Errorf("initializing pflow environment: %w", err)
	}

	if serveWatch {
		if err := env.discoverer.Watch(ctx); err != nil {
			logging.Warn("Serve", "MCP catalog watch disabled: %v", err)
		}
	}

	srv := server.NewMCPServer("pflow", rootCmd.Version)
	registerServeTools(srv, env)

	logging.Info("Serve", "pflow MCP server ready, serving stdio")
	return server.ServeStdio(srv)
}

// registerServeTools wires the six agent-facing tools onto srv, each a
// thin adapter over compiler/runtime/registry per SPEC_FULL.md §4.6 — the
// tools carry no business logic of their own, only argument plumbing.
func registerServeTools(srv *server.MCPServer, env *environment) {
	srv.AddTool(mcpsdk.NewTool("discover_workflows",
		mcpsdk.WithDescription("List workflows known to pflow, optionally filtered by a search query")),
		discoverWorkflowsHandler(env))

	srv.AddTool(mcpsdk.NewTool("validate_workflow",
		mcpsdk.WithDescription("Validate a workflow's IR without executing it"),
		mcpsdk.WithString("path", mcpsdk.Required(), mcpsdk.Description("Path to a .json or .pflow.md workflow file"))),
		validateWorkflowHandler(env))

	srv.AddTool(mcpsdk.NewTool("execute_workflow",
		mcpsdk.WithDescription("Compile and run a workflow, returning its rendered outputs"),
		mcpsdk.WithString("path", mcpsdk.Required(), mcpsdk.Description("Path to a .json or .pflow.md workflow file")),
		mcpsdk.WithObject("inputs", mcpsdk.Description("Workflow input values keyed by input name"))),
		executeWorkflowHandler(env))

	srv.AddTool(mcpsdk.NewTool("debug_workflow",
		mcpsdk.WithDescription("Run a workflow and return its full per-node execution trace"),
		mcpsdk.WithString("path", mcpsdk.Required(), mcpsdk.Description("Path to a .json or .pflow.md workflow file")),
		mcpsdk.WithObject("inputs", mcpsdk.Description("Workflow input values keyed by input name"))),
		debugWorkflowHandler(env))

	srv.AddTool(mcpsdk.NewTool("export_workflow",
		mcpsdk.WithDescription("Load a workflow and re-emit it as canonical JSON IR"),
		mcpsdk.WithString("path", mcpsdk.Required(), mcpsdk.Description("Path to a .json or .pflow.md workflow file"))),
		exportWorkflowHandler(env))

	srv.AddTool(mcpsdk.NewTool("browse_nodes",
		mcpsdk.WithDescription("List or search the node type catalog (builtins plus discovered MCP tools)"),
		mcpsdk.WithString("query", mcpsdk.Description("Optional substring filter over node key/description"))),
		browseNodesHandler(env))
}
