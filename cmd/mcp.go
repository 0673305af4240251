package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pflow-dev/pflow-core/internal/config"
	"github.com/pflow-dev/pflow-core/internal/mcp"
)

var mcpConfigPath string

// mcpCmd groups the MCP server catalog subcommands: one parent command
// with every leaf verb defined in this file.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Manage the MCP server catalog used for node discovery",
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.PersistentFlags().StringVar(&mcpConfigPath, "config-path", "", "Custom configuration directory path (defaults to ~/.pflow)")

	mcpCmd.AddCommand(mcpAddCmd, mcpListCmd, mcpRemoveCmd, mcpSyncCmd, mcpToolsCmd, mcpInfoCmd)
}

func mcpConfigDir() string {
	if mcpConfigPath != "" {
		return mcpConfigPath
	}
	return config.GetDefaultConfigPathOrPanic()
}

func loadOrEmptyCatalog(configDir string) (mcp.ServerCatalog, error) {
	path := mcpServersPath(configDir)
	if _, err := os.Stat(path); err != nil {
		return mcp.ServerCatalog{MCPServers: map[string]mcp.ServerConfig{}}, nil
	}
	return mcp.LoadCatalog(path)
}

func saveCatalog(configDir string, cat mcp.ServerCatalog) error {
	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling server catalog: %w", err)
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return os.WriteFile(mcpServersPath(configDir), data, 0644)
}

var (
	mcpAddCommand string
	mcpAddArgs    []string
	mcpAddURL     string
	mcpAddType    string
)

var mcpAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or replace an MCP server entry in the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if mcpAddCommand == "" && mcpAddURL == "" {
			return &UsageError{Err: fmt.Errorf("either --command or --url is required")}
		}

		configDir := mcpConfigDir()
		cat, err := loadOrEmptyCatalog(configDir)
		if err != nil {
			return err
		}
		if cat.MCPServers == nil {
			cat.MCPServers = map[string]mcp.ServerConfig{}
		}
		cat.MCPServers[name] = mcp.ServerConfig{
			Command: mcpAddCommand,
			Args:    mcpAddArgs,
			URL:     mcpAddURL,
			Type:    mcpAddType,
		}

		if err := saveCatalog(configDir, cat); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added MCP server %q, run `pflow mcp sync` to discover its tools\n", name)
		return nil
	},
}

func init() {
	mcpAddCmd.Flags().StringVar(&mcpAddCommand, "command", "", "Subprocess command for a stdio server")
	mcpAddCmd.Flags().StringSliceVar(&mcpAddArgs, "args", nil, "Subprocess arguments (comma-separated)")
	mcpAddCmd.Flags().StringVar(&mcpAddURL, "url", "", "Endpoint URL for a remote server")
	mcpAddCmd.Flags().StringVar(&mcpAddType, "type", "", "Remote transport: sse or http (default http)")
}

var mcpListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured MCP servers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir := mcpConfigDir()
		cat, err := loadOrEmptyCatalog(configDir)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(cat.MCPServers))
		for name := range cat.MCPServers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cfg := cat.MCPServers[name]
			if cfg.IsRemote() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s (%s)\n", name, cfg.URL, mcpTransportLabel(cfg))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s %s\n", name, cfg.Command, strings.Join(cfg.Args, " "))
			}
		}
		return nil
	},
}

func mcpTransportLabel(cfg mcp.ServerConfig) string {
	if cfg.Type != "" {
		return cfg.Type
	}
	return "http"
}

var mcpRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an MCP server from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		configDir := mcpConfigDir()
		cat, err := loadOrEmptyCatalog(configDir)
		if err != nil {
			return err
		}
		if _, ok := cat.MCPServers[name]; !ok {
			return &UsageError{Err: fmt.Errorf("no MCP server named %q", name)}
		}
		delete(cat.MCPServers, name)
		return saveCatalog(configDir, cat)
	},
}

var mcpSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Re-run MCP discovery, registering each server's tools in the node catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		var env *environment
		err := withSpinner("Discovering MCP servers...", false, func() error {
			var bootstrapErr error
			env, bootstrapErr = bootstrapEnvironment(ctx, mcpConfigDir(), false)
			return bootstrapErr
		})
		if err != nil {
			return err
		}
		entries := env.registry.List()
		count := 0
		for _, e := range entries {
			if e.IsVirtual() {
				count++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "discovered %d MCP-backed node types\n", count)
		return nil
	},
}

var mcpToolsCmd = &cobra.Command{
	Use:   "tools <server>",
	Short: "List the node types discovered for one MCP server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		server := args[0]
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		env, err := bootstrapEnvironment(ctx, mcpConfigDir(), false)
		if err != nil {
			return err
		}
		prefix := fmt.Sprintf("mcp-%s-", server)
		for _, e := range env.registry.List() {
			if strings.HasPrefix(e.Key, prefix) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.Key, e.Interface.Description)
			}
		}
		return nil
	},
}

var mcpInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show one MCP server's raw (unexpanded) configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		configDir := mcpConfigDir()
		cat, err := loadOrEmptyCatalog(configDir)
		if err != nil {
			return err
		}
		cfg, ok := cat.MCPServers[name]
		if !ok {
			return &UsageError{Err: fmt.Errorf("no MCP server named %q", name)}
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}
