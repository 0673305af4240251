package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"

	"github.com/pflow-dev/pflow-core/internal/config"
	"github.com/pflow-dev/pflow-core/internal/mcp"
	"github.com/pflow-dev/pflow-core/internal/registry"
	"github.com/pflow-dev/pflow-core/pkg/logging"
)

// mcpServersFileName is the on-disk name of the MCP server catalog under a
// pflow config directory, per SPEC_FULL.md §6's `~/.pflow/mcp-servers.json`.
const mcpServersFileName = "mcp-servers.json"

func mcpServersPath(configDir string) string {
	return filepath.Join(configDir, mcpServersFileName)
}

// environment bundles the process-wide collaborators every command that
// touches workflows or nodes needs: loaded config, the filtered registry,
// and the MCP discoverer that populated its virtual entries.
type environment struct {
	cfg        config.PflowConfig
	registry   *registry.Registry
	discoverer *mcp.Discoverer
	configDir  string
}

// bootstrapEnvironment loads config.yaml, builds the filtered registry, and
// runs one MCP discovery pass against the config directory's server
// catalog — grounded on the teacher's internal/app.NewApplication
// two-phase bootstrap (logging init, then config load, then
// service/registry init), collapsed to pflow's single in-process registry
// instead of a services map.
func bootstrapEnvironment(ctx context.Context, configDir string, debug bool) (*environment, error) {
	level := logging.LevelInfo
	if debug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, os.Stderr)

	if configDir == "" {
		configDir = config.GetDefaultConfigPathOrPanic()
	}

	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	reg := registry.New(registry.Settings{
		Allow:            cfg.Registry.Allow,
		Deny:             cfg.Registry.Deny,
		TestNodesEnabled: cfg.Registry.TestNodesEnabled,
	})

	cachePath := registry.CachePath(configDir)
	if _, ok := registry.LoadCache(cachePath); !ok {
		if err := registry.SaveCache(cachePath); err != nil {
			logging.Warn("Bootstrap", "writing registry cache: %v", err)
		}
	}

	discoverer := &mcp.Discoverer{
		CatalogPath: mcpServersPath(configDir),
		CacheDir:    configDir,
		Registry:    reg,
		Verbose:     debug,
	}
	if _, err := os.Stat(discoverer.CatalogPath); err == nil {
		if err := discoverer.Discover(ctx); err != nil {
			logging.Warn("Bootstrap", "MCP discovery: %v", err)
		}
	}

	return &environment{cfg: cfg, registry: reg, discoverer: discoverer, configDir: configDir}, nil
}

// withSpinner wraps a short operation with the teacher's connect-spinner
// idiom (internal/cli/executor.go's ToolExecutor.Connect), skipped
// entirely when quiet.
func withSpinner(suffix string, quiet bool, fn func() error) error {
	if quiet {
		return fn()
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + suffix
	s.Start()
	defer s.Stop()
	return fn()
}
