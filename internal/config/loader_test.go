package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	contents := "registry:\n  allow:\n    - \"http-*\"\n  testNodesEnabled: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(contents), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"http-*"}, cfg.Registry.Allow)
	assert.True(t, cfg.Registry.TestNodesEnabled)
}

func TestLoadConfig_EnvOverrideWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	contents := "registry:\n  testNodesEnabled: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(contents), 0644))

	t.Setenv("PFLOW_TEST_NODES_ENABLED", "false")
	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.False(t, cfg.Registry.TestNodesEnabled)
}
