package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pflow-dev/pflow-core/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".pflow"
	configFileName = "config.yaml"
)

// GetDefaultConfigPathOrPanic returns ~/.pflow, the default root for
// config.yaml, the registry cache, mcp server definitions, and trace
// files.
func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}
	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads config.yaml from the given directory, falling back to
// DefaultConfig when the file does not exist.
func LoadConfig(configPath string) (PflowConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := DefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			applyEnvOverrides(&config)
			return config, nil
		}
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return PflowConfig{}, err
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return PflowConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)

	applyEnvOverrides(&config)
	return config, nil
}

// applyEnvOverrides applies PFLOW_TEST_NODES_ENABLED on top of the
// config.yaml value, following the teacher's settings-override-by-env
// convention.
func applyEnvOverrides(config *PflowConfig) {
	if v, ok := os.LookupEnv("PFLOW_TEST_NODES_ENABLED"); ok {
		config.Registry.TestNodesEnabled = v == "true" || v == "1"
	}
}
