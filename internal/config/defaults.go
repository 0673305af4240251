package config

// DefaultConfig returns the configuration used when no config.yaml is
// present: no allow/deny filtering, test nodes disabled, tracing enabled
// writing to the default debug directory.
func DefaultConfig() PflowConfig {
	return PflowConfig{
		Registry: Settings{
			TestNodesEnabled: false,
		},
		Debug: Debug{
			TraceDisabled: false,
		},
	}
}
