// Package config provides configuration loading and generic entity
// storage for pflow.
//
// # Configuration
//
// Settings are loaded from ~/.pflow/config.yaml via LoadConfig, falling
// back to DefaultConfig when the file is absent. The registry.allow/
// registry.deny glob lists and registry.testNodesEnabled flag control
// internal/registry filtering; PFLOW_TEST_NODES_ENABLED overrides the
// latter at load time.
//
// # Entity Storage
//
// Storage provides generic YAML-based persistence rooted at a single
// configuration directory (~/.pflow by default), one file per entity
// under an entityType subdirectory. The MCP server catalog
// (mcp-servers.json), the registry cache and trace files are JSON, not
// YAML, and are written directly by cmd, internal/registry and
// internal/trace rather than through Storage.
package config
