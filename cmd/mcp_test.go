package cmd

import (
	"testing"

	"github.com/pflow-dev/pflow-core/internal/mcp"
)

func TestLoadOrEmptyCatalog_MissingFile(t *testing.T) {
	configDir := t.TempDir()
	cat, err := loadOrEmptyCatalog(configDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.MCPServers == nil || len(cat.MCPServers) != 0 {
		t.Errorf("expected an empty server map, got %v", cat.MCPServers)
	}
}

func TestSaveCatalog_RoundTrip(t *testing.T) {
	configDir := t.TempDir()
	cat := mcp.ServerCatalog{MCPServers: map[string]mcp.ServerConfig{
		"local-shell": {Command: "pflow-node-shell", Args: []string{"--verbose"}},
	}}

	if err := saveCatalog(configDir, cat); err != nil {
		t.Fatalf("saving catalog: %v", err)
	}

	loaded, err := loadOrEmptyCatalog(configDir)
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	server, ok := loaded.MCPServers["local-shell"]
	if !ok {
		t.Fatalf("expected local-shell entry to round-trip, got %v", loaded.MCPServers)
	}
	if server.Command != "pflow-node-shell" {
		t.Errorf("expected command %q, got %q", "pflow-node-shell", server.Command)
	}
}

func TestMCPTransportLabel(t *testing.T) {
	if got := mcpTransportLabel(mcp.ServerConfig{Type: "sse"}); got != "sse" {
		t.Errorf("expected sse, got %q", got)
	}
	if got := mcpTransportLabel(mcp.ServerConfig{}); got != "http" {
		t.Errorf("expected default http, got %q", got)
	}
}
