// Package mcp exposes external MCP (Model Context Protocol) tools as a
// single universal workflow node, parameterized entirely by injected
// __mcp_server__/__mcp_tool__ params — directly descended from the
// teacher's internal/mcpserver package (MCPClient interface,
// Stdio/SSE/StreamableHTTP transports, JSON server-catalog config), but
// re-pointed from "aggregate servers into this process" to "invoke one
// tool from a workflow node".
package mcp

// ServerConfig describes how to reach one MCP server: either a local
// subprocess (Command/Args/Env) or a remote HTTP endpoint (URL/Headers/
// Type). Mirrors the standard `mcpServers` JSON shape every MCP host
// understands.
type ServerConfig struct {
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`

	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Type    string            `json:"type,omitempty"` // "sse" or "http"; empty + URL set defaults to streamable-http
}

// IsRemote reports whether cfg describes an HTTP-reachable server rather
// than a local subprocess.
func (cfg ServerConfig) IsRemote() bool { return cfg.URL != "" }

// ServerCatalog is the on-disk MCP server configuration file shape,
// standard across MCP hosts.
type ServerCatalog struct {
	MCPServers map[string]ServerConfig `json:"mcpServers"`
}
