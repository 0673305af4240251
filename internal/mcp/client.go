package mcp

import (
	"context"
	"fmt"
	"sync"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pflow-dev/pflow-core/pkg/logging"
)

// protocolVersion is the MCP handshake version this client speaks,
// matching the teacher's client_stdio.go/client_sse.go constant.
const protocolVersion = "2024-11-05"

// Client is the narrow surface a workflow node needs from an MCP server
// connection — a trimmed version of the teacher's MCPClient interface
// (drops ListResources/ReadResource/ListPrompts/GetPrompt/Ping, which no
// workflow node operation in this spec uses).
type Client interface {
	Initialize(ctx context.Context) error
	Close() error
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error)
}

// baseClient provides the connection-state bookkeeping shared by every
// transport, mirroring the teacher's baseMCPClient.
type baseClient struct {
	client    mcpclient.MCPClient
	mu        sync.RWMutex
	connected bool
}

func (b *baseClient) checkConnected() error {
	if !b.connected || b.client == nil {
		return fmt.Errorf("mcp client: not connected")
	}
	return nil
}

func (b *baseClient) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.connected || b.client == nil {
		return nil
	}
	err := b.client.Close()
	b.connected = false
	b.client = nil
	return err
}

func (b *baseClient) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkConnected(); err != nil {
		return nil, err
	}
	result, err := b.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("mcp client: listing tools: %w", err)
	}
	return result.Tools, nil
}

func (b *baseClient) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkConnected(); err != nil {
		return nil, err
	}
	result, err := b.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	if err != nil {
		return nil, fmt.Errorf("mcp client: calling tool %q: %w", name, err)
	}
	return result, nil
}

func initializeRequest() mcp.InitializeRequest {
	return mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: protocolVersion,
			ClientInfo:      mcp.Implementation{Name: "pflow", Version: "0.1.0"},
			Capabilities:    mcp.ClientCapabilities{},
		},
	}
}

// StdioClient connects to a local subprocess over stdio.
type StdioClient struct {
	baseClient
	command string
	args    []string
	env     map[string]string
}

// NewStdioClient constructs a StdioClient from an expanded ServerConfig.
func NewStdioClient(cfg ServerConfig) *StdioClient {
	return &StdioClient{command: cfg.Command, args: cfg.Args, env: cfg.Env}
}

func (c *StdioClient) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected {
		return nil
	}

	envStrings := make([]string, 0, len(c.env))
	for k, v := range c.env {
		envStrings = append(envStrings, fmt.Sprintf("%s=%s", k, v))
	}

	logging.Debug("StdioClient", "starting %s %v", c.command, c.args)
	cl, err := mcpclient.NewStdioMCPClient(c.command, envStrings, c.args...)
	if err != nil {
		return fmt.Errorf("mcp stdio client: starting %s: %w", c.command, err)
	}

	if _, err := cl.Initialize(ctx, initializeRequest()); err != nil {
		_ = cl.Close()
		return fmt.Errorf("mcp stdio client: handshake with %s: %w", c.command, err)
	}

	c.client = cl
	c.connected = true
	return nil
}

// SSEClient connects to a remote server over Server-Sent Events.
type SSEClient struct {
	baseClient
	url     string
	headers map[string]string
}

// NewSSEClient constructs an SSEClient from an expanded ServerConfig.
func NewSSEClient(cfg ServerConfig) *SSEClient {
	return &SSEClient{url: cfg.URL, headers: cfg.Headers}
}

func (c *SSEClient) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected {
		return nil
	}

	cl, err := mcpclient.NewSSEMCPClient(c.url)
	if err != nil {
		return fmt.Errorf("mcp sse client: creating client for %s: %w", c.url, err)
	}
	if err := cl.Start(ctx); err != nil {
		return fmt.Errorf("mcp sse client: starting transport for %s: %w", c.url, err)
	}
	if _, err := cl.Initialize(ctx, initializeRequest()); err != nil {
		_ = cl.Close()
		return fmt.Errorf("mcp sse client: handshake with %s: %w", c.url, err)
	}

	c.client = cl
	c.connected = true
	return nil
}

// StreamableHTTPClient connects to a remote server over streamable HTTP —
// the default remote transport per the MCP spec's current revision.
type StreamableHTTPClient struct {
	baseClient
	url     string
	headers map[string]string
}

// NewStreamableHTTPClient constructs a StreamableHTTPClient from an
// expanded ServerConfig.
func NewStreamableHTTPClient(cfg ServerConfig) *StreamableHTTPClient {
	return &StreamableHTTPClient{url: cfg.URL, headers: cfg.Headers}
}

func (c *StreamableHTTPClient) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected {
		return nil
	}

	cl, err := mcpclient.NewStreamableHttpClient(c.url)
	if err != nil {
		return fmt.Errorf("mcp streamable-http client: creating client for %s: %w", c.url, err)
	}
	if _, err := cl.Initialize(ctx, initializeRequest()); err != nil {
		_ = cl.Close()
		return fmt.Errorf("mcp streamable-http client: handshake with %s: %w", c.url, err)
	}

	c.client = cl
	c.connected = true
	return nil
}

// NewClient picks the transport ExpandServerConfig's cfg describes: a
// local subprocess when Command is set, otherwise an HTTP-reachable
// client using SSE when Type=="sse", streamable HTTP otherwise.
func NewClient(cfg ServerConfig) (Client, error) {
	if !cfg.IsRemote() {
		if cfg.Command == "" {
			return nil, fmt.Errorf("mcp client: server config has neither command nor url")
		}
		return NewStdioClient(cfg), nil
	}
	if cfg.Type == "sse" {
		return NewSSEClient(cfg), nil
	}
	return NewStreamableHTTPClient(cfg), nil
}

var (
	_ Client = (*StdioClient)(nil)
	_ Client = (*SSEClient)(nil)
	_ Client = (*StreamableHTTPClient)(nil)
)
