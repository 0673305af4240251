package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcpsdk "github.com/mark3labs/mcp-go/mcp"

	"github.com/pflow-dev/pflow-core/internal/pflowerr"
	"github.com/pflow-dev/pflow-core/internal/store"
	"github.com/pflow-dev/pflow-core/internal/trace"
	"github.com/pflow-dev/pflow-core/internal/wrap"
)

// reservedParamKeys are injected by internal/compiler and never forwarded
// as tool call arguments.
const (
	serverParamKey = "__mcp_server__"
	toolParamKey   = "__mcp_tool__"
)

// Node is the single universal workflow node for every MCP tool: the
// compiler instantiates one per "mcp-{server}-{tool}" IR node type,
// injecting __mcp_server__/__mcp_tool__ into its Params so one Go type
// can stand in for an unbounded, discovery-time-determined set of tools.
// Grounded on the teacher's internal/metatools.Adapter (a single handler
// fronting many underlying tools) rather than on its MCPClient callers
// directly, since those assume a long-lived aggregator connection — this
// node instead owns a short connect-call-disconnect lifecycle per Exec,
// per spec.md §4.6.
type Node struct {
	Params map[string]interface{}
	server string
	tool   string

	newClient func(cfg ServerConfig) (Client, error)
}

// NewNode constructs a Node from the compiler-injected params. params
// must carry __mcp_server__ and __mcp_tool__; internal/compiler guarantees
// this for every "mcp-*" node type it builds.
func NewNode(params map[string]interface{}) *Node {
	n := &Node{Params: params, newClient: NewClient}
	if s, ok := params[serverParamKey].(string); ok {
		n.server = s
	}
	if t, ok := params[toolParamKey].(string); ok {
		n.tool = t
	}
	return n
}

// SetParams implements wrap.ParamSetter: TemplatedRunner hands Node its
// already-resolved params just before Prep runs. The compiler's raw
// params do not include the two reserved keys, so server and tool keep
// the values NewNode read unless params carries them.
func (n *Node) SetParams(params map[string]interface{}) {
	n.Params = params
	if s, ok := params[serverParamKey].(string); ok {
		n.server = s
	}
	if t, ok := params[toolParamKey].(string); ok {
		n.tool = t
	}
}

// Clone returns an independent Node for a fresh invocation (e.g. one
// BatchRunner item), with its own params map.
func (n *Node) Clone() wrap.NodeRunner {
	cp := make(map[string]interface{}, len(n.Params))
	for k, v := range n.Params {
		cp[k] = v
	}
	return &Node{Params: cp, server: n.server, tool: n.tool, newClient: n.newClient}
}

// RetryPolicy is fixed at exactly one attempt regardless of any
// max_attempts/wait param the IR node carries: a tool call that starts
// and stops a subprocess (or opens a remote connection) per invocation is
// not safe to blindly retry without the tool's own idempotence guarantee,
// which this node has no way to know — spec.md §4.6.
func (n *Node) RetryPolicy() wrap.RetryPolicy {
	return wrap.RetryPolicy{MaxAttempts: 1}
}

type mcpPrep struct {
	server string
	tool   string
	args   map[string]interface{}
}

// Prep resolves the target server/tool and builds the tool call argument
// map from every param key except the two reserved ones and the retry
// keys a user might still set out of habit (harmless here since
// RetryPolicy ignores them, but they're not meaningful tool arguments).
func (n *Node) Prep(ctx context.Context, s store.Accessor) (any, error) {
	if n.server == "" || n.tool == "" {
		return nil, fmt.Errorf("mcp node: missing server/tool (want %q/%q params)", serverParamKey, toolParamKey)
	}

	args := make(map[string]interface{}, len(n.Params))
	for k, v := range n.Params {
		switch k {
		case serverParamKey, toolParamKey, "max_attempts", "wait", "batch":
			continue
		}
		args[k] = v
	}

	return mcpPrep{server: n.server, tool: n.tool, args: args}, nil
}

// Exec bridges synchronously to the async MCP SDK: start the server,
// call the tool, stop the server. One call, one subprocess lifecycle —
// no connection pooling or reuse across invocations, per spec.md §4.6.
func (n *Node) Exec(ctx context.Context, prepAny any) (any, error) {
	p := prepAny.(mcpPrep)

	cfg, ok := ServerConfigFor(p.server)
	if !ok {
		return nil, pflowerr.New(pflowerr.CodeMCPProtocolError, pflowerr.CategoryTool,
			fmt.Sprintf("mcp node: unknown server %q (not in discovered catalog)", p.server))
	}
	cfg = ExpandServerConfig(cfg)

	client, err := n.client(cfg)
	if err != nil {
		return nil, pflowerr.Wrap(pflowerr.CodeMCPProtocolError, pflowerr.CategoryTool, err,
			"mcp node: constructing client for server %q", p.server)
	}

	if err := client.Initialize(ctx); err != nil {
		return nil, pflowerr.Wrap(pflowerr.CodeMCPProtocolError, pflowerr.CategoryTool, err,
			"mcp node: starting server %q", p.server)
	}
	defer client.Close()

	result, callErr := client.CallTool(ctx, p.tool, p.args)
	recordMCPCall(ctx, p, result, callErr)
	if callErr != nil {
		return nil, pflowerr.Wrap(pflowerr.CodeMCPProtocolError, pflowerr.CategoryTool, callErr,
			"mcp node: calling tool %q on server %q", p.tool, p.server)
	}
	return result, nil
}

// recordMCPCall reports one tool invocation to the active
// trace.MCPInterceptor (if any), per spec.md's "per-MCP-call
// server/tool/arguments/result" trace requirement.
func recordMCPCall(ctx context.Context, p mcpPrep, result *mcpsdk.CallToolResult, callErr error) {
	interceptor, ok := trace.MCPInterceptorFromContext(ctx)
	if !ok {
		return
	}
	call := trace.MCPCall{Server: p.server, Tool: p.tool, Arguments: p.args}
	if callErr != nil {
		call.Error = callErr.Error()
	} else {
		call.Result = mcpResultSummary(result)
	}
	interceptor.OnToolCall(ctx, call)
}

// mcpResultSummary renders a tool result to a single string for the
// trace: structured content (JSON-marshaled) takes priority, then plain
// text content, mirroring Post's own priority chain.
func mcpResultSummary(result *mcpsdk.CallToolResult) string {
	if result == nil {
		return ""
	}
	if result.StructuredContent != nil {
		if data, err := json.Marshal(result.StructuredContent); err == nil {
			return string(data)
		}
	}
	return textContentOf(result)
}

func (n *Node) client(cfg ServerConfig) (Client, error) {
	if n.newClient != nil {
		return n.newClient(cfg)
	}
	return NewClient(cfg)
}

// Post extracts the tool result using the priority chain spec.md §4.6
// requires: structured content first, then the error flag, then plain
// text concatenation.
func (n *Node) Post(ctx context.Context, s store.Accessor, prep, exec any) (string, error) {
	result, ok := exec.(*mcpsdk.CallToolResult)
	if !ok {
		return "default", fmt.Errorf("mcp node: unexpected exec result type %T", exec)
	}

	if result.StructuredContent != nil {
		if m, ok := result.StructuredContent.(map[string]interface{}); ok {
			for k, v := range m {
				s.Set(k, v)
			}
		}
		s.Set("result", result.StructuredContent)
		return actionFor(result), nil
	}

	if result.IsError {
		msg := textContentOf(result)
		s.Set("error", msg)
		return "error", nil
	}

	text := textContentOf(result)
	s.Set("result", text)
	return "default", nil
}

func actionFor(result *mcpsdk.CallToolResult) string {
	if result.IsError {
		return "error"
	}
	return "default"
}

func textContentOf(result *mcpsdk.CallToolResult) string {
	var parts []string
	for _, item := range result.Content {
		if tc, ok := mcpsdk.AsTextContent(item); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

var _ wrap.NodeRunner = (*Node)(nil)
var _ wrap.ParamSetter = (*Node)(nil)
