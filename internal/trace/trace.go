// Package trace assembles and persists execution traces for a workflow
// run, grounded on the teacher's workflow.ExecutionTracker/ExecutionStorage
// pair: a Builder plays the tracker's role (accumulate step records as the
// run proceeds) and Write plays the storage role, marshaling the record
// to indented JSON and writing it with os.WriteFile rather than through
// config.Storage.
package trace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NodeRecord is one node's contribution to a trace: start/end timestamps,
// redacted input/output snapshots, the action taken, and retry attempts
// consumed — mirrors api.WorkflowExecutionStep's fields, renamed for the
// node-graph domain.
type NodeRecord struct {
	NodeID      string         `json:"node_id"`
	Type        string         `json:"type"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	DurationMs  int64          `json:"duration_ms"`
	Attempts    int            `json:"attempts"`
	Action      string         `json:"action,omitempty"`
	Status      string         `json:"status"`
	Input       map[string]any `json:"input,omitempty"`
	Output      map[string]any `json:"output,omitempty"`
	Error       string         `json:"error,omitempty"`
	LLMCalls    []LLMCall      `json:"llm_calls,omitempty"`
	MCPCalls    []MCPCall      `json:"mcp_calls,omitempty"`
}

// LLMCall is one node's LLM invocation, captured for the trace per
// spec.md's "per-LLM-call prompt/response/token-usage" and §4.8's
// "prompt, response, model id, and token-usage" requirement.
type LLMCall struct {
	Model    string `json:"model,omitempty"`
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
	Usage    Usage  `json:"usage"`
}

// MCPCall is one node's MCP tool invocation, captured for the trace per
// spec.md's "per-MCP-call server/tool/arguments/result" requirement.
type MCPCall struct {
	Server    string         `json:"server"`
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    string         `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Node execution statuses, per spec.md's per-node trace contract: every
// node on the taken path ends up "completed" or "failed"; a node never
// reached by the run's action-keyed walk is recorded as "not_executed".
const (
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
	StatusNotExecuted = "not_executed"
)

// Record is the full trace document for one workflow run.
type Record struct {
	ExecutionID  string         `json:"execution_id"`
	WorkflowName string         `json:"workflow_name"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	DurationMs   int64          `json:"duration_ms"`
	Status       string         `json:"status"`
	Inputs       map[string]any `json:"inputs,omitempty"`
	Outputs      map[string]any `json:"outputs,omitempty"`
	Error        string         `json:"error,omitempty"`
	Nodes        []NodeRecord   `json:"nodes"`
}

// Builder accumulates NodeRecords during a run. Every method holds its
// mutex, so it is safe for concurrent use.
type Builder struct {
	mu     sync.Mutex
	record Record
}

// NewBuilder starts a trace for workflowName with a fresh execution ID.
func NewBuilder(workflowName string, inputs map[string]any) *Builder {
	return &Builder{
		record: Record{
			ExecutionID:  uuid.New().String(),
			WorkflowName: workflowName,
			StartedAt:    time.Now().UTC(),
			Status:       "in_progress",
			Inputs:       Redact(inputs),
			Nodes:        []NodeRecord{},
		},
	}
}

// ExecutionID returns the run's generated identifier.
func (b *Builder) ExecutionID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.record.ExecutionID
}

// RecordNode appends a completed node record.
func (b *Builder) RecordNode(rec NodeRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record.Nodes = append(b.record.Nodes, rec)
}

// Finish marks the trace complete with its final status, outputs, and
// error (if any), and returns the finished Record for persistence.
func (b *Builder) Finish(status string, outputs map[string]any, runErr error) Record {
	b.mu.Lock()
	defer b.mu.Unlock()

	end := time.Now().UTC()
	b.record.CompletedAt = &end
	b.record.DurationMs = end.Sub(b.record.StartedAt).Milliseconds()
	b.record.Status = status
	b.record.Outputs = Redact(outputs)
	if runErr != nil {
		b.record.Error = runErr.Error()
	}
	return b.record
}

// llmInterceptorKey is the context key used to carry the active
// LLMInterceptor, per SPEC_FULL.md §4.4's "explicit over global
// monkey-patch" redesign: LLM call sites read the interceptor from ctx
// rather than a package-level var that would race across concurrent runs.
type llmInterceptorKey struct{}

// LLMInterceptor observes LLM calls made by nodes for trace/token-usage
// capture.
type LLMInterceptor interface {
	OnCall(ctx context.Context, call LLMCall)
}

// mcpInterceptorKey is the context key used to carry the active
// MCPInterceptor, mirroring llmInterceptorKey above.
type mcpInterceptorKey struct{}

// MCPInterceptor observes MCP tool calls made by nodes for trace capture.
type MCPInterceptor interface {
	OnToolCall(ctx context.Context, call MCPCall)
}

// WithMCPInterceptor attaches interceptor to ctx for the duration of the
// returned context's lifetime.
func WithMCPInterceptor(ctx context.Context, interceptor MCPInterceptor) context.Context {
	return context.WithValue(ctx, mcpInterceptorKey{}, interceptor)
}

// MCPInterceptorFromContext retrieves the active interceptor, if any.
func MCPInterceptorFromContext(ctx context.Context) (MCPInterceptor, bool) {
	v, ok := ctx.Value(mcpInterceptorKey{}).(MCPInterceptor)
	return v, ok
}

// WithLLMInterceptor attaches interceptor to ctx for the duration of the
// returned context's lifetime; callers release it by discarding the
// derived context (InstrumentedRunner scopes this to one node's Exec).
func WithLLMInterceptor(ctx context.Context, interceptor LLMInterceptor) context.Context {
	return context.WithValue(ctx, llmInterceptorKey{}, interceptor)
}

// LLMInterceptorFromContext retrieves the active interceptor, if any.
func LLMInterceptorFromContext(ctx context.Context) (LLMInterceptor, bool) {
	v, ok := ctx.Value(llmInterceptorKey{}).(LLMInterceptor)
	return v, ok
}

// builderKey carries the active trace.Builder through a run's context so
// InstrumentedRunner (internal/wrap) can record node results without a
// parameter threaded through every NodeRunner method.
type builderKey struct{}

// WithBuilder attaches b to ctx for the remainder of a run.
func WithBuilder(ctx context.Context, b *Builder) context.Context {
	return context.WithValue(ctx, builderKey{}, b)
}

// BuilderFromContext retrieves the active Builder, if any.
func BuilderFromContext(ctx context.Context) (*Builder, bool) {
	v, ok := ctx.Value(builderKey{}).(*Builder)
	return v, ok
}

// WritePath returns the destination path for a trace file, per spec.md
// §6's literal template: <debug-dir>/workflow-trace-<name>-<timestamp>.json.
func WritePath(debugDir, workflowName string, at time.Time) string {
	safe := sanitizeForFilename(workflowName)
	ts := at.UTC().Format("20060102T150405Z")
	return filepath.Join(debugDir, fmt.Sprintf("workflow-trace-%s-%s.json", safe, ts))
}

// Write persists rec as an indented JSON document at path, creating any
// missing parent directories — grounded directly on
// ExecutionStorageImpl.Store's MarshalIndent-then-write shape, minus the
// entity-type indirection since a trace is always exactly one file.
func Write(path string, rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling trace record: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating trace directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing trace file: %w", err)
	}
	return nil
}

func sanitizeForFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "workflow"
	}
	return string(out)
}
