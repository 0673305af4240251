package wrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pflow-dev/pflow-core/internal/store"
	"github.com/pflow-dev/pflow-core/internal/trace"
)

// InstrumentedRunner is the outermost wrapper: it records one
// trace.NodeRecord per node execution (start/end, redacted input/output
// snapshots, action, retry attempts) into the trace.Builder carried on
// ctx, and installs an LLMInterceptor scoped to each Exec call — grounded
// on the teacher's workflow.ExecutionTracker (accumulate-then-finalize
// shape, continue-on-trace-failure non-raising posture).
type InstrumentedRunner struct {
	NodeID string
	Type   string
	Inner  NodeRunner

	mu        sync.Mutex
	startedAt time.Time
	attempts  int
	input     map[string]interface{}
	llmCalls  []trace.LLMCall
	mcpCalls  []trace.MCPCall
}

func (r *InstrumentedRunner) Prep(ctx context.Context, s store.Accessor) (any, error) {
	r.mu.Lock()
	r.startedAt = time.Now().UTC()
	r.attempts = 0
	r.input = s.Items()
	r.llmCalls = nil
	r.mcpCalls = nil
	r.mu.Unlock()

	return r.Inner.Prep(ctx, s)
}

func (r *InstrumentedRunner) Exec(ctx context.Context, prep any) (res any, err error) {
	r.mu.Lock()
	r.attempts++
	r.mu.Unlock()

	execCtx := ctx
	if _, ok := trace.BuilderFromContext(ctx); ok {
		collector := &usageCollector{runner: r}
		execCtx = trace.WithLLMInterceptor(execCtx, collector)
		execCtx = trace.WithMCPInterceptor(execCtx, collector)
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in node %q: %v", r.NodeID, p)
			r.record(ctx, "", err, nil)
			panic(p)
		}
	}()

	return r.Inner.Exec(execCtx, prep)
}

func (r *InstrumentedRunner) Post(ctx context.Context, s store.Accessor, prep, exec any) (string, error) {
	action, err := r.Inner.Post(ctx, s, prep, exec)
	r.record(ctx, action, err, outputSnapshot(exec))
	return action, err
}

func (r *InstrumentedRunner) Clone() NodeRunner {
	return &InstrumentedRunner{NodeID: r.NodeID, Type: r.Type, Inner: r.Inner.Clone()}
}

func (r *InstrumentedRunner) RetryPolicy() RetryPolicy {
	return r.Inner.RetryPolicy()
}

func (r *InstrumentedRunner) record(ctx context.Context, action string, recErr error, output map[string]interface{}) {
	b, ok := trace.BuilderFromContext(ctx)
	if !ok {
		return
	}
	r.mu.Lock()
	started := r.startedAt
	attempts := r.attempts
	input := r.input
	llmCalls := r.llmCalls
	mcpCalls := r.mcpCalls
	r.mu.Unlock()

	status := trace.StatusCompleted
	if recErr != nil {
		status = trace.StatusFailed
	}

	end := time.Now().UTC()
	rec := trace.NodeRecord{
		NodeID:      r.NodeID,
		Type:        r.Type,
		StartedAt:   started,
		CompletedAt: &end,
		DurationMs:  end.Sub(started).Milliseconds(),
		Attempts:    attempts,
		Action:      action,
		Status:      status,
		Input:       trace.Redact(input),
		Output:      trace.Redact(output),
		LLMCalls:    llmCalls,
		MCPCalls:    mcpCalls,
	}
	if recErr != nil {
		rec.Error = recErr.Error()
	}
	b.RecordNode(rec)
}

// outputSnapshot coerces a node's Exec result into a map for trace
// capture; node types are expected to return map[string]interface{}, but
// anything else is wrapped under a single "result" key rather than
// dropped.
func outputSnapshot(exec any) map[string]interface{} {
	if exec == nil {
		return nil
	}
	if m, ok := exec.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{"result": exec}
}

// usageCollector adapts one node's InstrumentedRunner into both
// trace.LLMInterceptor and trace.MCPInterceptor: each call a node makes
// during its (possibly retried) Exec is appended to the runner's
// llmCalls/mcpCalls, which record() folds into the node's NodeRecord
// once Prep/Exec/Post has finished, per spec.md's per-LLM-call and
// per-MCP-call trace capture requirements.
type usageCollector struct {
	runner *InstrumentedRunner
}

func (u *usageCollector) OnCall(ctx context.Context, call trace.LLMCall) {
	u.runner.mu.Lock()
	u.runner.llmCalls = append(u.runner.llmCalls, call)
	u.runner.mu.Unlock()
}

func (u *usageCollector) OnToolCall(ctx context.Context, call trace.MCPCall) {
	call.Arguments = trace.Redact(call.Arguments)
	u.runner.mu.Lock()
	u.runner.mcpCalls = append(u.runner.mcpCalls, call)
	u.runner.mu.Unlock()
}
