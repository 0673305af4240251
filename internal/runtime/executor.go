// Package runtime walks a compiled graph to completion: the action-keyed
// successor walk, per-node Prep/Exec/Post against the shared store, trace
// persistence, and output rendering. Grounded on the teacher's
// workflow.WorkflowExecutor.ExecuteWorkflow (validate inputs → loop steps
// → resolve args → call → store result → next), generalized from a
// linear step list to a graph walk over internal/compiler.Graph's
// action-keyed successors.
package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/pflow-dev/pflow-core/internal/compiler"
	"github.com/pflow-dev/pflow-core/internal/pflowerr"
	"github.com/pflow-dev/pflow-core/internal/store"
	"github.com/pflow-dev/pflow-core/internal/template"
	"github.com/pflow-dev/pflow-core/internal/tempfile"
	"github.com/pflow-dev/pflow-core/internal/trace"
	"github.com/pflow-dev/pflow-core/internal/wrap"
	"github.com/pflow-dev/pflow-core/pkg/logging"
)

const runtimeSubsystem = "Runtime"

// plannerCacheChunksKey is the context key a repair-loop caller uses to
// inject cached planner output continuity into a run, per spec.md's
// repair-surface contract.
type plannerCacheChunksKey struct{}

// WithPlannerCacheChunks attaches previously-cached planner chunks to ctx
// for the duration of a Run; Executor.Run copies them into the store
// under "__planner_cache_chunks__" if present.
func WithPlannerCacheChunks(ctx context.Context, chunks any) context.Context {
	return context.WithValue(ctx, plannerCacheChunksKey{}, chunks)
}

func plannerCacheChunksFromContext(ctx context.Context) (any, bool) {
	v := ctx.Value(plannerCacheChunksKey{})
	return v, v != nil
}

// Result is the outcome of one workflow run.
type Result struct {
	ExecutionID string
	Status      string
	Outputs     map[string]interface{}
	Error       *pflowerr.NodeError
	Trace       trace.Record
}

// TraceSink persists a finished trace.Record; Executor calls it once the
// run has finished and logs, rather than returns, any error it reports.
// A nil sink (the Executor zero value, or New(nil)) skips persistence
// entirely.
type TraceSink func(rec trace.Record) error

// Executor runs compiled graphs. A zero-value Executor works; WriteTrace
// defaults to a no-op, matching the "tracing disabled" configuration.
type Executor struct {
	WriteTrace TraceSink
}

// New builds an Executor that writes traces via sink (e.g.
// func(rec trace.Record) error { return trace.Write(trace.WritePath(dir, rec.WorkflowName, time.Now()), rec) }).
// Pass nil to disable trace persistence.
func New(sink TraceSink) *Executor {
	return &Executor{WriteTrace: sink}
}

// Run walks g from its Start node to completion, per SPEC_FULL.md §4.7:
// clone the compiled node (honoring every wrapper's recursive Clone),
// Prep, retry-loop Exec, Post, then follow the returned action to the
// next node. ctx cancellation is observed only at node entry, never
// injected mid-Exec — an external supervisor owns the deadline.
func (e *Executor) Run(ctx context.Context, g *compiler.Graph, inputs map[string]interface{}) (*Result, error) {
	s := store.New(inputs)
	if chunks, ok := plannerCacheChunksFromContext(ctx); ok {
		s.Set("__planner_cache_chunks__", chunks)
	}

	tempFiles := tempfile.NewTracker()
	ctx = tempfile.WithTracker(ctx, tempFiles)
	defer func() {
		for _, err := range tempFiles.Cleanup() {
			logging.Warn(runtimeSubsystem, "removing temp file: %v", err)
		}
	}()

	builder := trace.NewBuilder(g.Name, inputs)
	ctx = trace.WithBuilder(ctx, builder)

	visited := make(map[string]bool, len(g.Nodes))
	var runErr error

	current := g.Start
	for current != nil {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		visited[current.ID] = true
		action, err := e.runNode(ctx, s, current)
		if err != nil {
			runErr = err
			break
		}

		nexts, ok := current.Successors[action]
		if !ok || len(nexts) == 0 {
			current = nil
			break
		}
		current = nexts[0]
	}

	e.recordUnvisited(builder, g, visited)

	status := "completed"
	var nodeErr *pflowerr.NodeError
	if runErr != nil {
		status = "failed"
		nodeErr = pflowerr.FromError(currentNodeID(current), runErr)
	}

	outputs, outErr := renderOutputs(g, s)
	if outErr != nil && runErr == nil {
		status = "failed"
		nodeErr = pflowerr.FromError("", outErr)
		runErr = outErr
	}

	rec := builder.Finish(status, outputs, runErr)
	e.persistTrace(rec)

	return &Result{
		ExecutionID: builder.ExecutionID(),
		Status:      status,
		Outputs:     outputs,
		Error:       nodeErr,
		Trace:       rec,
	}, runErr
}

func currentNodeID(n *compiler.CompiledNode) string {
	if n == nil {
		return ""
	}
	return n.ID
}

// runNode executes exactly one node: clone (so separate visits and runs
// of the compiled graph never share mutable node state; every retry of
// this visit reuses the one clone), Prep, retry-looped Exec, Post.
func (e *Executor) runNode(ctx context.Context, s store.Accessor, n *compiler.CompiledNode) (string, error) {
	runner := n.Runner.Clone()

	prep, err := runner.Prep(ctx, s)
	if err != nil {
		return "", fmt.Errorf("node %q prep: %w", n.ID, err)
	}

	execResult, err := wrap.ExecWithRetry(ctx, runner, prep)
	if err != nil {
		return "", fmt.Errorf("node %q exec: %w", n.ID, err)
	}

	action, err := runner.Post(ctx, s, prep, execResult)
	if err != nil {
		return "", fmt.Errorf("node %q post: %w", n.ID, err)
	}
	return action, nil
}

// recordUnvisited appends a not_executed trace.NodeRecord for every
// compiled node the walk never reached, per spec.md's per-node trace
// contract ("nodes off the path have status not_executed").
func (e *Executor) recordUnvisited(builder *trace.Builder, g *compiler.Graph, visited map[string]bool) {
	for id, n := range g.Nodes {
		if visited[id] {
			continue
		}
		builder.RecordNode(trace.NodeRecord{
			NodeID: id,
			Type:   n.Type,
			Status: trace.StatusNotExecuted,
		})
	}
}

func (e *Executor) persistTrace(rec trace.Record) {
	if e.WriteTrace == nil {
		return
	}
	if err := e.WriteTrace(rec); err != nil {
		logging.Warn(runtimeSubsystem, "writing trace for execution %s: %v", rec.ExecutionID, err)
	}
}

// renderOutputs evaluates every declared output's template source against
// the final store, producing the workflow's return value.
func renderOutputs(g *compiler.Graph, s store.Accessor) (map[string]interface{}, error) {
	if len(g.Outputs) == 0 {
		return nil, nil
	}
	available := make([]string, 0, len(g.Outputs))
	for _, k := range s.Keys() {
		if !strings.HasPrefix(k, "__") {
			available = append(available, k)
		}
	}
	resolver := template.NewResolver(s).WithAvailable(available)
	out := make(map[string]interface{}, len(g.Outputs))
	for name, spec := range g.Outputs {
		val, err := resolver.Resolve(spec.Source)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", name, err)
		}
		out[name] = val
	}
	return out, nil
}
