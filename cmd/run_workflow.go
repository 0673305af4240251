package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/pflow-dev/pflow-core/internal/compiler"
	"github.com/pflow-dev/pflow-core/internal/ir"
	"github.com/pflow-dev/pflow-core/internal/runtime"
	"github.com/pflow-dev/pflow-core/internal/trace"
)

// traceSinkFor builds the TraceSink an Executor should use for env: nil
// (tracing disabled) when Settings.TraceDisabled is set, otherwise a
// closure writing to <debug-dir>/workflow-trace-<name>-<timestamp>.json
// exactly as SPEC_FULL.md §4.8 describes.
func traceSinkFor(env *environment) runtime.TraceSink {
	if env.cfg.Debug.TraceDisabled {
		return nil
	}
	dir := env.cfg.Debug.Dir
	if dir == "" {
		dir = filepath.Join(env.configDir, "debug")
	}
	return func(rec trace.Record) error {
		return trace.Write(trace.WritePath(dir, rec.WorkflowName, time.Now()), rec)
	}
}

// compileWorkflow runs w through the compiler against env's registry
// without executing it — the path behind `pflow validate` and
// validate_workflow.
func compileWorkflow(env *environment, w *ir.Workflow) (*compiler.Graph, error) {
	g, err := compiler.Compile(w, env.registry)
	if err != nil {
		return nil, fmt.Errorf("compiling workflow %q: %w", w.Name, err)
	}
	return g, nil
}

// compileAndRun loads w through the compiler against env's registry and
// runs it to completion, the shared path behind `pflow run-workflow`,
// execute_workflow, and debug_workflow.
func compileAndRun(ctx context.Context, env *environment, w *ir.Workflow, inputs map[string]interface{}) (*runtime.Result, error) {
	g, err := compileWorkflow(env, w)
	if err != nil {
		return nil, err
	}

	exec := runtime.New(traceSinkFor(env))
	result, err := exec.Run(ctx, g, inputs)
	if err != nil {
		return result, fmt.Errorf("running workflow %q: %w", w.Name, err)
	}
	return result, nil
}
