package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pflow-dev/pflow-core/internal/compiler"
	"github.com/pflow-dev/pflow-core/internal/ir"
	_ "github.com/pflow-dev/pflow-core/internal/nodes/testnodes"
	"github.com/pflow-dev/pflow-core/internal/registry"
	"github.com/pflow-dev/pflow-core/internal/trace"
)

func testRegistry() *registry.Registry {
	return registry.New(registry.Settings{TestNodesEnabled: true})
}

func TestExecutor_Run_LinearHappyPath(t *testing.T) {
	w := &ir.Workflow{
		IRVersion: "0.1.0",
		Name:      "linear",
		Nodes: []ir.Node{
			{ID: "a", Type: "test-echo", Params: map[string]interface{}{"value": "hi"}},
			{ID: "b", Type: "test-echo", Params: map[string]interface{}{"value": "${a.value}"}},
		},
		Edges: []ir.Edge{{From: "a", To: "b", Action: "default"}},
		Outputs: map[string]ir.OutputSpec{
			"final": {Source: "${b.value}"},
		},
	}
	g, err := compiler.Compile(w, testRegistry())
	require.NoError(t, err)

	var captured trace.Record
	exec := New(func(rec trace.Record) error { captured = rec; return nil })

	result, err := exec.Run(context.Background(), g, nil)
	require.NoError(t, err)

	assert.Equal(t, "completed", result.Status)
	assert.Equal(t, "hi", result.Outputs["final"])
	assert.Equal(t, "completed", captured.Status)
	require.Len(t, captured.Nodes, 2)
	for _, n := range captured.Nodes {
		assert.Equal(t, trace.StatusCompleted, n.Status)
	}
}

func TestExecutor_Run_RetriesThenSucceeds(t *testing.T) {
	w := &ir.Workflow{
		IRVersion: "0.1.0",
		Name:      "retry",
		Nodes: []ir.Node{
			{ID: "fetch", Type: "test-fail", Params: map[string]interface{}{"fail_count": 2, "max_attempts": 3}},
		},
	}
	g, err := compiler.Compile(w, testRegistry())
	require.NoError(t, err)

	exec := New(nil)
	result, err := exec.Run(context.Background(), g, nil)
	require.NoError(t, err)
	assert.Equal(t, "completed", result.Status)
	require.Len(t, result.Trace.Nodes, 1)
	assert.Equal(t, 3, result.Trace.Nodes[0].Attempts)
}

func TestExecutor_Run_ExhaustedRetriesFailsAndStopsSuccessorNotExecuted(t *testing.T) {
	w := &ir.Workflow{
		IRVersion: "0.1.0",
		Name:      "exhausted",
		Nodes: []ir.Node{
			{ID: "fetch", Type: "test-fail", Params: map[string]interface{}{"fail_count": 5, "max_attempts": 3}},
			{ID: "summarize", Type: "test-echo", Params: map[string]interface{}{"value": "never runs"}},
		},
		Edges: []ir.Edge{{From: "fetch", To: "summarize", Action: "default"}},
	}
	g, err := compiler.Compile(w, testRegistry())
	require.NoError(t, err)

	exec := New(nil)
	result, err := exec.Run(context.Background(), g, nil)
	require.Error(t, err)
	assert.Equal(t, "failed", result.Status)
	require.NotNil(t, result.Error)
	assert.Equal(t, "fetch", result.Error.NodeID)

	var summarizeRec *trace.NodeRecord
	for i := range result.Trace.Nodes {
		if result.Trace.Nodes[i].NodeID == "summarize" {
			summarizeRec = &result.Trace.Nodes[i]
		}
	}
	require.NotNil(t, summarizeRec)
	assert.Equal(t, trace.StatusNotExecuted, summarizeRec.Status)
}

func TestExecutor_Run_InputsFlowIntoStore(t *testing.T) {
	w := &ir.Workflow{
		IRVersion: "0.1.0",
		Name:      "inputs",
		Nodes: []ir.Node{
			{ID: "a", Type: "test-echo", Params: map[string]interface{}{"value": "${name}"}},
		},
		Inputs: map[string]ir.InputSpec{"name": {Type: "string"}},
		Outputs: map[string]ir.OutputSpec{
			"greeting": {Source: "${a.value}"},
		},
	}
	g, err := compiler.Compile(w, testRegistry())
	require.NoError(t, err)

	exec := New(nil)
	result, err := exec.Run(context.Background(), g, map[string]interface{}{"name": "ada"})
	require.NoError(t, err)
	assert.Equal(t, "ada", result.Outputs["greeting"])
}

func TestExecutor_Run_NoTraceSinkDoesNotPanic(t *testing.T) {
	w := &ir.Workflow{
		IRVersion: "0.1.0",
		Name:      "no-sink",
		Nodes:     []ir.Node{{ID: "a", Type: "test-echo", Params: map[string]interface{}{"value": "x"}}},
	}
	g, err := compiler.Compile(w, testRegistry())
	require.NoError(t, err)

	exec := &Executor{}
	_, err = exec.Run(context.Background(), g, nil)
	require.NoError(t, err)
}
