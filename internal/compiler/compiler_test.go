package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pflow-dev/pflow-core/internal/ir"
	"github.com/pflow-dev/pflow-core/internal/mcp"
	_ "github.com/pflow-dev/pflow-core/internal/nodes/testnodes"
	"github.com/pflow-dev/pflow-core/internal/pflowerr"
	"github.com/pflow-dev/pflow-core/internal/registry"
	"github.com/pflow-dev/pflow-core/internal/wrap"
)

func testRegistry() *registry.Registry {
	return registry.New(registry.Settings{TestNodesEnabled: true})
}

func linearWorkflow() *ir.Workflow {
	return &ir.Workflow{
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
}

func TestCompile_WiresSuccessorsAndStart(t *testing.T) {
	w := linearWorkflow()
	g, err := Compile(w, testRegistry())
	require.NoError(t, err)

	require.NotNil(t, g.Start)
	assert.Equal(t, "a", g.Start.ID)
	require.Contains(t, g.Nodes["a"].Successors, "default")
	assert.Equal(t, "b", g.Nodes["a"].Successors["default"][0].ID)
}

func TestCompile_WrapsEveryNodeAsInstrumentedRunner(t *testing.T) {
	w := linearWorkflow()
	g, err := Compile(w, testRegistry())
	require.NoError(t, err)

	// InstrumentedRunner is the outermost layer of wrapChain; Clone must
	// succeed without panicking, proving the chain is fully constructed.
	cloned := g.Nodes["a"].Runner.Clone()
	assert.NotNil(t, cloned)
}

func TestCompile_RegistryMissReturnsSuggestions(t *testing.T) {
	w := &ir.Workflow{
		IRVersion: "0.1.0",
		Name:      "typo",
		Nodes:     []ir.Node{{ID: "a", Type: "test-ecko"}},
	}
	_, err := Compile(w, testRegistry())
	require.Error(t, err)
	assert.True(t, pflowerr.Is(err, pflowerr.CodeRegistryMiss))

	var pe *pflowerr.Error
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Hint, "test-echo")
}

func TestCompile_MCPVirtualTypeInjectsServerAndTool(t *testing.T) {
	reg := testRegistry()
	reg.RegisterVirtual("mcp-fs-read_file", registry.InterfaceSpec{}, "internal/mcp.Node")

	w := &ir.Workflow{
		IRVersion: "0.1.0",
		Name:      "mcp",
		Nodes: []ir.Node{
			{ID: "a", Type: "mcp-fs-read_file", Params: map[string]interface{}{"path": "/tmp/x"}},
		},
	}
	g, err := Compile(w, reg)
	require.NoError(t, err)
	assert.Equal(t, "mcp-fs-read_file", g.Nodes["a"].Type)

	batch := g.Nodes["a"].Runner.(*wrap.InstrumentedRunner).Inner.(*wrap.BatchRunner)
	templated := batch.Inner.(*wrap.NamespacedRunner).Inner.(*wrap.TemplatedRunner)
	node, ok := templated.Inner.(*mcp.Node)
	require.True(t, ok)
	assert.Equal(t, "fs", node.Params["__mcp_server__"])
	assert.Equal(t, "read_file", node.Params["__mcp_tool__"])
	assert.Equal(t, "/tmp/x", node.Params["path"])
}

func TestCompile_MalformedMCPTypeIsSchemaError(t *testing.T) {
	reg := testRegistry()
	w := &ir.Workflow{
		IRVersion: "0.1.0",
		Name:      "mcp",
		Nodes:     []ir.Node{{ID: "a", Type: "mcp-onlyserver"}},
	}
	_, err := Compile(w, reg)
	require.Error(t, err)
	assert.True(t, pflowerr.Is(err, pflowerr.CodeIRSchemaError))
}

func TestCompile_ParamUnknownWarnsWithoutFailing(t *testing.T) {
	w := &ir.Workflow{
		IRVersion: "0.1.0",
		Name:      "warn",
		Nodes: []ir.Node{
			{ID: "a", Type: "test-echo", Params: map[string]interface{}{"value": "hi", "bogus": "x", "max_attempts": 1}},
		},
	}
	g, err := Compile(w, testRegistry())
	require.NoError(t, err)
	require.Len(t, g.Warnings, 1)
	assert.Contains(t, g.Warnings[0], "PARAM_UNKNOWN")
	assert.Contains(t, g.Warnings[0], "bogus")
}

func TestCompile_RingWithNoStartNodeIsRejectedAsCycle(t *testing.T) {
	w := &ir.Workflow{
		IRVersion: "0.1.0",
		Name:      "ring",
		Nodes: []ir.Node{
			{ID: "a", Type: "test-echo"},
			{ID: "b", Type: "test-echo"},
		},
		Edges: []ir.Edge{
			{From: "a", To: "b", Action: "default"},
			{From: "b", To: "a", Action: "default"},
		},
	}
	_, err := Compile(w, testRegistry())
	require.Error(t, err)
	assert.True(t, pflowerr.Is(err, pflowerr.CodeIRCycleError))
}

func TestCompile_AmbiguousStartNodeIsCompileError(t *testing.T) {
	w := &ir.Workflow{
		IRVersion: "0.1.0",
		Name:      "fork",
		Nodes: []ir.Node{
			{ID: "a", Type: "test-echo"},
			{ID: "b", Type: "test-echo"},
			{ID: "c", Type: "test-echo"},
		},
		Edges: []ir.Edge{
			{From: "a", To: "c", Action: "default"},
			{From: "b", To: "c", Action: "default"},
		},
	}
	_, err := Compile(w, testRegistry())
	require.Error(t, err)
	assert.True(t, pflowerr.Is(err, pflowerr.CodeCompileError))
}

func TestCompile_OutputSourceUnknownNode(t *testing.T) {
	w := &ir.Workflow{
		IRVersion: "0.1.0",
		Name:      "bad-output",
		Nodes:     []ir.Node{{ID: "a", Type: "test-echo"}},
		Outputs: map[string]ir.OutputSpec{
			"result": {Source: "${missing.value}"},
		},
	}
	_, err := Compile(w, testRegistry())
	require.Error(t, err)
	assert.True(t, pflowerr.Is(err, pflowerr.CodeIRReferenceError))
}

func TestCompile_OutputSourceReferencingDeclaredInputIsAllowed(t *testing.T) {
	w := &ir.Workflow{
		IRVersion: "0.1.0",
		Name:      "input-output",
		Nodes:     []ir.Node{{ID: "a", Type: "test-echo"}},
		Inputs: map[string]ir.InputSpec{
			"name": {Type: "string"},
		},
		Outputs: map[string]ir.OutputSpec{
			"result": {Source: "${name}"},
		},
	}
	g, err := Compile(w, testRegistry())
	require.NoError(t, err)
	assert.Equal(t, "input-output", g.Name)
}
