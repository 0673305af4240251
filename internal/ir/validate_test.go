package ir

import (
	"testing"

	"github.com/pflow-dev/pflow-core/internal/pflowerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wf(nodes []Node, edges []Edge) *Workflow {
	w := &Workflow{IRVersion: "0.1.0", Name: "t", Nodes: nodes, Edges: edges}
	w.Normalize()
	return w
}

func TestValidate_DetectsDuplicateNodeID(t *testing.T) {
	w := wf([]Node{{ID: "a", Type: "t"}, {ID: "a", Type: "t"}}, nil)
	err := Validate(w, nil)
	require.Error(t, err)
	assert.True(t, pflowerr.Is(err, pflowerr.CodeIRSchemaError))
}

func TestValidate_DetectsUnknownEdgeEndpoint(t *testing.T) {
	w := wf([]Node{{ID: "a", Type: "t"}}, []Edge{{From: "a", To: "missing"}})
	err := Validate(w, nil)
	require.Error(t, err)
	assert.True(t, pflowerr.Is(err, pflowerr.CodeIRReferenceError))
}

func TestValidate_DetectsCycle(t *testing.T) {
	w := wf(
		[]Node{{ID: "a", Type: "t"}, {ID: "b", Type: "t"}},
		[]Edge{{From: "a", To: "b"}, {From: "b", To: "a"}},
	)
	err := Validate(w, nil)
	require.Error(t, err)
	assert.True(t, pflowerr.Is(err, pflowerr.CodeIRCycleError))
}

func TestValidate_AcceptsLinearGraph(t *testing.T) {
	w := wf(
		[]Node{{ID: "a", Type: "t"}, {ID: "b", Type: "t"}, {ID: "c", Type: "t"}},
		[]Edge{{From: "a", To: "b"}, {From: "b", To: "c"}},
	)
	assert.NoError(t, Validate(w, nil))
}

type stubResolver struct{ known map[string]bool }

func (s stubResolver) Resolves(t string) bool { return s.known[t] }

func TestValidate_RegistryMissWhenResolverRejectsType(t *testing.T) {
	w := wf([]Node{{ID: "a", Type: "unknown-type"}}, nil)
	err := Validate(w, stubResolver{known: map[string]bool{}})
	require.Error(t, err)
	assert.True(t, pflowerr.Is(err, pflowerr.CodeRegistryMiss))
}

func TestValidate_InputNodeNamespaceCollision(t *testing.T) {
	w := wf([]Node{{ID: "topic", Type: "t"}}, nil)
	w.Inputs = map[string]InputSpec{"topic": {Type: "string"}}
	err := Validate(w, nil)
	require.Error(t, err)
	assert.True(t, pflowerr.Is(err, pflowerr.CodeIRSchemaError))
}
