package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresIRVersionWhenNotDraft(t *testing.T) {
	src := `{"name":"x","nodes":[],"edges":[]}`
	_, err := Load(strings.NewReader(src), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ir_version")
}

func TestLoad_DraftDefaultsIRVersionAndEdges(t *testing.T) {
	src := `{"name":"x","nodes":[]}`
	w, err := Load(strings.NewReader(src), true)
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", w.IRVersion)
	assert.Empty(t, w.Edges)
}

func TestLoad_RejectsUnknownTopLevelKey(t *testing.T) {
	src := `{"ir_version":"0.1.0","name":"x","nodes":[],"edges":[],"bogus":1}`
	_, err := Load(strings.NewReader(src), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestLoad_NormalizesEdgeActionDefault(t *testing.T) {
	src := `{"ir_version":"0.1.0","name":"x","nodes":[{"id":"a","type":"t"},{"id":"b","type":"t"}],"edges":[{"from":"a","to":"b"}]}`
	w, err := Load(strings.NewReader(src), false)
	require.NoError(t, err)
	require.Len(t, w.Edges, 1)
	assert.Equal(t, DefaultAction, w.Edges[0].Action)
}

func TestLoad_PermitsUnknownParamsAndOutputKeys(t *testing.T) {
	src := `{"ir_version":"0.1.0","name":"x","nodes":[{"id":"a","type":"t","params":{"anything":true,"nested":{"x":1}}}],"edges":[]}`
	w, err := Load(strings.NewReader(src), false)
	require.NoError(t, err)
	assert.Equal(t, true, w.Nodes[0].Params["anything"])
}
