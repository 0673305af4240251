package trace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_FinishProducesRedactedRecord(t *testing.T) {
	b := NewBuilder("fetch-and-summarize", map[string]any{"api_key": "sk-123", "url": "https://example.com"})
	b.RecordNode(NodeRecord{NodeID: "fetch", Type: "http", Attempts: 1, Action: "default"})

	rec := b.Finish("completed", map[string]any{"summary": "ok"}, nil)

	assert.Equal(t, "completed", rec.Status)
	assert.Equal(t, redactedPlaceholder, rec.Inputs["api_key"])
	assert.Equal(t, "https://example.com", rec.Inputs["url"])
	require.Len(t, rec.Nodes, 1)
	assert.Equal(t, "fetch", rec.Nodes[0].NodeID)
	assert.NotEmpty(t, rec.ExecutionID)
}

func TestWritePath_FormatsFilename(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := WritePath("/tmp/debug", "My Workflow!", at)
	assert.Equal(t, filepath.Join("/tmp/debug", "workflow-trace-My_Workflow_-20260102T030405Z.json"), p)
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "trace.json")

	rec := Record{ExecutionID: "exec-1", WorkflowName: "wf", Status: "completed", Nodes: []NodeRecord{}}
	require.NoError(t, Write(path, rec))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "exec-1")
}

func TestRedact_HandlesNestedAndBinary(t *testing.T) {
	in := map[string]any{
		"password": "hunter2",
		"nested":   map[string]any{"token": "abc", "ok": "fine"},
		"blob":     []byte{1, 2, 3, 4},
		"list":     []any{map[string]any{"secret": "x"}, "plain"},
	}
	out := Redact(in)
	assert.Equal(t, redactedPlaceholder, out["password"])
	assert.Equal(t, redactedPlaceholder, out["nested"].(map[string]any)["token"])
	assert.Equal(t, "fine", out["nested"].(map[string]any)["ok"])
	assert.Equal(t, "<binary data: 4 bytes>", out["blob"])
	assert.Equal(t, redactedPlaceholder, out["list"].([]any)[0].(map[string]any)["secret"])
}

func TestUsageFrom_UnknownShapeReturnsZero(t *testing.T) {
	assert.Equal(t, Usage{}, UsageFrom("not a usage-bearing type"))
}
