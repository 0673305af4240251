package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# Research Digest

Summarizes the day's top stories on a topic.

## Inputs

### topic
- type: string
- required: true
- description: subject to research

## Steps

### fetch
- type: http-request
- url: https://example.com/search

### summarize
- type: llm-complete

` + "```prompt" + `
Summarize: ${fetch.body}
` + "```" + `

## Outputs

- summary: ${summarize.result}
`

func TestParse_TitleAndDescription(t *testing.T) {
	w, err := Parse(sample)
	require.NoError(t, err)
	assert.Equal(t, "Research Digest", w.Name)
	assert.Contains(t, w.Description, "Summarizes the day's top stories")
}

func TestParse_InputsSection(t *testing.T) {
	w, err := Parse(sample)
	require.NoError(t, err)
	topic, ok := w.Inputs["topic"]
	require.True(t, ok)
	assert.Equal(t, "string", topic.Type)
	assert.True(t, topic.Required)
	assert.Equal(t, "subject to research", topic.Description)
}

func TestParse_StepsAndFencedPromptBlock(t *testing.T) {
	w, err := Parse(sample)
	require.NoError(t, err)
	require.Len(t, w.Nodes, 2)
	assert.Equal(t, "fetch", w.Nodes[0].ID)
	assert.Equal(t, "http-request", w.Nodes[0].Type)
	assert.Equal(t, "summarize", w.Nodes[1].ID)
	assert.Equal(t, "llm-complete", w.Nodes[1].Type)
	assert.Contains(t, w.Nodes[1].Params["prompt"], "${fetch.body}")
}

func TestParse_ImplicitSequentialEdges(t *testing.T) {
	w, err := Parse(sample)
	require.NoError(t, err)
	require.Len(t, w.Edges, 1)
	assert.Equal(t, "fetch", w.Edges[0].From)
	assert.Equal(t, "summarize", w.Edges[0].To)
	assert.Equal(t, "default", w.Edges[0].Action)
}

func TestParse_OutputsSection(t *testing.T) {
	w, err := Parse(sample)
	require.NoError(t, err)
	out, ok := w.Outputs["summary"]
	require.True(t, ok)
	assert.Equal(t, "${summarize.result}", out.Source)
}

const explicitEdges = `# Branch

## Steps

### a
- type: noop

### b
- type: noop

### c
- type: noop

### edges

` + "```yaml" + `
- from: a
  to: b
  action: success
- from: a
  to: c
  action: failure
` + "```" + `
`

func TestParse_ExplicitEdgesOverrideImplicit(t *testing.T) {
	w, err := Parse(explicitEdges)
	require.NoError(t, err)
	require.Len(t, w.Edges, 2)
	assert.Equal(t, "success", w.Edges[0].Action)
	assert.Equal(t, "failure", w.Edges[1].Action)
}

const batchSample = `# Batch Example

## Steps

### fanout
- type: http-request

` + "```yaml batch" + `
items: ${urls}
as: url
parallel: true
max_concurrent: 3
` + "```" + `
`

func TestParse_YAMLBatchBlock(t *testing.T) {
	w, err := Parse(batchSample)
	require.NoError(t, err)
	require.Len(t, w.Nodes, 1)
	batch, ok := w.Nodes[0].Params["batch"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "${urls}", batch["items"])
	assert.Equal(t, "url", batch["as"])
	assert.Equal(t, true, batch["parallel"])
	assert.Equal(t, 3, batch["max_concurrent"])
}
