package template

import (
	"testing"

	"github.com/pflow-dev/pflow-core/internal/pflowerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapScope map[string]interface{}

func (m mapScope) Get(key string) (interface{}, bool) {
	v, ok := m[key]
	return v, ok
}

func TestResolve_SoleReferencePreservesNativeType(t *testing.T) {
	scope := mapScope{
		"count":   42,
		"enabled": true,
		"items":   []interface{}{"a", "b"},
		"payload": []byte("binary"),
	}
	r := NewResolver(scope)

	v, err := r.Resolve("${count}")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = r.Resolve("${enabled}")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = r.Resolve("${items}")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b"}, v)

	v, err = r.Resolve("${payload}")
	require.NoError(t, err)
	assert.Equal(t, []byte("binary"), v)
}

func TestResolve_MixedTextStringifiesNonStringValues(t *testing.T) {
	scope := mapScope{"count": 42, "name": "pflow"}
	r := NewResolver(scope)

	v, err := r.Resolve("total: ${count} for ${name}")
	require.NoError(t, err)
	assert.Equal(t, "total: 42 for pflow", v)
}

func TestResolve_MixedTextJSONEncodesStructuredValues(t *testing.T) {
	scope := mapScope{"items": []interface{}{"a", "b"}}
	r := NewResolver(scope)

	v, err := r.Resolve("list: ${items}")
	require.NoError(t, err)
	assert.Equal(t, `list: ["a","b"]`, v)
}

func TestResolve_RejectsBinaryInMixedText(t *testing.T) {
	scope := mapScope{"payload": []byte("binary")}
	r := NewResolver(scope)

	_, err := r.Resolve("data: ${payload}")
	require.Error(t, err)
	assert.True(t, pflowerr.Is(err, pflowerr.CodeTemplateTypeMismatch))
}

func TestResolve_DottedAndIndexedPaths(t *testing.T) {
	scope := mapScope{
		"node_a": map[string]interface{}{
			"items": []interface{}{
				map[string]interface{}{"name": "first"},
			},
		},
	}
	r := NewResolver(scope)

	v, err := r.Resolve("${node_a.items[0].name}")
	require.NoError(t, err)
	assert.Equal(t, "first", v)
}

func TestResolve_UnresolvedVariableReturnsStructuredError(t *testing.T) {
	r := NewResolver(mapScope{}).WithAvailable([]string{"topic", "count"})

	_, err := r.Resolve("${missing}")
	require.Error(t, err)

	var tu *pflowerr.TemplateUnresolved
	require.ErrorAs(t, err, &tu)
	assert.Equal(t, "missing", tu.Variable)
	assert.Equal(t, []string{"count", "topic"}, tu.AvailableVariables)
}

func TestResolve_NoReferencesPassesThroughUnchanged(t *testing.T) {
	r := NewResolver(mapScope{})
	v, err := r.Resolve("plain text")
	require.NoError(t, err)
	assert.Equal(t, "plain text", v)
}

func TestResolveNested_WalksMapsAndSlicesLeavingScalarsAlone(t *testing.T) {
	scope := mapScope{"x": 7}
	r := NewResolver(scope)

	in := map[string]interface{}{
		"a": "${x}",
		"b": []interface{}{"${x}", "literal"},
		"c": 9,
	}
	out, err := r.ResolveNested(in)
	require.NoError(t, err)

	m := out.(map[string]interface{})
	assert.Equal(t, 7, m["a"])
	assert.Equal(t, 9, m["c"])
	list := m["b"].([]interface{})
	assert.Equal(t, 7, list[0])
	assert.Equal(t, "literal", list[1])
}

func TestResolver_ScopeOrderFirstMatchWins(t *testing.T) {
	inputs := mapScope{"topic": "from-inputs"}
	context := mapScope{"topic": "from-context"}
	r := NewResolver(inputs, context)

	v, err := r.Resolve("${topic}")
	require.NoError(t, err)
	assert.Equal(t, "from-inputs", v)
}
