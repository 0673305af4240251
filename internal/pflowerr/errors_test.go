package pflowerr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIs_MatchesWrappedError(t *testing.T) {
	base := IRCycleError("a -> b -> a")
	wrapped := fmt.Errorf("compiling graph: %w", base)
	assert.True(t, Is(wrapped, CodeIRCycleError))
	assert.False(t, Is(wrapped, CodeIRSchemaError))
}

func TestRegistryMissError_CarriesHintFromSuggestions(t *testing.T) {
	err := RegistryMissError("htp-request", []string{"http-request"})
	assert.Contains(t, err.Hint, "http-request")
	assert.Equal(t, CodeRegistryMiss, err.Code)
}

func TestFromError_ClassifiesTemplateUnresolved(t *testing.T) {
	tu := NewTemplateUnresolved("${x}", "x", []string{"y", "z"})
	ne := FromError("node_a", tu)
	assert.Equal(t, CodeTemplateUnresolved, ne.Type)
	assert.Equal(t, CategoryTemplate, ne.Category)
}

func TestFromError_DefaultsToRuntimeCategoryForPlainErrors(t *testing.T) {
	ne := FromError("node_a", fmt.Errorf("boom"))
	assert.Equal(t, CodeNodeRuntimeError, ne.Type)
	assert.Equal(t, CategoryRuntime, ne.Category)
}

func TestError_UnwrapExposesCause(t *testing.T) {
	cause := fmt.Errorf("network reset")
	wrapped := Wrap(CodeNodeRuntimeError, CategoryNetwork, cause, "calling tool %s", "fetch")
	require.ErrorIs(t, wrapped, cause)
}
