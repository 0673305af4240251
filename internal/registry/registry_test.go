package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetFindsVirtualEntry(t *testing.T) {
	r := New(Settings{})
	r.RegisterVirtual("mcp-search-lookup", InterfaceSpec{Description: "looks things up"}, "internal/mcp.Node")

	e, ok := r.Get("mcp-search-lookup")
	require.True(t, ok)
	assert.True(t, e.IsVirtual())
	assert.Equal(t, VirtualMCPFilePath, e.FilePath)
}

func TestRegistry_LoadAppliesDenyFilter(t *testing.T) {
	r := New(Settings{Deny: []string{"mcp-*"}})
	r.RegisterVirtual("mcp-search-lookup", InterfaceSpec{}, "internal/mcp.Node")

	filtered := r.Load(false)
	assert.NotContains(t, filtered.Entries, "mcp-search-lookup")

	unfiltered := r.Load(true)
	assert.Contains(t, unfiltered.Entries, "mcp-search-lookup")
}

func TestRegistry_LoadAppliesAllowlist(t *testing.T) {
	r := New(Settings{Allow: []string{"http-*"}})
	r.RegisterVirtual("mcp-search-lookup", InterfaceSpec{}, "internal/mcp.Node")

	filtered := r.Load(false)
	assert.NotContains(t, filtered.Entries, "mcp-search-lookup")
}

func TestRegistry_SearchMatchesKeyOrDescription(t *testing.T) {
	r := New(Settings{})
	r.RegisterVirtual("mcp-weather-forecast", InterfaceSpec{Description: "fetches a forecast"}, "internal/mcp.Node")

	results := r.Search("forecast")
	require.Len(t, results, 1)
	assert.Equal(t, "mcp-weather-forecast", results[0].Key)
}

func TestRegistry_TestNodesHiddenUnlessEnabled(t *testing.T) {
	r := New(Settings{})
	r.RegisterVirtual("test-echo", InterfaceSpec{}, "internal/nodes/testnodes.Echo")

	hidden := r.Load(false)
	assert.NotContains(t, hidden.Entries, "test-echo")

	enabled := New(Settings{TestNodesEnabled: true})
	enabled.RegisterVirtual("test-echo", InterfaceSpec{}, "internal/nodes/testnodes.Echo")
	shown := enabled.Load(false)
	assert.Contains(t, shown.Entries, "test-echo")
}

func TestRegistry_ResolvesImplementsIRTypeResolver(t *testing.T) {
	r := New(Settings{})
	r.RegisterVirtual("mcp-a-b", InterfaceSpec{}, "internal/mcp.Node")
	assert.True(t, r.Resolves("mcp-a-b"))
	assert.False(t, r.Resolves("unknown-type"))
}
