package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceHash_StableAcrossCalls(t *testing.T) {
	h1 := SourceHash()
	h2 := SourceHash()
	assert.Equal(t, h1, h2)
}

func TestSourceHash_ChangesWhenBuiltinsChange(t *testing.T) {
	before := SourceHash()
	MustRegisterBuiltin(Entry{Key: "cache-test-node-a", ClassName: "A", FilePath: "a.go"})
	after := SourceHash()
	assert.NotEqual(t, before, after)
}

func TestSaveCache_LoadCache_RoundTrip(t *testing.T) {
	MustRegisterBuiltin(Entry{Key: "cache-test-node-b", ClassName: "B", FilePath: "b.go"})

	dir := t.TempDir()
	path := CachePath(dir)

	require.NoError(t, SaveCache(path))

	entries, ok := LoadCache(path)
	require.True(t, ok)
	assert.Contains(t, entries, "cache-test-node-b")
}

func TestLoadCache_MissingFile(t *testing.T) {
	_, ok := LoadCache(filepath.Join(t.TempDir(), "nope.json"))
	assert.False(t, ok)
}

func TestLoadCache_StaleHashRejected(t *testing.T) {
	dir := t.TempDir()
	path := CachePath(dir)
	require.NoError(t, SaveCache(path))

	MustRegisterBuiltin(Entry{Key: "cache-test-node-c", ClassName: "C", FilePath: "c.go"})

	_, ok := LoadCache(path)
	assert.False(t, ok)
}
