package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_SetGet(t *testing.T) {
	s := New(map[string]interface{}{"topic": "go"})
	v, ok := s.Get("topic")
	assert.True(t, ok)
	assert.Equal(t, "go", v)

	s.Set("count", 3)
	v, ok = s.Get("count")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestStore_SnapshotExcludesSystemKeysByDefault(t *testing.T) {
	s := New(nil)
	s.Set("visible", 1)
	s.Set("__cache_hits__", 5)

	snap := s.Snapshot(false)
	assert.Contains(t, snap, "visible")
	assert.NotContains(t, snap, "__cache_hits__")

	full := s.Snapshot(true)
	assert.Contains(t, full, "__cache_hits__")
}

func TestStore_NamespaceIsLazyAndStable(t *testing.T) {
	s := New(nil)
	ns1 := s.Namespace("node_a")
	ns1["result"] = "ok"
	ns2 := s.Namespace("node_a")
	assert.Equal(t, "ok", ns2["result"])
}

func TestStore_SeedIsCopiedNotAliased(t *testing.T) {
	seed := map[string]interface{}{"x": 1}
	s := New(seed)
	seed["x"] = 2
	v, _ := s.Get("x")
	assert.Equal(t, 1, v)
}
