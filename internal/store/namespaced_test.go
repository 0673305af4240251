package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamespaced_WritesGoToOwnNamespace(t *testing.T) {
	s := New(nil)
	n := NewNamespaced(s, "node_a")
	n.Set("result", "ok")

	_, onRoot := s.Get("result")
	assert.False(t, onRoot)

	ns := s.Namespace("node_a")
	assert.Equal(t, "ok", ns["result"])
}

func TestNamespaced_ReadsPassThroughToParentFirst(t *testing.T) {
	s := New(map[string]interface{}{"topic": "go"})
	n := NewNamespaced(s, "node_a")
	v, ok := n.Get("topic")
	assert.True(t, ok)
	assert.Equal(t, "go", v)
}

func TestNamespaced_ReadsOwnNamespaceAfterWrite(t *testing.T) {
	s := New(nil)
	n := NewNamespaced(s, "node_a")
	n.Set("result", "ok")
	v, ok := n.Get("result")
	assert.True(t, ok)
	assert.Equal(t, "ok", v)
}

func TestNamespaced_KeysUnionsParentAndOwnNamespace(t *testing.T) {
	s := New(map[string]interface{}{"topic": "go"})
	n := NewNamespaced(s, "node_a")
	n.Set("result", "ok")
	keys := n.Keys()
	assert.Contains(t, keys, "topic")
	assert.Contains(t, keys, "result")
}

func TestNamespaced_DeleteOnlyAffectsOwnNamespace(t *testing.T) {
	s := New(map[string]interface{}{"topic": "go"})
	n := NewNamespaced(s, "node_a")
	n.Delete("topic")
	_, ok := s.Get("topic")
	assert.True(t, ok, "parent key must survive a delete scoped to the node namespace")
}
