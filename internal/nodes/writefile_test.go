package nodes

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pflow-dev/pflow-core/internal/store"
)

func TestWriteFileNode_PrepRequiresPathAndContent(t *testing.T) {
	n := NewWriteFileNode(map[string]interface{}{})
	_, err := n.Prep(context.Background(), store.New(nil))
	require.Error(t, err)

	n2 := NewWriteFileNode(map[string]interface{}{"path": "x"})
	_, err = n2.Prep(context.Background(), store.New(nil))
	require.Error(t, err)
}

func TestWriteFileNode_WritesFileAndCreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "out.txt")

	n := NewWriteFileNode(map[string]interface{}{"path": target, "content": "hello world"})
	s := store.New(nil)

	prep, err := n.Prep(context.Background(), s)
	require.NoError(t, err)
	exec, err := n.Exec(context.Background(), prep)
	require.NoError(t, err)
	_, err = n.Post(context.Background(), s, prep, exec)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	written, _ := s.Get("bytes_written")
	assert.Equal(t, len("hello world"), written)
}

func TestWriteFileNode_BinaryContentIsWrittenByteForByte(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.bin")
	payload := []byte{0x00, 0xff, 0x10, 0x72, 0x65}

	n := NewWriteFileNode(map[string]interface{}{"path": target, "content": payload})
	s := store.New(nil)

	prep, err := n.Prep(context.Background(), s)
	require.NoError(t, err)
	exec, err := n.Exec(context.Background(), prep)
	require.NoError(t, err)
	_, err = n.Post(context.Background(), s, prep, exec)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	written, _ := s.Get("bytes_written")
	assert.Equal(t, len(payload), written)
}
