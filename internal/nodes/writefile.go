package nodes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pflow-dev/pflow-core/internal/registry"
	"github.com/pflow-dev/pflow-core/internal/store"
	"github.com/pflow-dev/pflow-core/internal/wrap"
)

func init() {
	Register("write-file", registry.InterfaceSpec{
		Description: "writes a string to a file, creating parent directories as needed",
		Params: []registry.FieldSpec{
			{Key: "path", Type: "string", Required: true},
			{Key: "content", Type: "string", Required: true, Description: "written verbatim; a []byte value (e.g. from an upstream binary http response) is written byte-for-byte instead of being stringified"},
			{Key: "mode", Type: "number", Description: "octal file mode, defaults to 0644"},
		},
		Outputs: []registry.FieldSpec{
			{Key: "path", Type: "string"},
			{Key: "bytes_written", Type: "number"},
		},
	}, "internal/nodes.WriteFileNode", func(params map[string]interface{}) wrap.NodeRunner {
		return NewWriteFileNode(params)
	})
}

// WriteFileNode writes content to a file path, creating parent
// directories as needed. Its Exec fails outright (a bad path, a
// permissions error) rather than producing a routable failure result,
// since there is no partial-success shape for a write that didn't happen.
type WriteFileNode struct {
	Base
}

// NewWriteFileNode constructs a WriteFileNode from the node's raw IR
// params.
func NewWriteFileNode(params map[string]interface{}) *WriteFileNode {
	return &WriteFileNode{Base: NewBase(params)}
}

func (n *WriteFileNode) Clone() wrap.NodeRunner { return &WriteFileNode{Base: n.cloneBase()} }

type writeFilePrep struct {
	path    string
	content interface{} // []byte written verbatim; anything else is stringified
	mode    os.FileMode
}

func (n *WriteFileNode) Prep(ctx context.Context, s store.Accessor) (any, error) {
	path := n.stringParam("path", "")
	if path == "" {
		return nil, fmt.Errorf("write-file node: missing required param %q", "path")
	}
	content, ok := n.Params["content"]
	if !ok {
		return nil, fmt.Errorf("write-file node: missing required param %q", "content")
	}

	mode := os.FileMode(0644)
	if v, ok := n.Params["mode"]; ok {
		mode = os.FileMode(toInt(v, 0644))
	}

	return writeFilePrep{path: path, content: content, mode: mode}, nil
}

func (n *WriteFileNode) Exec(ctx context.Context, prepAny any) (any, error) {
	p := prepAny.(writeFilePrep)

	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("write-file node: creating parent directories: %w", err)
		}
	}
	data := contentBytes(p.content)
	if err := os.WriteFile(p.path, data, p.mode); err != nil {
		return nil, fmt.Errorf("write-file node: %w", err)
	}

	return map[string]interface{}{
		"path":          p.path,
		"bytes_written": len(data),
	}, nil
}

// contentBytes renders a resolved "content" param to the bytes actually
// written: a []byte value (e.g. a binary http response threaded through
// unchanged by the template resolver's single-reference rule) passes
// through verbatim; anything else is stringified as before.
func contentBytes(content interface{}) []byte {
	switch v := content.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		return []byte(fmt.Sprintf("%v", v))
	}
}

func (n *WriteFileNode) Post(ctx context.Context, s store.Accessor, prep, exec any) (string, error) {
	out, ok := exec.(map[string]interface{})
	if !ok {
		return "default", fmt.Errorf("write-file node: unexpected exec result type %T", exec)
	}
	for k, v := range out {
		s.Set(k, v)
	}
	return "default", nil
}
