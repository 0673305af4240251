// Package testnodes provides deterministic node types used only for
// exercising workflows under test: test-echo and test-fail. Both are
// hidden from the catalog unless internal/config.Settings.TestNodesEnabled
// (or PFLOW_TEST_NODES_ENABLED) is set, via internal/registry's test-*
// prefix gate — they exist purely to let a workflow test assert retry and
// routing behavior without depending on a real external system, the same
// role the teacher's internal/testing package's fake service doubles play.
package testnodes

import (
	"context"
	"fmt"

	"github.com/pflow-dev/pflow-core/internal/nodes"
	"github.com/pflow-dev/pflow-core/internal/registry"
	"github.com/pflow-dev/pflow-core/internal/store"
	"github.com/pflow-dev/pflow-core/internal/wrap"
)

func init() {
	nodes.Register("test-echo", registry.InterfaceSpec{
		Description: "copies its \"value\" param straight to its \"value\" output",
		Params:      []registry.FieldSpec{{Key: "value"}},
		Outputs:     []registry.FieldSpec{{Key: "value"}},
	}, "internal/nodes/testnodes.Echo", func(params map[string]interface{}) wrap.NodeRunner {
		return NewEcho(params)
	})

	nodes.Register("test-fail", registry.InterfaceSpec{
		Description: "fails its first fail_count invocations, then succeeds",
		Params: []registry.FieldSpec{
			{Key: "fail_count", Type: "number", Description: "defaults to 1"},
		},
		Outputs: []registry.FieldSpec{{Key: "attempt"}},
	}, "internal/nodes/testnodes.Fail", func(params map[string]interface{}) wrap.NodeRunner {
		return NewFail(params)
	})
}

// Echo returns its "value" param as its "value" output, unchanged.
type Echo struct {
	nodes.Base
}

// NewEcho constructs an Echo node from its raw IR params.
func NewEcho(params map[string]interface{}) *Echo { return &Echo{Base: nodes.NewBase(params)} }

func (n *Echo) Clone() wrap.NodeRunner { return &Echo{Base: nodes.NewBase(copyParams(n.Params))} }

func (n *Echo) Prep(ctx context.Context, s store.Accessor) (any, error) {
	return n.Params["value"], nil
}

func (n *Echo) Exec(ctx context.Context, prep any) (any, error) { return prep, nil }

func (n *Echo) Post(ctx context.Context, s store.Accessor, prep, exec any) (string, error) {
	s.Set("value", exec)
	return "default", nil
}

// Fail fails its Exec call on the first FailCount attempts (tracked per
// node instance, reset only by a fresh Clone) and succeeds after that —
// built to exercise spec.md's retry scenario, a fetch-style node with
// max_attempts=3 failing twice before succeeding.
type Fail struct {
	nodes.Base
	failCount int
	attempt   int
}

// NewFail constructs a Fail node from its raw IR params.
func NewFail(params map[string]interface{}) *Fail {
	f := &Fail{Base: nodes.NewBase(params)}
	f.failCount = 1
	if v, ok := params["fail_count"]; ok {
		if n, ok := v.(float64); ok {
			f.failCount = int(n)
		} else if n, ok := v.(int); ok {
			f.failCount = n
		}
	}
	return f
}

func (n *Fail) Clone() wrap.NodeRunner {
	return &Fail{Base: nodes.NewBase(copyParams(n.Params)), failCount: n.failCount}
}

func (n *Fail) Prep(ctx context.Context, s store.Accessor) (any, error) { return nil, nil }

func (n *Fail) Exec(ctx context.Context, prep any) (any, error) {
	n.attempt++
	if n.attempt <= n.failCount {
		return nil, fmt.Errorf("test-fail: attempt %d of %d configured failures", n.attempt, n.failCount)
	}
	return n.attempt, nil
}

func (n *Fail) Post(ctx context.Context, s store.Accessor, prep, exec any) (string, error) {
	s.Set("attempt", exec)
	return "default", nil
}

func copyParams(src map[string]interface{}) map[string]interface{} {
	cp := make(map[string]interface{}, len(src))
	for k, v := range src {
		cp[k] = v
	}
	return cp
}
