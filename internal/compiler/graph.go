// Package compiler turns a validated IR workflow into an executable
// graph: registry lookups (with fuzzy "did you mean" suggestions),
// virtual MCP type injection, the four-layer wrapper chain from
// internal/wrap, edge wiring, and the compile-time checks spec.md
// assigns this stage (REGISTRY_MISS, PARAM_UNKNOWN, OUTPUT_SOURCE_UNKNOWN,
// cycle detection).
package compiler

import (
	"github.com/pflow-dev/pflow-core/internal/ir"
	"github.com/pflow-dev/pflow-core/internal/wrap"
)

// CompiledNode is one node's fully wrapped, execution-ready runner plus
// its outgoing edges, keyed by the action label the node's Post returns.
// Mirrors spec.md's "ordered successor map keyed by action label".
type CompiledNode struct {
	ID         string
	Type       string
	Runner     wrap.NodeRunner
	Successors map[string][]*CompiledNode
}

// Graph is a compiled workflow: every node reachable from Start, plus the
// declared inputs/outputs carried through from the IR for the runtime's
// input validation and output rendering.
type Graph struct {
	Name     string
	Nodes    map[string]*CompiledNode
	Start    *CompiledNode
	Inputs   map[string]ir.InputSpec
	Outputs  map[string]ir.OutputSpec
	Warnings []string
}
