package compiler

import (
	"fmt"
	"strings"

	"github.com/pflow-dev/pflow-core/internal/ir"
	"github.com/pflow-dev/pflow-core/internal/mcp"
	"github.com/pflow-dev/pflow-core/internal/nodes"
	"github.com/pflow-dev/pflow-core/internal/pflowerr"
	"github.com/pflow-dev/pflow-core/internal/registry"
	"github.com/pflow-dev/pflow-core/internal/wrap"
	"github.com/pflow-dev/pflow-core/pkg/logging"
)

const compilerSubsystem = "Compiler"

// mcpTypePrefix marks a virtual MCP tool type: "mcp-{server}-{tool}".
const mcpTypePrefix = "mcp-"

// suggestionCount bounds how many "did you mean" candidates a
// REGISTRY_MISS error carries.
const suggestionCount = 3

// Compile turns a validated IR workflow into an executable Graph: node
// construction (incl. virtual MCP type injection), wrapper application,
// edge wiring, and the compile-time checks this stage owns
// (REGISTRY_MISS, PARAM_UNKNOWN, OUTPUT_SOURCE_UNKNOWN, cycle detection,
// start-node determination).
func Compile(w *ir.Workflow, reg *registry.Registry) (*Graph, error) {
	w.Normalize()
	if err := ir.Validate(w, nil); err != nil {
		return nil, err
	}

	known := knownTypeIDs(reg)
	compiled := make(map[string]*CompiledNode, len(w.Nodes))
	var warnings []string

	for _, n := range w.Nodes {
		if _, ok := n.Params["max_attempts"]; ok && nodes.NewBase(n.Params).MaxAttempts <= 0 {
			return nil, pflowerr.New(pflowerr.CodeCompileError, pflowerr.CategoryCompilation,
				fmt.Sprintf("node %q: max_attempts must be at least 1", n.ID)).WithPointer("/nodes/" + n.ID)
		}
		runner, typeID, entry, err := buildRunner(n, reg, known)
		if err != nil {
			return nil, err
		}
		compiled[n.ID] = &CompiledNode{
			ID:         n.ID,
			Type:       typeID,
			Runner:     wrapChain(n, runner),
			Successors: make(map[string][]*CompiledNode),
		}
		warnings = append(warnings, paramWarnings(n, entry)...)
	}

	for _, e := range w.Edges {
		from := compiled[e.From]
		to := compiled[e.To]
		from.Successors[e.Action] = append(from.Successors[e.Action], to)
	}

	start, err := findStart(w, compiled)
	if err != nil {
		return nil, err
	}

	if err := checkOutputSources(w, compiled); err != nil {
		return nil, err
	}

	for _, msg := range warnings {
		logging.Warn(compilerSubsystem, "%s", msg)
	}

	return &Graph{
		Name:     w.Name,
		Nodes:    compiled,
		Start:    start,
		Inputs:   w.Inputs,
		Outputs:  w.Outputs,
		Warnings: warnings,
	}, nil
}

// buildRunner constructs the innermost, unwrapped NodeRunner for one IR
// node: virtual MCP types route to the universal internal/mcp.Node with
// __mcp_server__/__mcp_tool__ injected into a copy of Params; every other
// type resolves through the registry and, for builtins, internal/nodes's
// constructor registry.
func buildRunner(n ir.Node, reg *registry.Registry, known []string) (wrap.NodeRunner, string, *registry.Entry, error) {
	if strings.HasPrefix(n.Type, mcpTypePrefix) {
		parts := strings.Split(n.Type, "-")
		if len(parts) < 3 {
			return nil, "", nil, pflowerr.IRSchemaError("/nodes/"+n.ID,
				fmt.Sprintf("malformed mcp node type %q, expected mcp-{server}-{tool}", n.Type))
		}
		params := copyParams(n.Params)
		params["__mcp_server__"] = parts[1]
		params["__mcp_tool__"] = strings.Join(parts[2:], "-")
		return mcp.NewNode(params), n.Type, nil, nil
	}

	entry, ok := reg.Get(n.Type)
	if !ok {
		return nil, "", nil, pflowerr.RegistryMissError(n.Type, suggest(n.Type, known, suggestionCount)).
			WithPointer("/nodes/" + n.ID)
	}

	if entry.IsVirtual() {
		return mcp.NewNode(copyParams(n.Params)), n.Type, entry, nil
	}

	runner, ok := nodes.New(n.Type, n.Params)
	if !ok {
		return nil, "", nil, pflowerr.RegistryMissError(n.Type, suggest(n.Type, known, suggestionCount)).
			WithPointer("/nodes/" + n.ID)
	}
	return runner, n.Type, entry, nil
}

// wrapChain applies the four behavioral layers in the order spec.md
// §4.4/§4.5 require, outer to inner: Instrumented(Batch(Namespaced(Templated(inner)))).
func wrapChain(n ir.Node, inner wrap.NodeRunner) wrap.NodeRunner {
	templated := &wrap.TemplatedRunner{RawParams: n.Params, Inner: inner}
	namespaced := &wrap.NamespacedRunner{NodeID: n.ID, Inner: templated}
	batch := &wrap.BatchRunner{NodeID: n.ID, RawParams: n.Params, Inner: namespaced}
	return &wrap.InstrumentedRunner{NodeID: n.ID, Type: n.Type, Inner: batch}
}

// paramWarnings checks n's configured param keys against entry's declared
// interface, returning a PARAM_UNKNOWN message per unrecognized key.
// Warn-only per spec.md — typos shouldn't block compilation. entry is nil
// for virtual MCP nodes, which have no fixed param schema to check
// against.
func paramWarnings(n ir.Node, entry *registry.Entry) []string {
	if entry == nil || len(n.Params) == 0 {
		return nil
	}
	declared := make(map[string]struct{}, len(entry.Interface.Params))
	for _, f := range entry.Interface.Params {
		declared[f.Key] = struct{}{}
	}
	if len(declared) == 0 {
		return nil
	}
	var warnings []string
	for key := range n.Params {
		if key == "batch" || key == "max_attempts" || key == "wait" {
			continue
		}
		if _, ok := declared[key]; !ok {
			warnings = append(warnings, fmt.Sprintf(
				"PARAM_UNKNOWN: node %q (%s) sets undeclared param %q", n.ID, n.Type, key))
		}
	}
	return warnings
}

// findStart locates the workflow's unique entry point: the node with no
// incoming edges. Exactly one must exist — spec.md describes "a
// designated start node" without a separate declaration field, so the
// graph's own shape determines it; ir.Validate has already rejected
// cycles, so "no incoming edges" is well-defined for any node set with
// more than zero nodes.
func findStart(w *ir.Workflow, compiled map[string]*CompiledNode) (*CompiledNode, error) {
	hasIncoming := make(map[string]bool, len(w.Nodes))
	for _, e := range w.Edges {
		hasIncoming[e.To] = true
	}

	var starts []string
	for _, n := range w.Nodes {
		if !hasIncoming[n.ID] {
			starts = append(starts, n.ID)
		}
	}

	switch len(starts) {
	case 0:
		return nil, pflowerr.New(pflowerr.CodeCompileError, pflowerr.CategoryCompilation,
			"no start node: every node has an incoming edge")
	case 1:
		return compiled[starts[0]], nil
	default:
		return nil, pflowerr.New(pflowerr.CodeCompileError, pflowerr.CategoryCompilation,
			fmt.Sprintf("ambiguous start node: %d candidates with no incoming edge (%s)",
				len(starts), strings.Join(starts, ", ")))
	}
}

// checkOutputSources verifies every declared output's source template
// references only node ids present in the compiled graph, producing
// OUTPUT_SOURCE_UNKNOWN otherwise. It does not fully parse the template
// grammar (internal/template owns that); it only checks the leading
// "${node_id" / "${node_id.field}" reference, which is all spec.md's
// compile-time check requires.
func checkOutputSources(w *ir.Workflow, compiled map[string]*CompiledNode) error {
	for name, out := range w.Outputs {
		ref := extractLeadingReference(out.Source)
		if ref == "" {
			continue
		}
		if _, ok := compiled[ref]; !ok {
			if _, ok := w.Inputs[ref]; ok {
				continue
			}
			return pflowerr.New(pflowerr.CodeIRReferenceError, pflowerr.CategoryReference,
				fmt.Sprintf("OUTPUT_SOURCE_UNKNOWN: output %q references unknown node %q", name, ref)).
				WithPointer("/outputs/" + name)
		}
	}
	return nil
}

// extractLeadingReference pulls the first dotted-path segment out of a
// "${...}" template expression, e.g. "${fetch.body}" -> "fetch". Returns
// "" for a source with no template reference (a literal string output).
func extractLeadingReference(source string) string {
	start := strings.Index(source, "${")
	if start == -1 {
		return ""
	}
	rest := source[start+2:]
	end := strings.IndexAny(rest, "}.")
	if end == -1 {
		end = len(rest)
	}
	return strings.TrimSpace(rest[:end])
}

func knownTypeIDs(reg *registry.Registry) []string {
	entries := reg.List()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	return out
}

func copyParams(src map[string]interface{}) map[string]interface{} {
	cp := make(map[string]interface{}, len(src)+2)
	for k, v := range src {
		cp[k] = v
	}
	return cp
}
