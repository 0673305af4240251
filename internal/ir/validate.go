package ir

import (
	"fmt"

	"github.com/pflow-dev/pflow-core/internal/pflowerr"
)

// TypeResolver reports whether a node type is known, used by Validate's
// second pass; the interface keeps internal/ir free of any dependency on
// internal/registry.
type TypeResolver interface {
	Resolves(nodeType string) bool
}

// Validate runs the two-pass validation spec.md's resolved Open Question
// calls for: schema shape first (handled by Load), then cross-reference
// checks (node ids, input/node name overlap, edge endpoints, node types,
// cycles) here. Template references are not resolved here; the compiler
// checks output sources against node ids. resolver may
// be nil to skip the type-resolution check (useful for IR-only tests that
// don't want to stand up a full registry).
func Validate(w *Workflow, resolver TypeResolver) error {
	ids := make(map[string]struct{}, len(w.Nodes))
	for _, n := range w.Nodes {
		if n.ID == "" {
			return pflowerr.IRSchemaError("/nodes", "node id must not be empty")
		}
		if _, dup := ids[n.ID]; dup {
			return pflowerr.IRSchemaError("/nodes", fmt.Sprintf("duplicate node id %q", n.ID))
		}
		ids[n.ID] = struct{}{}
	}

	if err := checkInputNodeDisjoint(w, ids); err != nil {
		return err
	}

	for i, e := range w.Edges {
		if _, ok := ids[e.From]; !ok {
			return pflowerr.IRReferenceError(fmt.Sprintf("edges[%d].from references unknown node %q", i, e.From))
		}
		if _, ok := ids[e.To]; !ok {
			return pflowerr.IRReferenceError(fmt.Sprintf("edges[%d].to references unknown node %q", i, e.To))
		}
	}

	if resolver != nil {
		for _, n := range w.Nodes {
			if !resolver.Resolves(n.Type) {
				return pflowerr.RegistryMissError(n.Type, nil).WithPointer("/nodes/" + n.ID)
			}
		}
	}

	for name, out := range w.Outputs {
		if out.Source == "" {
			return pflowerr.IRSchemaError("/outputs/"+name, "output source must not be empty")
		}
	}

	if err := detectCycle(w); err != nil {
		return err
	}

	return nil
}

// checkInputNodeDisjoint enforces the "inputs and node ids live in
// disjoint namespaces" invariant: a workflow author cannot name a node
// the same as a declared input, which would make ${name} ambiguous.
func checkInputNodeDisjoint(w *Workflow, nodeIDs map[string]struct{}) error {
	for name := range w.Inputs {
		if _, clash := nodeIDs[name]; clash {
			return pflowerr.IRSchemaError("/inputs/"+name, fmt.Sprintf("input name %q collides with a node id", name))
		}
	}
	return nil
}

// detectCycle performs a DFS-based cycle check over the edge list. No
// v0.1.0 edge models a retry loop, so any cycle detected here is an
// unconditional error, per spec.md's resolved Open Question.
func detectCycle(w *Workflow) error {
	adj := make(map[string][]string, len(w.Nodes))
	for _, e := range w.Edges {
		adj[e.From] = append(adj[e.From], e.To)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(w.Nodes))
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		color[id] = gray
		path = append(path, id)
		for _, next := range adj[id] {
			switch color[next] {
			case gray:
				return pflowerr.IRCycleError(fmt.Sprintf("cycle detected: %s -> %s", joinPath(path), next))
			case white:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		color[id] = black
		return nil
	}

	for _, n := range w.Nodes {
		if color[n.ID] == white {
			if err := visit(n.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += " -> "
		}
		out += p
	}
	return out
}
