package wrap

import (
	"context"

	"github.com/pflow-dev/pflow-core/internal/store"
)

// NamespacedRunner wraps the store passed to its Inner in a
// store.Namespaced view keyed by NodeID: reads pass through to the
// parent, writes to bare keys land in the node's own output namespace,
// per spec.md §4.4 item 3. Only Prep and Post see the store — Exec never
// does — so only those two are wrapped.
//
// Wrapping requires a concrete *store.Store to build on; by construction
// NamespacedRunner is always the first wrapper to touch the store that
// can do this (Instrumented and Batch forward the root store unchanged),
// so the type assertion below always succeeds for a real execution. A
// failed assertion (e.g. a test double) degrades to passing s through
// unwrapped rather than panicking.
type NamespacedRunner struct {
	NodeID string
	Inner  NodeRunner
}

func (n *NamespacedRunner) Prep(ctx context.Context, s store.Accessor) (any, error) {
	return n.Inner.Prep(ctx, n.view(s))
}

func (n *NamespacedRunner) Exec(ctx context.Context, prep any) (any, error) {
	return n.Inner.Exec(ctx, prep)
}

func (n *NamespacedRunner) Post(ctx context.Context, s store.Accessor, prep, exec any) (string, error) {
	return n.Inner.Post(ctx, n.view(s), prep, exec)
}

func (n *NamespacedRunner) Clone() NodeRunner {
	return &NamespacedRunner{NodeID: n.NodeID, Inner: n.Inner.Clone()}
}

func (n *NamespacedRunner) RetryPolicy() RetryPolicy {
	return n.Inner.RetryPolicy()
}

func (n *NamespacedRunner) view(s store.Accessor) store.Accessor {
	root, ok := s.(*store.Store)
	if !ok {
		return s
	}
	return store.NewNamespaced(root, n.NodeID)
}
