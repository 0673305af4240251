// Package wrap implements the four behavioral layers applied to every
// compiled node — instrumentation, batch fan-out, namespacing, template
// resolution — plus the retry loop shared by the runtime executor and
// BatchRunner's per-item execution.
//
// Tools are called directly with no wrapper-chain abstraction elsewhere
// in comparable systems; this shape generalizes the layered cross-cutting
// wrappers seen in session/auth handling and execution tracking into an
// explicit, composable NodeRunner chain.
package wrap

import (
	"context"
	"time"

	"github.com/pflow-dev/pflow-core/internal/store"
)

// NodeRunner is the three-phase node contract every wrapper and concrete
// node type implements: Prep gathers what Exec needs from the store, Exec
// performs the (possibly retried) side-effecting work, Post writes results
// back into the store and selects the outgoing edge action.
//
// Exec must return a non-nil error on failure rather than encode failure
// in its result value — this is what lets ExecWithRetry engage the retry
// loop; wrapper layers must propagate that error rather than swallow it.
type NodeRunner interface {
	Prep(ctx context.Context, s store.Accessor) (any, error)
	Exec(ctx context.Context, prep any) (any, error)
	Post(ctx context.Context, s store.Accessor, prep, exec any) (action string, err error)
	Clone() NodeRunner
	RetryPolicy() RetryPolicy
}

// ParamSetter is implemented by concrete (innermost) node types so
// TemplatedRunner can hand them already-resolved, type-preserved params
// just before Prep runs.
type ParamSetter interface {
	SetParams(params map[string]interface{})
}

// RetryPolicy is a node's configured retry contract: Exec is attempted up
// to MaxAttempts times, sleeping Wait between attempts. MaxAttempts==1
// means exactly one attempt — not zero, the "subtle trap" spec.md calls
// out. The compiler rejects a configured max_attempts<=0, and
// ExecWithRetry runs a policy with MaxAttempts<=0 (e.g. a zero-value
// RetryPolicy) exactly once.
type RetryPolicy struct {
	MaxAttempts int
	Wait        time.Duration

	// ExecFallback, if set, converts the final error after retries are
	// exhausted into a (result, nil) pair instead of propagating it,
	// mirroring spec.md's exec_fallback.
	ExecFallback func(prep any, err error) (any, error)
}

// ExecWithRetry runs r.Exec up to its RetryPolicy's MaxAttempts times,
// honoring ctx cancellation between attempts. Shared by
// internal/runtime.Executor (top-level node execution) and BatchRunner
// (per-item execution), so the retry contract is enforced identically in
// both places.
func ExecWithRetry(ctx context.Context, r NodeRunner, prep any) (any, error) {
	policy := r.RetryPolicy()
	maxAttempts := policy.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastExec any
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastExec, lastErr = r.Exec(ctx, prep)
		if lastErr == nil {
			return lastExec, nil
		}
		if attempt < maxAttempts && policy.Wait > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(policy.Wait):
			}
		}
	}

	if policy.ExecFallback != nil {
		return policy.ExecFallback(prep, lastErr)
	}
	return lastExec, lastErr
}
