// Package tempfile tracks scratch files created while running a workflow
// so the executor can remove them when the run ends, win or lose. It is
// a standalone leaf package (no dependency on internal/runtime or
// internal/compiler) so both the executor and individual node
// implementations — which the executor's own dependency graph runs
// through internal/compiler — can import it without a cycle.
package tempfile

import (
	"context"
	"os"
	"sync"
)

// trackerKey is the context key Executor.Run uses to make a per-run
// Tracker available to node implementations, e.g. the shell node writing
// a binary stdin payload to a temp file that it reopens as the child
// process's stdin.
type trackerKey struct{}

// Tracker records paths created for the duration of one run. Safe for
// concurrent use since a future parallel-branch executor could share one
// tracker across node goroutines.
type Tracker struct {
	mu    sync.Mutex
	paths []string
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Create writes data to a new temp file matching pattern (per
// os.CreateTemp's pattern syntax, e.g. "pflow-stdin-*.bin"), tracks it
// for later cleanup, and returns its path.
func (t *Tracker) Create(pattern string, data []byte) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return "", err
	}

	t.mu.Lock()
	t.paths = append(t.paths, f.Name())
	t.mu.Unlock()

	return f.Name(), nil
}

// Cleanup removes every tracked file and returns the removal errors
// encountered, if any — callers typically log rather than propagate
// these, matching the executor's non-raising cleanup posture.
func (t *Tracker) Cleanup() []error {
	t.mu.Lock()
	paths := t.paths
	t.paths = nil
	t.mu.Unlock()

	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errs
}

// WithTracker attaches tracker to ctx for the duration of a run.
func WithTracker(ctx context.Context, tracker *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, tracker)
}

// FromContext retrieves the tracker Executor.Run installed, if any —
// nodes exercised outside a Run (e.g. unit tests) simply get ok=false
// and fall back to not using a temp file.
func FromContext(ctx context.Context) (*Tracker, bool) {
	t, ok := ctx.Value(trackerKey{}).(*Tracker)
	return t, ok
}
