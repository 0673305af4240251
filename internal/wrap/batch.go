package wrap

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pflow-dev/pflow-core/internal/store"
	"github.com/pflow-dev/pflow-core/internal/template"
)

// FailurePolicy controls how BatchRunner handles one item's error: abort
// the whole batch, or record the error alongside the other items' results
// and keep going. Both resolve spec.md §9's "Open Question" on batch
// failure semantics — see DESIGN.md.
type FailurePolicy string

const (
	FailFast FailurePolicy = "fail-fast"
	PerItem  FailurePolicy = "per-item"
)

// BatchConfig is decoded from a node's Params["batch"] key (a fenced
// ```yaml batch``` block in markdown authoring form, or a plain JSON
// object in canonical IR).
type BatchConfig struct {
	Items         string        `yaml:"items" json:"items"`
	As            string        `yaml:"as" json:"as"`
	Parallel      bool          `yaml:"parallel" json:"parallel"`
	MaxConcurrent int           `yaml:"max_concurrent" json:"max_concurrent"`
	Policy        FailurePolicy `yaml:"policy" json:"policy"`
}

const defaultMaxConcurrent = 5

// BatchRunner activates when the node's Params carry a "batch" key.
// Absent that key it is a transparent pass-through. Present, it resolves
// Items against the store, then runs Inner's full Prep→ExecWithRetry→Post
// cycle once per item against an isolated, disposable per-item store
// (seeded from a snapshot of the real store plus the "as" binding) so
// concurrent items never race on the same map, and writes the ordered
// results into the real node's namespace under "results" — grounded on
// spec.md §9's bounded-fan-out requirement, realized with
// golang.org/x/sync/errgroup.SetLimit rather than the teacher's hand-rolled
// goroutine+sync.WaitGroup pools (internal/aggregator, internal/services).
type BatchRunner struct {
	NodeID    string
	RawParams map[string]interface{}
	Inner     NodeRunner
}

type batchPrep struct {
	cfg      BatchConfig
	items    []interface{}
	snapshot map[string]interface{}
}

type passthroughPrep struct {
	inner any
}

func (b *BatchRunner) config() (BatchConfig, bool) {
	raw, ok := b.RawParams["batch"]
	if !ok {
		return BatchConfig{}, false
	}
	cfg, ok := decodeBatchConfig(raw)
	if !ok {
		return BatchConfig{}, false
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	if cfg.Policy == "" {
		cfg.Policy = FailFast
	}
	return cfg, true
}

func (b *BatchRunner) Prep(ctx context.Context, s store.Accessor) (any, error) {
	cfg, ok := b.config()
	if !ok {
		inner, err := b.Inner.Prep(ctx, s)
		return passthroughPrep{inner: inner}, err
	}

	resolver := template.NewResolver(s).WithAvailable(nonSystemKeys(s))
	resolved, err := resolver.Resolve(cfg.Items)
	if err != nil {
		return nil, fmt.Errorf("resolving batch items %q: %w", cfg.Items, err)
	}
	items, ok := resolved.([]interface{})
	if !ok {
		return nil, fmt.Errorf("batch items %q did not resolve to a list", cfg.Items)
	}

	return batchPrep{cfg: cfg, items: items, snapshot: s.Items()}, nil
}

func (b *BatchRunner) Exec(ctx context.Context, prep any) (any, error) {
	if pt, ok := prep.(passthroughPrep); ok {
		return b.Inner.Exec(ctx, pt.inner)
	}

	bp := prep.(batchPrep)
	n := len(bp.items)
	results := make([]interface{}, n)

	runItem := func(i int) error {
		itemStore := store.New(bp.snapshot)
		itemStore.Set(bp.cfg.As, bp.items[i])

		clone := b.Inner.Clone()
		itemPrep, err := clone.Prep(ctx, itemStore)
		if err == nil {
			var itemExec any
			itemExec, err = ExecWithRetry(ctx, clone, itemPrep)
			if err == nil {
				_, err = clone.Post(ctx, itemStore, itemPrep, itemExec)
			}
		}

		if err != nil {
			if bp.cfg.Policy == PerItem {
				results[i] = map[string]interface{}{"error": err.Error()}
				return nil
			}
			return fmt.Errorf("batch item %d: %w", i, err)
		}
		results[i] = itemStore.Namespace(b.NodeID)
		return nil
	}

	if bp.cfg.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(bp.cfg.MaxConcurrent)
		for i := 0; i < n; i++ {
			i := i
			g.Go(func() error { return runItem(i) })
		}
		_ = gctx
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := 0; i < n; i++ {
			if err := runItem(i); err != nil {
				return nil, err
			}
		}
	}

	return results, nil
}

func (b *BatchRunner) Post(ctx context.Context, s store.Accessor, prep, exec any) (string, error) {
	if pt, ok := prep.(passthroughPrep); ok {
		return b.Inner.Post(ctx, s, pt.inner, exec)
	}
	// Batch sits outside NamespacedRunner, so unlike a plain node's Post
	// it must redirect into this node's namespace itself rather than
	// relying on a Namespaced view it was never handed.
	if root, ok := s.(*store.Store); ok {
		root.Namespace(b.NodeID)["results"] = exec
	} else {
		s.Set("results", exec)
	}
	return "default", nil
}

func (b *BatchRunner) Clone() NodeRunner {
	return &BatchRunner{NodeID: b.NodeID, RawParams: b.RawParams, Inner: b.Inner.Clone()}
}

func (b *BatchRunner) RetryPolicy() RetryPolicy {
	return b.Inner.RetryPolicy()
}

// decodeBatchConfig accepts both an already-typed BatchConfig (set
// directly by tests or an in-process compiler path) and the
// map[string]interface{} shape a YAML/JSON-decoded IR produces.
func decodeBatchConfig(raw interface{}) (BatchConfig, bool) {
	switch t := raw.(type) {
	case BatchConfig:
		return t, true
	case map[string]interface{}:
		cfg := BatchConfig{}
		if v, ok := t["items"].(string); ok {
			cfg.Items = v
		}
		if v, ok := t["as"].(string); ok {
			cfg.As = v
		}
		if v, ok := t["parallel"].(bool); ok {
			cfg.Parallel = v
		}
		switch v := t["max_concurrent"].(type) {
		case int:
			cfg.MaxConcurrent = v
		case int64:
			cfg.MaxConcurrent = int(v)
		case float64:
			cfg.MaxConcurrent = int(v)
		}
		if v, ok := t["policy"].(string); ok {
			cfg.Policy = FailurePolicy(v)
		}
		if cfg.Items == "" || cfg.As == "" {
			return BatchConfig{}, false
		}
		return cfg, true
	default:
		return BatchConfig{}, false
	}
}
