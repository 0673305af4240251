package wrap

import (
	"context"
	"strings"

	"github.com/pflow-dev/pflow-core/internal/store"
	"github.com/pflow-dev/pflow-core/internal/template"
)

// TemplatedRunner resolves RawParams via template.Resolver.ResolveNested
// against the current store just before Prep, handing Inner
// already-resolved, type-preserved params — spec.md §4.4 item 4. Inner
// must also implement ParamSetter; if it doesn't, resolution still runs
// (for any downstream node that reads params itself) but nothing is
// delivered, which would only happen for a misconfigured node type.
type TemplatedRunner struct {
	RawParams map[string]interface{}
	Inner     NodeRunner
}

func (t *TemplatedRunner) Prep(ctx context.Context, s store.Accessor) (any, error) {
	resolver := template.NewResolver(s).WithAvailable(nonSystemKeys(s))
	resolved, err := resolver.ResolveNested(t.RawParams)
	if err != nil {
		return nil, err
	}
	if ps, ok := t.Inner.(ParamSetter); ok {
		resolvedMap, _ := resolved.(map[string]interface{})
		ps.SetParams(resolvedMap)
	}
	return t.Inner.Prep(ctx, s)
}

func (t *TemplatedRunner) Exec(ctx context.Context, prep any) (any, error) {
	return t.Inner.Exec(ctx, prep)
}

func (t *TemplatedRunner) Post(ctx context.Context, s store.Accessor, prep, exec any) (string, error) {
	return t.Inner.Post(ctx, s, prep, exec)
}

func (t *TemplatedRunner) Clone() NodeRunner {
	return &TemplatedRunner{RawParams: t.RawParams, Inner: t.Inner.Clone()}
}

func (t *TemplatedRunner) RetryPolicy() RetryPolicy {
	return t.Inner.RetryPolicy()
}

func nonSystemKeys(s store.Accessor) []string {
	keys := s.Keys()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !strings.HasPrefix(k, "__") {
			out = append(out, k)
		}
	}
	return out
}
