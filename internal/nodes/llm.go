package nodes

import (
	"context"
	"fmt"

	"github.com/pflow-dev/pflow-core/internal/registry"
	"github.com/pflow-dev/pflow-core/internal/store"
	"github.com/pflow-dev/pflow-core/internal/trace"
	"github.com/pflow-dev/pflow-core/internal/wrap"
)

func init() {
	Register("llm", registry.InterfaceSpec{
		Description: "sends a prompt to a language model and returns its completion",
		Params: []registry.FieldSpec{
			{Key: "prompt", Type: "string", Required: true},
			{Key: "model", Type: "string"},
			{Key: "system", Type: "string"},
		},
		Outputs: []registry.FieldSpec{
			{Key: "completion", Type: "string"},
			{Key: "prompt_tokens", Type: "number"},
			{Key: "completion_tokens", Type: "number"},
		},
	}, "internal/nodes.LLMNode", func(params map[string]interface{}) wrap.NodeRunner {
		return NewLLMNode(params)
	})
}

// Completer is the one method an LLM node depends on. The concrete
// provider client is an external collaborator outside this repo's scope
// (spec.md's node business logic is explicitly out of scope); LLMNode
// only owns prompt assembly, the trace.LLMInterceptor handoff, and
// retry/output wiring, matching the teacher's pattern of depending on a
// narrow local interface (internal/client) rather than a concrete SDK
// type at the call site.
type Completer interface {
	Complete(ctx context.Context, model, system, prompt string) (Completion, error)
}

// Completion is a provider-agnostic LLM response.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// GetUsage lets Completion satisfy trace.UsageFrom's usageStruct shape
// directly, since LLMNode's Exec result is the natural value to pass
// through the interceptor.
func (c Completion) GetUsage() trace.Usage {
	return trace.Usage{
		PromptTokens:     c.PromptTokens,
		CompletionTokens: c.CompletionTokens,
		TotalTokens:      c.PromptTokens + c.CompletionTokens,
	}
}

// defaultCompleter is swapped out in tests and by whichever cmd wiring
// installs a real provider client; a nil Completer fails loudly rather
// than silently returning empty completions.
var defaultCompleter Completer

// SetDefaultCompleter installs the Completer LLMNode instances use when
// none is attached explicitly via WithCompleter.
func SetDefaultCompleter(c Completer) { defaultCompleter = c }

// LLMNode sends a single prompt to a language model. Params: prompt
// (required), model, system. Outputs: completion, prompt_tokens,
// completion_tokens.
type LLMNode struct {
	Base
	completer Completer
}

// NewLLMNode constructs an LLMNode from the node's raw IR params, using
// the process-wide default Completer.
func NewLLMNode(params map[string]interface{}) *LLMNode {
	return &LLMNode{Base: NewBase(params), completer: defaultCompleter}
}

// WithCompleter overrides the Completer for this node instance, used in
// tests to avoid a network-backed default.
func (n *LLMNode) WithCompleter(c Completer) *LLMNode {
	n.completer = c
	return n
}

func (n *LLMNode) Clone() wrap.NodeRunner {
	return &LLMNode{Base: n.cloneBase(), completer: n.completer}
}

type llmPrep struct {
	prompt string
	model  string
	system string
}

func (n *LLMNode) Prep(ctx context.Context, s store.Accessor) (any, error) {
	prompt := n.stringParam("prompt", "")
	if prompt == "" {
		return nil, fmt.Errorf("llm node: missing required param %q", "prompt")
	}
	return llmPrep{
		prompt: prompt,
		model:  n.stringParam("model", ""),
		system: n.stringParam("system", ""),
	}, nil
}

func (n *LLMNode) Exec(ctx context.Context, prepAny any) (any, error) {
	if n.completer == nil {
		return nil, fmt.Errorf("llm node: no completer configured")
	}
	p := prepAny.(llmPrep)

	completion, err := n.completer.Complete(ctx, p.model, p.system, p.prompt)
	if err != nil {
		return nil, fmt.Errorf("llm node: %w", err)
	}

	if interceptor, ok := trace.LLMInterceptorFromContext(ctx); ok {
		interceptor.OnCall(ctx, trace.LLMCall{
			Model:    p.model,
			Prompt:   p.prompt,
			Response: completion.Text,
			Usage:    trace.UsageFrom(completion),
		})
	}

	return completion, nil
}

func (n *LLMNode) Post(ctx context.Context, s store.Accessor, prep, exec any) (string, error) {
	completion, ok := exec.(Completion)
	if !ok {
		return "default", fmt.Errorf("llm node: unexpected exec result type %T", exec)
	}
	s.Set("completion", completion.Text)
	s.Set("prompt_tokens", completion.PromptTokens)
	s.Set("completion_tokens", completion.CompletionTokens)
	return "default", nil
}
