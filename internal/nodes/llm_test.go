package nodes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pflow-dev/pflow-core/internal/store"
	"github.com/pflow-dev/pflow-core/internal/trace"
)

type fakeCompleter struct {
	completion Completion
	err        error
}

func (f *fakeCompleter) Complete(ctx context.Context, model, system, prompt string) (Completion, error) {
	return f.completion, f.err
}

func TestLLMNode_PrepRequiresPrompt(t *testing.T) {
	n := NewLLMNode(map[string]interface{}{})
	_, err := n.Prep(context.Background(), store.New(nil))
	require.Error(t, err)
}

func TestLLMNode_ExecWithoutCompleterFails(t *testing.T) {
	n := NewLLMNode(map[string]interface{}{"prompt": "hi"})
	_, err := n.Exec(context.Background(), llmPrep{prompt: "hi"})
	require.Error(t, err)
}

func TestLLMNode_ExecAndPostRoundTrip(t *testing.T) {
	n := NewLLMNode(map[string]interface{}{"prompt": "hi"}).WithCompleter(&fakeCompleter{
		completion: Completion{Text: "hello back", PromptTokens: 3, CompletionTokens: 5},
	})
	s := store.New(nil)

	prep, err := n.Prep(context.Background(), s)
	require.NoError(t, err)
	exec, err := n.Exec(context.Background(), prep)
	require.NoError(t, err)
	action, err := n.Post(context.Background(), s, prep, exec)
	require.NoError(t, err)

	assert.Equal(t, "default", action)
	completion, _ := s.Get("completion")
	assert.Equal(t, "hello back", completion)
}

type recordingInterceptor struct {
	calls []trace.LLMCall
}

func (r *recordingInterceptor) OnCall(ctx context.Context, call trace.LLMCall) {
	r.calls = append(r.calls, call)
}

func TestLLMNode_ReportsUsageToContextInterceptor(t *testing.T) {
	n := NewLLMNode(map[string]interface{}{"prompt": "hi", "model": "test-model"}).WithCompleter(&fakeCompleter{
		completion: Completion{Text: "x", PromptTokens: 1, CompletionTokens: 2},
	})
	interceptor := &recordingInterceptor{}
	ctx := trace.WithLLMInterceptor(context.Background(), interceptor)

	_, err := n.Exec(ctx, llmPrep{prompt: "hi", model: "test-model"})
	require.NoError(t, err)

	require.Len(t, interceptor.calls, 1)
	assert.Equal(t, 3, interceptor.calls[0].Usage.TotalTokens)
	assert.Equal(t, "hi", interceptor.calls[0].Prompt)
	assert.Equal(t, "x", interceptor.calls[0].Response)
	assert.Equal(t, "test-model", interceptor.calls[0].Model)
}

func TestLLMNode_ExecPropagatesCompleterError(t *testing.T) {
	n := NewLLMNode(map[string]interface{}{"prompt": "hi"}).WithCompleter(&fakeCompleter{
		err: errors.New("provider down"),
	})
	_, err := n.Exec(context.Background(), llmPrep{prompt: "hi"})
	require.Error(t, err)
}
