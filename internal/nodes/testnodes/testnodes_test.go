package testnodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pflow-dev/pflow-core/internal/nodes"
	"github.com/pflow-dev/pflow-core/internal/store"
	"github.com/pflow-dev/pflow-core/internal/wrap"
)

func TestEcho_ReturnsValueUnchanged(t *testing.T) {
	n := NewEcho(map[string]interface{}{"value": "hi"})
	s := store.New(nil)

	prep, err := n.Prep(context.Background(), s)
	require.NoError(t, err)
	exec, err := n.Exec(context.Background(), prep)
	require.NoError(t, err)
	_, err = n.Post(context.Background(), s, prep, exec)
	require.NoError(t, err)

	v, _ := s.Get("value")
	assert.Equal(t, "hi", v)
}

func TestFail_FailsConfiguredCountThenSucceeds(t *testing.T) {
	n := NewFail(map[string]interface{}{"fail_count": float64(2)})

	_, err := n.Exec(context.Background(), nil)
	require.Error(t, err)
	_, err = n.Exec(context.Background(), nil)
	require.Error(t, err)
	result, err := n.Exec(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result)
}

func TestFail_IntegratesWithExecWithRetry(t *testing.T) {
	n := NewFail(map[string]interface{}{"fail_count": float64(2)})
	n.Base.MaxAttempts = 3

	res, err := wrap.ExecWithRetry(context.Background(), n, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res)
}

func TestRegistered_ViaConstructorRegistry(t *testing.T) {
	runner, ok := nodes.New("test-echo", map[string]interface{}{"value": 1})
	require.True(t, ok)
	_, isEcho := runner.(*Echo)
	assert.True(t, isEcho)

	runner, ok = nodes.New("test-fail", map[string]interface{}{})
	require.True(t, ok)
	_, isFail := runner.(*Fail)
	assert.True(t, isFail)
}
