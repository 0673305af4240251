package nodes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewBase_DefaultsMaxAttemptsToOne(t *testing.T) {
	b := NewBase(map[string]interface{}{})
	assert.Equal(t, 1, b.MaxAttempts)
	assert.Equal(t, time.Duration(0), b.Wait)
}

func TestNewBase_CoercesNumericRetryParams(t *testing.T) {
	b := NewBase(map[string]interface{}{"max_attempts": float64(3), "wait": float64(2)})
	assert.Equal(t, 3, b.MaxAttempts)
	assert.Equal(t, 2*time.Second, b.Wait)

	b2 := NewBase(map[string]interface{}{"max_attempts": int64(5)})
	assert.Equal(t, 5, b2.MaxAttempts)
}

func TestBase_CloneBaseCopiesParamsIndependently(t *testing.T) {
	b := NewBase(map[string]interface{}{"k": "v"})
	cp := b.cloneBase()
	cp.Params["k"] = "changed"
	assert.Equal(t, "v", b.Params["k"])
}

func TestBase_SetParamsImplementsParamSetter(t *testing.T) {
	b := &Base{}
	b.SetParams(map[string]interface{}{"a": 1})
	assert.Equal(t, 1, b.Params["a"])
}

func TestNew_UnknownTypeReturnsFalse(t *testing.T) {
	_, ok := New("nonexistent-type", nil)
	assert.False(t, ok)
}

func TestNew_ConstructsRegisteredBuiltin(t *testing.T) {
	runner, ok := New("http", map[string]interface{}{"url": "https://example.com"})
	assert.True(t, ok)
	assert.NotNil(t, runner)
	_, isHTTP := runner.(*HTTPNode)
	assert.True(t, isHTTP)
}
