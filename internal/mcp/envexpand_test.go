package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func withEnv(t *testing.T, vars map[string]string, fn func()) {
	t.Helper()
	orig := lookupEnv
	lookupEnv = func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
	defer func() { lookupEnv = orig }()
	fn()
}

func TestExpand_SimpleVar(t *testing.T) {
	withEnv(t, map[string]string{"TOKEN": "secret"}, func() {
		assert.Equal(t, "Bearer secret", Expand("Bearer ${TOKEN}"))
	})
}

func TestExpand_MissingVarNoDefault(t *testing.T) {
	withEnv(t, map[string]string{}, func() {
		assert.Equal(t, "", Expand("${MISSING}"))
	})
}

func TestExpand_DefaultValue(t *testing.T) {
	withEnv(t, map[string]string{}, func() {
		assert.Equal(t, "fallback", Expand("${MISSING:-fallback}"))
	})
}

func TestExpand_DefaultNotUsedWhenSet(t *testing.T) {
	withEnv(t, map[string]string{"HOST": "example.com"}, func() {
		assert.Equal(t, "example.com", Expand("${HOST:-localhost}"))
	})
}

func TestExpand_NestedDefaultReference(t *testing.T) {
	withEnv(t, map[string]string{"B": "resolved"}, func() {
		assert.Equal(t, "resolved", Expand("${A:-${B}}"))
	})
}

func TestExpandServerConfig_ExpandsAllStringFields(t *testing.T) {
	withEnv(t, map[string]string{"TOKEN": "abc123"}, func() {
		cfg := ServerConfig{
			Command: "docker",
			Args:    []string{"run", "--token=${TOKEN}"},
			Env:     map[string]string{"API_KEY": "${TOKEN}"},
			Headers: map[string]string{"Authorization": "Bearer ${TOKEN}"},
			URL:     "https://api.example.com?key=${TOKEN}",
		}
		out := ExpandServerConfig(cfg)
		assert.Equal(t, "run", out.Args[0])
		assert.Equal(t, "--token=abc123", out.Args[1])
		assert.Equal(t, "abc123", out.Env["API_KEY"])
		assert.Equal(t, "Bearer abc123", out.Headers["Authorization"])
		assert.Equal(t, "https://api.example.com?key=abc123", out.URL)
	})
}

func TestServerConfig_IsRemote(t *testing.T) {
	assert.False(t, ServerConfig{Command: "docker"}.IsRemote())
	assert.True(t, ServerConfig{URL: "https://example.com"}.IsRemote())
}
