package nodes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pflow-dev/pflow-core/internal/store"
)

func TestHTTPNode_PrepRequiresURL(t *testing.T) {
	n := NewHTTPNode(map[string]interface{}{})
	_, err := n.Prep(context.Background(), store.New(nil))
	require.Error(t, err)
}

func TestHTTPNode_ExecAndPostRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "hello", string(body))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	n := NewHTTPNode(map[string]interface{}{"url": srv.URL, "method": "POST", "body": "hello"})
	s := store.New(nil)

	prep, err := n.Prep(context.Background(), s)
	require.NoError(t, err)
	exec, err := n.Exec(context.Background(), prep)
	require.NoError(t, err)
	action, err := n.Post(context.Background(), s, prep, exec)
	require.NoError(t, err)

	assert.Equal(t, "default", action)
	resp, _ := s.Get("response")
	assert.Equal(t, "ok", resp)
	status, _ := s.Get("status_code")
	assert.Equal(t, 200, status)
}

func TestHTTPNode_PostReturnsErrorActionOnHTTPFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewHTTPNode(map[string]interface{}{"url": srv.URL})
	s := store.New(nil)

	prep, err := n.Prep(context.Background(), s)
	require.NoError(t, err)
	exec, err := n.Exec(context.Background(), prep)
	require.NoError(t, err)
	action, err := n.Post(context.Background(), s, prep, exec)
	require.NoError(t, err)
	assert.Equal(t, "error", action)
}

func TestHTTPNode_BinaryContentTypeReturnsRawBytes(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0x01}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(payload)
	}))
	defer srv.Close()

	n := NewHTTPNode(map[string]interface{}{"url": srv.URL})
	s := store.New(nil)

	prep, err := n.Prep(context.Background(), s)
	require.NoError(t, err)
	exec, err := n.Exec(context.Background(), prep)
	require.NoError(t, err)
	_, err = n.Post(context.Background(), s, prep, exec)
	require.NoError(t, err)

	resp, _ := s.Get("response")
	assert.Equal(t, payload, resp)
}

func TestHTTPNode_Clone(t *testing.T) {
	n := NewHTTPNode(map[string]interface{}{"url": "https://example.com"})
	cloned := n.Clone()
	httpClone, ok := cloned.(*HTTPNode)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", httpClone.Params["url"])
}
