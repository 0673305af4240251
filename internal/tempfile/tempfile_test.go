package tempfile

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_CreateAndCleanup(t *testing.T) {
	tr := NewTracker()

	path, err := tr.Create("pflow-test-*.bin", []byte("payload"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	errs := tr.Cleanup()
	assert.Empty(t, errs)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "expected the temp file to be removed after Cleanup")
}

func TestTracker_CleanupIsIdempotent(t *testing.T) {
	tr := NewTracker()
	_, err := tr.Create("pflow-test-*.bin", []byte("x"))
	require.NoError(t, err)

	assert.Empty(t, tr.Cleanup())
	assert.Empty(t, tr.Cleanup(), "a second Cleanup call should find nothing left to remove")
}

func TestWithTrackerAndFromContext(t *testing.T) {
	tr := NewTracker()
	ctx := WithTracker(context.Background(), tr)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, tr, got)
}

func TestFromContext_MissingTracker(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}
