package host

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStateStoreMissingFile(t *testing.T) {
	store := NewFileStateStore(filepath.Join(t.TempDir(), "state.json"))

	state, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, state.FirstRunPending(), "missing state means first run pending")
}

func TestFileStateStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store := NewFileStateStore(path)
	ctx := context.Background()

	state, err := store.Load(ctx)
	require.NoError(t, err)
	state.MarkFirstRunDone()
	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, loaded.FirstRunPending())
}

func TestFileStateStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStateStore(path)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, State{}))

	// Corrupt the file and expect a parse error.
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := store.Load(ctx)
	assert.Error(t, err)
}
