package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".dft", "state.json")
	store := NewFileStore(path)

	t.Run("load before any save", func(t *testing.T) {
		got, err := store.Load("events")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, store.Save("events", map[string]any{"last_run": "2026-08-29"}))

		got, err := store.Load("events")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"last_run": "2026-08-29"}, got)
	})

	t.Run("survives reopen", func(t *testing.T) {
		reopened := NewFileStore(path)
		got, err := reopened.Load("events")
		require.NoError(t, err)
		assert.Equal(t, "2026-08-29", got["last_run"])
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save("p", map[string]any{"n": 1}))
	got, err := store.Load("p")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": 1}, got)
}
