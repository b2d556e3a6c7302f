package csv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexeiveselov92/dft-pipeline/internal/plugin"
)

func TestDecodeArtifact(t *testing.T) {
	a, err := DecodeArtifact(strings.NewReader("id,name\n1,alice\n2,bob\n"), "test")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, a.Columns)
	require.Equal(t, 2, a.RowCount())
	assert.Equal(t, "alice", a.Rows[0]["name"])
	assert.Equal(t, "2", a.Rows[1]["id"])
}

func TestDecodeArtifactEmpty(t *testing.T) {
	a, err := DecodeArtifact(strings.NewReader(""), "test")
	require.NoError(t, err)
	assert.Zero(t, a.RowCount())
	assert.Empty(t, a.Columns)
}

func TestSourceEndpointRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "events.csv")

	ep, err := newEndpoint(map[string]any{"file_path": path})
	require.NoError(t, err)

	artifact := plugin.NewArtifact(
		[]string{"id", "name"},
		[]map[string]any{
			{"id": 1, "name": "alice"},
			{"id": 2, "name": "bob"},
		},
		"test",
	)
	inputs := map[string]*plugin.Artifact{"extract": artifact}
	require.NoError(t, ep.Load(context.Background(), inputs, plugin.RunContext{}))

	src, err := newSource(map[string]any{"file_path": path})
	require.NoError(t, err)
	got, err := src.Extract(context.Background(), plugin.RunContext{})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, got.Columns)
	require.Equal(t, 2, got.RowCount())
	assert.Equal(t, "1", got.Rows[0]["id"])
	assert.Equal(t, "bob", got.Rows[1]["name"])
	assert.Equal(t, path, got.Metadata["file_path"])
}

func TestEndpointAppendMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	ep, err := newEndpoint(map[string]any{"file_path": path, "mode": "append"})
	require.NoError(t, err)

	artifact := plugin.NewArtifact(
		[]string{"id"},
		[]map[string]any{{"id": 1}},
		"test",
	)
	inputs := map[string]*plugin.Artifact{"extract": artifact}

	require.NoError(t, ep.Load(context.Background(), inputs, plugin.RunContext{}))
	require.NoError(t, ep.Load(context.Background(), inputs, plugin.RunContext{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// one header, two data rows
	assert.Equal(t, "id\n1\n1\n", string(data))
}

func TestEndpointReplaceMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	ep, err := newEndpoint(map[string]any{"file_path": path})
	require.NoError(t, err)

	artifact := plugin.NewArtifact(
		[]string{"id"},
		[]map[string]any{{"id": 1}},
		"test",
	)
	inputs := map[string]*plugin.Artifact{"extract": artifact}

	require.NoError(t, ep.Load(context.Background(), inputs, plugin.RunContext{}))
	require.NoError(t, ep.Load(context.Background(), inputs, plugin.RunContext{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id\n1\n", string(data))
}

func TestSourceConfigValidation(t *testing.T) {
	_, err := newSource(nil)
	require.Error(t, err)

	_, err = newEndpoint(map[string]any{"file_path": "out.csv", "mode": "merge"})
	require.Error(t, err)
}

func TestSourceTestConnection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("id\n1\n"), 0o644))

	src, err := newSource(map[string]any{"file_path": path})
	require.NoError(t, err)
	tester := src.(interface{ TestConnection(context.Context) error })
	assert.NoError(t, tester.TestConnection(context.Background()))

	missing, err := newSource(map[string]any{"file_path": filepath.Join(dir, "nope.csv")})
	require.NoError(t, err)
	tester = missing.(interface{ TestConnection(context.Context) error })
	assert.Error(t, tester.TestConnection(context.Background()))

	asDir, err := newSource(map[string]any{"file_path": dir})
	require.NoError(t, err)
	tester = asDir.(interface{ TestConnection(context.Context) error })
	assert.Error(t, tester.TestConnection(context.Background()))
}
