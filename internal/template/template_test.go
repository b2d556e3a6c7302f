package template

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runAt = time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

func TestRender(t *testing.T) {
	e := NewEngine(map[string]any{"target": "dev", "batch_size": 500}, runAt)

	t.Run("plain strings pass through", func(t *testing.T) {
		got, err := e.Render("just a value")
		require.NoError(t, err)
		assert.Equal(t, "just a value", got)
	})

	t.Run("env_var with default", func(t *testing.T) {
		got, err := e.Render(`${env_var("DFT_TEST_MISSING", "fallback")}`)
		require.NoError(t, err)
		assert.Equal(t, "fallback", got)
	})

	t.Run("env_var set", func(t *testing.T) {
		t.Setenv("DFT_TEST_HOST", "db.internal")
		got, err := e.Render(`host=${env_var("DFT_TEST_HOST")}`)
		require.NoError(t, err)
		assert.Equal(t, "host=db.internal", got)
	})

	t.Run("env_var missing without default", func(t *testing.T) {
		_, err := e.Render(`${env_var("DFT_TEST_MISSING")}`)
		assert.ErrorContains(t, err, "is not set")
	})

	t.Run("var lookup", func(t *testing.T) {
		got, err := e.Render(`target is ${var("target")}`)
		require.NoError(t, err)
		assert.Equal(t, "target is dev", got)

		got, err = e.Render(`${var("batch_size")}`)
		require.NoError(t, err)
		assert.Equal(t, "500", got)
	})

	t.Run("unknown var", func(t *testing.T) {
		_, err := e.Render(`${var("nope")}`)
		assert.ErrorContains(t, err, "not defined")
	})

	t.Run("date functions", func(t *testing.T) {
		got, err := e.Render(`output/processed_${today()}.csv`)
		require.NoError(t, err)
		assert.Equal(t, "output/processed_2026-08-29.csv", got)

		got, err = e.Render(`${date_add(today(), -7)}`)
		require.NoError(t, err)
		assert.Equal(t, "2026-08-22", got)

		got, err = e.Render(`${run_date()}`)
		require.NoError(t, err)
		assert.Equal(t, "2026-08-29", got)
	})

	t.Run("malformed template", func(t *testing.T) {
		_, err := e.Render(`${unclosed`)
		assert.Error(t, err)
	})
}

func TestApply(t *testing.T) {
	e := NewEngine(map[string]any{"target": "prod"}, runAt)

	cfg := map[string]any{
		"file_path": `data/${var("target")}/users.csv`,
		"options": map[string]any{
			"suffix": `${today()}`,
		},
		"columns":   []any{"id", `${var("target")}_name`},
		"row_count": 10,
	}

	got, err := e.Apply(cfg)
	require.NoError(t, err)

	assert.Equal(t, "data/prod/users.csv", got["file_path"])
	assert.Equal(t, "2026-08-29", got["options"].(map[string]any)["suffix"])
	assert.Equal(t, []any{"id", "prod_name"}, got["columns"])
	assert.Equal(t, 10, got["row_count"])

	// Input untouched.
	assert.Equal(t, `data/${var("target")}/users.csv`, cfg["file_path"])
}
