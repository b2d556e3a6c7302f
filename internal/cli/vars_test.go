package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVars(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		vars, err := parseVars(nil)
		require.NoError(t, err)
		assert.Nil(t, vars)
	})

	t.Run("pairs", func(t *testing.T) {
		vars, err := parseVars([]string{"env=prod", "limit=500"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"env": "prod", "limit": "500"}, vars)
	})

	t.Run("value may contain equals", func(t *testing.T) {
		vars, err := parseVars([]string{"filter=a=b"})
		require.NoError(t, err)
		assert.Equal(t, "a=b", vars["filter"])
	})

	t.Run("later values win", func(t *testing.T) {
		vars, err := parseVars([]string{"env=dev", "env=prod"})
		require.NoError(t, err)
		assert.Equal(t, "prod", vars["env"])
	})

	t.Run("missing equals", func(t *testing.T) {
		_, err := parseVars([]string{"env"})
		require.Error(t, err)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := parseVars([]string{"=value"})
		require.Error(t, err)
	})
}

func TestRootCommandTree(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCommand(&out)

	names := make([]string, 0, 4)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "init")
	assert.Contains(t, names, "docs")
	assert.Contains(t, names, "debug")
}
