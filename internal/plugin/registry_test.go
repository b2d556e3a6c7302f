package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexeiveselov92/dft-pipeline/internal/model"
)

type nopSource struct{}

func (nopSource) Extract(context.Context, RunContext) (*Artifact, error) {
	return NewArtifact(nil, nil, "nop"), nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.RegisterSource("nop", func(map[string]any) (Source, error) { return nopSource{}, nil })

	t.Run("lookup", func(t *testing.T) {
		_, ok := r.Source("nop")
		assert.True(t, ok)
		_, ok = r.Source("missing")
		assert.False(t, ok)
		assert.True(t, r.Has(model.KindSource, "nop"))
		assert.False(t, r.Has(model.KindEndpoint, "nop"))
	})

	t.Run("build", func(t *testing.T) {
		step := &model.Step{ID: "s", Kind: model.KindSource, SubType: "nop"}
		instance, err := r.Build(step)
		require.NoError(t, err)
		_, isSource := instance.(Source)
		assert.True(t, isSource)

		step.SubType = "missing"
		_, err = r.Build(step)
		assert.ErrorContains(t, err, "unknown source type")
	})

	t.Run("list", func(t *testing.T) {
		assert.Equal(t, []string{"source:nop"}, r.List())
	})
}

func TestRegistryValidate(t *testing.T) {
	r := NewRegistry()
	r.RegisterSource("nop", func(map[string]any) (Source, error) { return nopSource{}, nil })

	project, err := model.NewProject("p", []model.Pipeline{
		{Name: "ok", Steps: []model.Step{{ID: "s1", Kind: model.KindSource, SubType: "nop"}}},
	})
	require.NoError(t, err)
	assert.NoError(t, r.Validate(project))

	bad, err := model.NewProject("p", []model.Pipeline{
		{Name: "bad", Steps: []model.Step{{ID: "s1", Kind: model.KindEndpoint, SubType: "warehouse"}}},
	})
	require.NoError(t, err)

	var cfgErr *model.ConfigurationError
	require.ErrorAs(t, r.Validate(bad), &cfgErr)
	assert.Contains(t, cfgErr.Error(), "warehouse")
}

func TestArtifact(t *testing.T) {
	a := NewArtifact([]string{"id", "name"}, []map[string]any{{"id": 1, "name": "x"}}, "test")
	assert.Equal(t, 1, a.RowCount())
	assert.True(t, a.HasColumn("name"))
	assert.False(t, a.HasColumn("email"))

	a.AddMetadata("validated", true)
	assert.Equal(t, true, a.Metadata["validated"])

	var nilArtifact *Artifact
	assert.Equal(t, 0, nilArtifact.RowCount())
}
