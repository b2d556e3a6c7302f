package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexeiveselov92/dft-pipeline/internal/graph"
	"github.com/alexeiveselov92/dft-pipeline/internal/model"
)

func TestGenerate(t *testing.T) {
	project, err := model.NewProject("analytics", []model.Pipeline{
		{
			Name: "raw_events",
			Tags: []string{"hourly"},
			Steps: []model.Step{
				{ID: "extract", Kind: model.KindSource, SubType: "csv"},
				{ID: "save", Kind: model.KindEndpoint, SubType: "postgres", DependsOn: []string{"extract"}},
			},
		},
		{
			Name:      "marts",
			DependsOn: []string{"raw_events"},
			Steps: []model.Step{
				{ID: "extract", Kind: model.KindSource, SubType: "csv"},
			},
		},
	})
	require.NoError(t, err)
	g, err := graph.FromPipelines(project.Pipelines())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "docs")
	path, err := Generate(project, g, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "index.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, "<h1>analytics</h1>")
	assert.Contains(t, html, `<h2 id="raw_events">raw_events</h2>`)
	assert.Contains(t, html, "hourly")
	assert.Contains(t, html, "depends on: raw_events")
	assert.Contains(t, html, "required by: marts")
	assert.Contains(t, html, "<td>postgres</td>")
}
