// Package docs renders a static HTML overview of a project: every
// pipeline, its tags and dependencies, and each step with its connector
// type and in-pipeline dependencies.
package docs

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alexeiveselov92/dft-pipeline/internal/graph"
	"github.com/alexeiveselov92/dft-pipeline/internal/model"
)

type stepView struct {
	ID        string
	Kind      string
	SubType   string
	DependsOn string
}

type pipelineView struct {
	Name       string
	Tags       string
	DependsOn  string
	Dependents string
	Steps      []stepView
}

type projectView struct {
	ProjectName string
	GeneratedAt string
	Pipelines   []pipelineView
}

// Generate writes index.html for the project into dir, creating it if
// needed, and returns the path to the written file.
func Generate(project *model.Project, g *graph.Graph, dir string) (string, error) {
	view := buildView(project, g)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating docs dir: %w", err)
	}
	path := filepath.Join(dir, "index.html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("writing docs: %w", err)
	}
	defer f.Close()

	if err := pageTemplate.Execute(f, view); err != nil {
		return "", fmt.Errorf("rendering docs: %w", err)
	}
	return path, nil
}

// Serve blocks serving the generated docs directory over HTTP.
func Serve(dir string, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(dir)))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

func buildView(project *model.Project, g *graph.Graph) projectView {
	view := projectView{
		ProjectName: project.Name,
		GeneratedAt: time.Now().Format(time.RFC1123),
	}
	for _, p := range project.Pipelines() {
		dependents := g.Successors(p.Name)
		sort.Strings(dependents)

		pv := pipelineView{
			Name:       p.Name,
			Tags:       strings.Join(p.Tags, ", "),
			DependsOn:  strings.Join(p.DependsOn, ", "),
			Dependents: strings.Join(dependents, ", "),
		}
		for _, s := range p.Steps {
			pv.Steps = append(pv.Steps, stepView{
				ID:        s.ID,
				Kind:      string(s.Kind),
				SubType:   s.SubType,
				DependsOn: strings.Join(s.DependsOn, ", "),
			})
		}
		view.Pipelines = append(view.Pipelines, pv)
	}
	return view
}

var pageTemplate = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.ProjectName}} pipelines</title>
<style>
body { font-family: -apple-system, sans-serif; margin: 2rem auto; max-width: 960px; color: #1f2328; }
h1 { border-bottom: 2px solid #d0d7de; padding-bottom: .4rem; }
h2 { margin-top: 2rem; }
table { border-collapse: collapse; width: 100%; margin: .5rem 0 1rem; }
th, td { border: 1px solid #d0d7de; padding: .35rem .6rem; text-align: left; font-size: .9rem; }
th { background: #f6f8fa; }
.meta { color: #57606a; font-size: .85rem; }
.tag { background: #ddf4ff; border-radius: 1rem; padding: .1rem .5rem; font-size: .8rem; }
</style>
</head>
<body>
<h1>{{.ProjectName}}</h1>
<p class="meta">{{len .Pipelines}} pipelines · generated {{.GeneratedAt}}</p>
{{range .Pipelines}}
<h2 id="{{.Name}}">{{.Name}}</h2>
<p class="meta">
{{if .Tags}}tags: <span class="tag">{{.Tags}}</span><br>{{end}}
{{if .DependsOn}}depends on: {{.DependsOn}}<br>{{end}}
{{if .Dependents}}required by: {{.Dependents}}{{end}}
</p>
<table>
<tr><th>Step</th><th>Kind</th><th>Connector</th><th>Depends on</th></tr>
{{range .Steps}}<tr><td>{{.ID}}</td><td>{{.Kind}}</td><td>{{.SubType}}</td><td>{{.DependsOn}}</td></tr>
{{end}}</table>
{{end}}
</body>
</html>
`))
