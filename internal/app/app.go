// Package app wires the full invocation context: project config, entity
// model, graphs, plugin registry and logger. It is constructed once per
// command invocation and threaded explicitly into everything that needs
// it, so there is no implicit global project state.
package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexeiveselov92/dft-pipeline/internal/config"
	"github.com/alexeiveselov92/dft-pipeline/internal/ctxlog"
	"github.com/alexeiveselov92/dft-pipeline/internal/graph"
	"github.com/alexeiveselov92/dft-pipeline/internal/model"
	"github.com/alexeiveselov92/dft-pipeline/internal/plugin"
	"github.com/alexeiveselov92/dft-pipeline/internal/template"
)

// Options configure App construction.
type Options struct {
	// Dir is the project root. Defaults to the current directory.
	Dir string
	// Vars are command-line variable overrides, merged over the
	// project's defaults before template substitution.
	Vars map[string]string
	// LogLevel / LogFormat override the project's logging settings
	// when non-empty.
	LogLevel  string
	LogFormat string
	// LogOut receives log output. Defaults to stderr.
	LogOut io.Writer
}

// App holds everything a command needs to operate on a loaded project.
type App struct {
	out      io.Writer
	logger   zerolog.Logger
	cfg      *config.ProjectConfig
	project  *model.Project
	graph    *graph.Graph
	registry *plugin.Registry
	vars     map[string]any
}

// New loads and validates the project in opts.Dir. Any configuration
// error — unparsable files, duplicate names, dangling references,
// cycles, unknown plugin sub-types — is returned here, before anything
// can be scheduled. When no modules are passed the built-in connector
// set is registered.
func New(out io.Writer, opts Options, modules ...plugin.Module) (*App, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}

	cfg, err := config.LoadProject(opts.Dir)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	format := cfg.LogFormat
	if opts.LogFormat != "" {
		format = opts.LogFormat
	}
	logOut := opts.LogOut
	if logOut == nil {
		logOut = os.Stderr
	}
	logger := ctxlog.New(logOut, level, format)
	logger.Debug().Str("project", cfg.ProjectName).Str("dir", cfg.Dir).Msg("Project config loaded")

	vars := make(map[string]any, len(cfg.Vars)+len(opts.Vars))
	for k, v := range cfg.Vars {
		vars[k] = v
	}
	for k, v := range opts.Vars {
		vars[k] = v
	}

	engine := template.NewEngine(vars, time.Now())
	pipelines, err := config.LoadPipelines(cfg, engine)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("count", len(pipelines)).Msg("Pipelines loaded")

	project, err := model.NewProject(cfg.ProjectName, pipelines)
	if err != nil {
		return nil, err
	}

	g, err := graph.FromPipelines(project.Pipelines())
	if err != nil {
		return nil, err
	}
	// Validate every step graph up front too, so cycle and reference
	// errors abort before scheduling rather than mid-run.
	for i := range project.Pipelines() {
		p := project.Pipelines()[i]
		if _, err := graph.FromSteps(&p); err != nil {
			return nil, err
		}
	}
	logger.Debug().Int("pipelines", g.Len()).Msg("Dependency graphs built and validated")

	registry := plugin.NewRegistry()
	if len(modules) == 0 {
		modules = CoreModules()
	}
	for _, m := range modules {
		m.Register(registry)
	}
	logger.Debug().Strs("connectors", registry.List()).Msg("Connector modules registered")

	if err := registry.Validate(project); err != nil {
		return nil, err
	}

	return &App{
		out:      out,
		logger:   logger,
		cfg:      cfg,
		project:  project,
		graph:    g,
		registry: registry,
		vars:     vars,
	}, nil
}

// Project returns the loaded entity model.
func (a *App) Project() *model.Project {
	return a.project
}

// Config returns the parsed project configuration.
func (a *App) Config() *config.ProjectConfig {
	return a.cfg
}

// Registry returns the populated connector registry.
func (a *App) Registry() *plugin.Registry {
	return a.registry
}

// Graph returns the validated pipeline dependency graph.
func (a *App) Graph() *graph.Graph {
	return a.graph
}

// DocsDir returns where generated documentation lives.
func (a *App) DocsDir() string {
	return filepath.Join(a.cfg.Dir, ".dft", "docs")
}

func (a *App) statePath() string {
	path := a.cfg.StatePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.cfg.Dir, path)
	}
	return path
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
