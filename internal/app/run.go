package app

import (
	"context"
	"sort"

	"github.com/alexeiveselov92/dft-pipeline/internal/ctxlog"
	"github.com/alexeiveselov92/dft-pipeline/internal/engine"
	"github.com/alexeiveselov92/dft-pipeline/internal/selector"
	"github.com/alexeiveselov92/dft-pipeline/internal/state"
)

// RunOptions configure one execution.
type RunOptions struct {
	// Select and Exclude are selection expressions. An empty Select
	// targets all pipelines.
	Select  string
	Exclude string
	// FullRefresh is forwarded verbatim to every connector call.
	FullRefresh bool
	// Concurrency overrides the project's worker bound when > 0.
	Concurrency int
}

// Run resolves the target set, executes it and prints the summary.
// The returned result carries per-pipeline and per-step outcomes; the
// error covers pre-run failures only.
func (a *App) Run(ctx context.Context, opts RunOptions) (*engine.RunResult, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	targets, err := selector.ResolveTargets(opts.Select, opts.Exclude, a.project, a.graph)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		a.logger.Warn().Str("select", opts.Select).Str("exclude", opts.Exclude).
			Msg("Selection matched no pipelines, nothing to run")
	} else {
		names := make([]string, 0, len(targets))
		for name := range targets {
			names = append(names, name)
		}
		sort.Strings(names)
		a.logger.Info().Strs("pipelines", names).Msg("Resolved target set")
	}

	concurrency := a.cfg.Concurrency
	if opts.Concurrency > 0 {
		concurrency = opts.Concurrency
	}

	eng, err := engine.New(a.project, a.graph, a.registry, engine.Options{
		Concurrency: concurrency,
		Variables:   a.vars,
		FullRefresh: opts.FullRefresh,
		Store:       state.NewFileStore(a.statePath()),
	})
	if err != nil {
		return nil, err
	}

	result, err := eng.Run(ctx, targets)
	if err != nil {
		return nil, err
	}

	a.printSummary(result)
	return result, nil
}
