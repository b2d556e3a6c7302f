package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexeiveselov92/dft-pipeline/internal/ctxlog"
	"github.com/alexeiveselov92/dft-pipeline/internal/graph"
	"github.com/alexeiveselov92/dft-pipeline/internal/model"
	"github.com/alexeiveselov92/dft-pipeline/internal/plugin"
	"github.com/alexeiveselov92/dft-pipeline/internal/state"
)

// Options configure one executor invocation.
type Options struct {
	// Concurrency bounds the pipeline worker pool. Values below 1 run
	// fully sequentially.
	Concurrency int
	// Variables are handed to every connector call.
	Variables map[string]any
	// FullRefresh is forwarded verbatim to connectors.
	FullRefresh bool
	// Store persists per-pipeline state between runs. Optional.
	Store state.Store
}

// Engine executes a target set of pipelines in dependency order.
type Engine struct {
	project       *model.Project
	pipelineGraph *graph.Graph
	registry      *plugin.Registry
	opts          Options

	// Prebuilt, validated per-pipeline step graphs and orders.
	stepGraphs map[string]*graph.Graph
	stepOrders map[string][]string
}

// New prepares an engine: it builds and validates the step graph of
// every pipeline up front, so cycle and reference errors surface before
// anything is scheduled.
func New(project *model.Project, pipelineGraph *graph.Graph, registry *plugin.Registry, opts Options) (*Engine, error) {
	e := &Engine{
		project:       project,
		pipelineGraph: pipelineGraph,
		registry:      registry,
		opts:          opts,
		stepGraphs:    make(map[string]*graph.Graph),
		stepOrders:    make(map[string][]string),
	}

	pipelines := project.Pipelines()
	for i := range pipelines {
		p := &pipelines[i]
		sg, err := graph.FromSteps(p)
		if err != nil {
			return nil, err
		}
		order, err := sg.TopoOrder()
		if err != nil {
			return nil, err
		}
		e.stepGraphs[p.Name] = sg
		e.stepOrders[p.Name] = order
	}
	return e, nil
}

// Run drives the target set to completion and returns the aggregated
// result. Failures are encoded in the result, not returned as errors;
// the error return covers pre-run conditions only.
func (e *Engine) Run(ctx context.Context, targets map[string]struct{}) (*RunResult, error) {
	logger := ctxlog.FromContext(ctx)

	sub := e.pipelineGraph.Restrict(targets)
	plan, err := sub.TopoOrder()
	if err != nil {
		return nil, fmt.Errorf("planning execution order: %w", err)
	}

	result := newRunResult(plan)
	logger.Info().
		Str("run_id", result.RunID).
		Int("pipelines", len(plan)).
		Strs("plan", plan).
		Msg("🚀 Starting run")

	if len(plan) == 0 {
		result.Duration = time.Since(result.StartedAt)
		return result, nil
	}

	// Ready-queue scheduling: a pipeline is enqueued the moment its
	// last in-target dependency reaches a terminal state.
	var mu sync.Mutex
	inDegree := make(map[string]int, len(plan))
	for _, name := range plan {
		inDegree[name] = len(sub.Predecessors(name))
	}

	ready := make(chan string, len(plan))
	remaining := len(plan)

	finish := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		for _, succ := range sub.Successors(name) {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				ready <- succ
			}
		}
		remaining--
		if remaining == 0 {
			close(ready)
		}
	}

	mu.Lock()
	for _, name := range plan {
		if inDegree[name] == 0 {
			ready <- name
		}
	}
	mu.Unlock()

	workers := e.opts.Concurrency
	if workers < 1 {
		workers = 1
	}
	if workers > len(plan) {
		workers = len(plan)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for name := range ready {
				pr := e.runOrSkip(ctx, sub, name, result, workerID)
				result.add(pr)
				finish(name)
			}
		}(i)
	}
	wg.Wait()

	result.Duration = time.Since(result.StartedAt)
	succeeded, failed, skipped := result.Counts()
	logger.Info().
		Str("run_id", result.RunID).
		Int("succeeded", succeeded).
		Int("failed", failed).
		Int("skipped", skipped).
		Dur("duration", result.Duration).
		Msg("🏁 Run finished")
	return result, nil
}

// runOrSkip decides whether a ready pipeline actually runs. Cancellation
// and upstream failure both produce a skipped result; only a healthy
// pipeline executes its steps.
func (e *Engine) runOrSkip(ctx context.Context, sub *graph.Graph, name string, result *RunResult, workerID int) *PipelineResult {
	logger := ctxlog.FromContext(ctx).With().Int("worker", workerID).Str("pipeline", name).Logger()

	if err := ctx.Err(); err != nil {
		logger.Warn().Msg("⏭️ Skipping pipeline: run cancelled")
		return e.skippedResult(name, "run cancelled")
	}

	// Scheduling guarantees every in-target dependency is terminal by
	// the time we are dequeued.
	for _, dep := range sub.Predecessors(name) {
		depResult, ok := result.Pipeline(dep)
		if !ok {
			return e.skippedResult(name, fmt.Sprintf("upstream pipeline %q has no result", dep))
		}
		if depResult.Status != StatusSucceeded {
			logger.Warn().Str("upstream", dep).Str("upstream_status", string(depResult.Status)).
				Msg("⏭️ Skipping pipeline: upstream did not succeed")
			return e.skippedResult(name, fmt.Sprintf("upstream pipeline %q %s", dep, depResult.Status))
		}
	}

	p, ok := e.project.Pipeline(name)
	if !ok {
		return &PipelineResult{Name: name, Status: StatusFailed, Error: "pipeline not found in project"}
	}

	ctx = ctxlog.WithLogger(ctx, logger)
	return e.runPipeline(ctx, p)
}

// skippedResult marks a pipeline and all of its steps skipped.
func (e *Engine) skippedResult(name, reason string) *PipelineResult {
	pr := &PipelineResult{Name: name, Status: StatusSkipped, Error: reason}
	for _, stepID := range e.stepOrders[name] {
		pr.Steps = append(pr.Steps, StepResult{ID: stepID, Status: StatusSkipped, Error: reason})
	}
	return pr
}
