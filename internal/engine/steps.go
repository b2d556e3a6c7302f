package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/alexeiveselov92/dft-pipeline/internal/ctxlog"
	"github.com/alexeiveselov92/dft-pipeline/internal/model"
	"github.com/alexeiveselov92/dft-pipeline/internal/plugin"
)

// runPipeline executes every step of a pipeline sequentially in stable
// topological order. A failing step fails the pipeline and skips its
// transitive downstream within the pipeline; steps with no dependency
// relation to the failure still run.
func (e *Engine) runPipeline(ctx context.Context, p *model.Pipeline) *PipelineResult {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()
	logger.Info().Msg("▶️ Starting pipeline")

	pr := &PipelineResult{Name: p.Name, Status: StatusSucceeded}

	rc, err := e.buildRunContext(p.Name)
	if err != nil {
		pr.Status = StatusFailed
		pr.Error = err.Error()
		for _, stepID := range e.stepOrders[p.Name] {
			pr.Steps = append(pr.Steps, StepResult{ID: stepID, Status: StatusSkipped, Error: "pipeline state unavailable"})
		}
		pr.Duration = time.Since(start)
		logger.Error().Err(err).Msg("❌ Pipeline failed before any step ran")
		return pr
	}

	sg := e.stepGraphs[p.Name]
	artifacts := make(map[string]*plugin.Artifact, len(p.Steps))
	terminal := make(map[string]Status, len(p.Steps))

	for _, stepID := range e.stepOrders[p.Name] {
		step, _ := p.Step(stepID)
		stepLogger := logger.With().Str("step", stepID).Str("kind", string(step.Kind)).Logger()

		if blocked, upstream := blockedBy(sg.Predecessors(stepID), terminal); blocked {
			reason := fmt.Sprintf("upstream step %q %s", upstream, terminal[upstream])
			stepLogger.Warn().Msg("⏭️ Skipping step: upstream did not succeed")
			pr.Steps = append(pr.Steps, StepResult{ID: stepID, Status: StatusSkipped, Error: reason})
			terminal[stepID] = StatusSkipped
			continue
		}

		stepLogger.Info().Msg("▶️ Starting step")
		stepStart := time.Now()
		artifact, err := e.dispatch(ctxlog.WithLogger(ctx, stepLogger), step, sg.Predecessors(stepID), artifacts, rc)
		elapsed := time.Since(stepStart)

		if err != nil {
			stepLogger.Error().Err(err).Dur("duration", elapsed).Msg("❌ Step failed")
			pr.Steps = append(pr.Steps, StepResult{ID: stepID, Status: StatusFailed, Error: err.Error(), Duration: elapsed})
			terminal[stepID] = StatusFailed
			pr.Status = StatusFailed
			if pr.Error == "" {
				pr.Error = fmt.Sprintf("step %q: %s", stepID, err.Error())
			}
			continue
		}

		if artifact != nil {
			artifacts[stepID] = artifact
			stepLogger.Debug().Int("rows", artifact.RowCount()).Msg("Step produced artifact")
		}
		stepLogger.Info().Dur("duration", elapsed).Msg("✅ Finished step")
		pr.Steps = append(pr.Steps, StepResult{ID: stepID, Status: StatusSucceeded, Duration: elapsed})
		terminal[stepID] = StatusSucceeded
	}

	pr.Duration = time.Since(start)

	if pr.Status == StatusSucceeded {
		e.saveState(ctx, p.Name, rc.State)
		logger.Info().Dur("duration", pr.Duration).Msg("✅ Finished pipeline")
	} else {
		logger.Error().Dur("duration", pr.Duration).Msg("❌ Pipeline failed")
	}
	return pr
}

// buildRunContext loads the pipeline's persisted state handle. Full
// refresh discards prior state, honoring the pass-through contract.
func (e *Engine) buildRunContext(pipeline string) (plugin.RunContext, error) {
	rc := plugin.RunContext{
		Variables:   e.opts.Variables,
		FullRefresh: e.opts.FullRefresh,
	}

	if e.opts.FullRefresh {
		rc.State = make(map[string]any)
		return rc, nil
	}

	if e.opts.Store != nil {
		st, err := e.opts.Store.Load(pipeline)
		if err != nil {
			return rc, fmt.Errorf("loading state for pipeline %q: %w", pipeline, err)
		}
		rc.State = st
	}
	if rc.State == nil {
		rc.State = make(map[string]any)
	}
	return rc, nil
}

func (e *Engine) saveState(ctx context.Context, pipeline string, st map[string]any) {
	if e.opts.Store == nil {
		return
	}
	if err := e.opts.Store.Save(pipeline, st); err != nil {
		ctxlog.FromContext(ctx).Warn().Err(err).Msg("Failed to persist pipeline state")
	}
}

// dispatch invokes the step's connector. Every error and panic at the
// plugin boundary becomes an ordinary step failure.
func (e *Engine) dispatch(ctx context.Context, step *model.Step, preds []string, artifacts map[string]*plugin.Artifact, rc plugin.RunContext) (artifact *plugin.Artifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			artifact = nil
			err = fmt.Errorf("connector panicked: %v", r)
		}
	}()

	instance, err := e.registry.Build(step)
	if err != nil {
		return nil, err
	}

	inputs := make(map[string]*plugin.Artifact, len(preds))
	for _, dep := range preds {
		if a, ok := artifacts[dep]; ok {
			inputs[dep] = a
		}
	}

	switch c := instance.(type) {
	case plugin.Source:
		return c.Extract(ctx, rc)
	case plugin.Processor:
		return c.Process(ctx, inputs, rc)
	case plugin.Endpoint:
		return nil, c.Load(ctx, inputs, rc)
	}
	return nil, fmt.Errorf("connector for step %q implements no known capability", step.ID)
}

// blockedBy returns the first predecessor that did not succeed, if any.
func blockedBy(preds []string, terminal map[string]Status) (bool, string) {
	for _, dep := range preds {
		if st, ok := terminal[dep]; ok && st != StatusSucceeded {
			return true, dep
		}
	}
	return false, ""
}
