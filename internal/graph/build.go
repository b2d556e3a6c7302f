package graph

import (
	"fmt"

	"github.com/alexeiveselov92/dft-pipeline/internal/model"
)

// FromPipelines builds the pipeline-level dependency graph from each
// pipeline's depends_on list. It is a pure function of its input: the
// returned graph is fully validated (no dangling references, no cycles).
func FromPipelines(pipelines []model.Pipeline) (*Graph, error) {
	g := New()
	for i := range pipelines {
		g.AddNode(pipelines[i].Name)
	}
	for i := range pipelines {
		p := &pipelines[i]
		for _, dep := range p.DependsOn {
			if !g.Has(dep) {
				return nil, &UnknownReferenceError{Node: p.Name, Ref: dep}
			}
			if err := g.AddEdge(dep, p.Name); err != nil {
				return nil, fmt.Errorf("pipeline %q: %w", p.Name, err)
			}
		}
	}
	if err := g.DetectCycles(); err != nil {
		return nil, err
	}
	return g, nil
}

// FromSteps builds the step-level dependency graph for a single pipeline
// from each step's depends_on list. Validation mirrors FromPipelines.
func FromSteps(p *model.Pipeline) (*Graph, error) {
	g := New()
	for i := range p.Steps {
		g.AddNode(p.Steps[i].ID)
	}
	for i := range p.Steps {
		s := &p.Steps[i]
		for _, dep := range s.DependsOn {
			if !g.Has(dep) {
				return nil, &UnknownReferenceError{Node: s.ID, Ref: dep}
			}
			if err := g.AddEdge(dep, s.ID); err != nil {
				return nil, fmt.Errorf("pipeline %q step %q: %w", p.Name, s.ID, err)
			}
		}
	}
	if err := g.DetectCycles(); err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", p.Name, err)
	}
	return g, nil
}
