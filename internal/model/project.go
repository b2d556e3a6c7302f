package model

import "fmt"

// ConfigurationError is a fatal project-definition error: duplicate names,
// unknown kinds, and similar mistakes that make scheduling unsafe. It is
// always reported before any execution starts.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// Project is the validated set of pipelines loaded for one invocation.
type Project struct {
	// Name is the project name from the project file.
	Name string

	pipelines []Pipeline
	byName    map[string]*Pipeline
}

// NewProject validates the pipelines and returns an immutable Project.
// Declaration order of the slice is preserved and drives deterministic
// scheduling tie-breaks.
func NewProject(name string, pipelines []Pipeline) (*Project, error) {
	p := &Project{
		Name:      name,
		pipelines: pipelines,
		byName:    make(map[string]*Pipeline, len(pipelines)),
	}

	for i := range p.pipelines {
		pl := &p.pipelines[i]
		if pl.Name == "" {
			return nil, &ConfigurationError{Reason: "pipeline with empty name"}
		}
		if _, exists := p.byName[pl.Name]; exists {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("duplicate pipeline name %q", pl.Name)}
		}
		p.byName[pl.Name] = pl

		pl.stepsByID = make(map[string]*Step, len(pl.Steps))
		for j := range pl.Steps {
			s := &pl.Steps[j]
			if s.ID == "" {
				return nil, &ConfigurationError{Reason: fmt.Sprintf("pipeline %q has a step with empty id", pl.Name)}
			}
			if !s.Kind.Valid() {
				return nil, &ConfigurationError{Reason: fmt.Sprintf("pipeline %q step %q has unknown kind %q", pl.Name, s.ID, s.Kind)}
			}
			if s.SubType == "" {
				return nil, &ConfigurationError{Reason: fmt.Sprintf("pipeline %q step %q has no %s type", pl.Name, s.ID, s.Kind)}
			}
			if _, exists := pl.stepsByID[s.ID]; exists {
				return nil, &ConfigurationError{Reason: fmt.Sprintf("pipeline %q has duplicate step id %q", pl.Name, s.ID)}
			}
			pl.stepsByID[s.ID] = s
		}
	}

	return p, nil
}

// Pipelines returns the pipelines in declaration order.
func (p *Project) Pipelines() []Pipeline {
	return p.pipelines
}

// Pipeline returns the pipeline with the given name, if present.
func (p *Project) Pipeline(name string) (*Pipeline, bool) {
	pl, ok := p.byName[name]
	return pl, ok
}

// Names returns all pipeline names in declaration order.
func (p *Project) Names() []string {
	names := make([]string, len(p.pipelines))
	for i := range p.pipelines {
		names[i] = p.pipelines[i].Name
	}
	return names
}
