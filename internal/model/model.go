// Package model holds the in-memory representation of a loaded project:
// pipelines and their steps. Everything here is read-only after
// construction and safe to share across concurrent workers.
package model

// StepKind classifies what a step does with data.
type StepKind string

const (
	// KindSource extracts data from an external system.
	KindSource StepKind = "source"
	// KindProcessor transforms data produced by upstream steps.
	KindProcessor StepKind = "processor"
	// KindEndpoint loads data into an external system.
	KindEndpoint StepKind = "endpoint"
)

// Valid reports whether k is one of the known step kinds.
func (k StepKind) Valid() bool {
	switch k {
	case KindSource, KindProcessor, KindEndpoint:
		return true
	}
	return false
}

// Step is one unit of work within a pipeline.
type Step struct {
	// ID is unique within the owning pipeline.
	ID string
	// Kind is source, processor or endpoint.
	Kind StepKind
	// SubType names the connector implementation, e.g. "csv" or "postgres".
	SubType string
	// DependsOn lists step IDs within the same pipeline that must
	// complete before this step runs.
	DependsOn []string
	// Config is the opaque connector configuration, passed verbatim to
	// the plugin after template substitution.
	Config map[string]any
}

// Pipeline is a named unit of orchestration.
type Pipeline struct {
	// Name is unique across the project and is the selection namespace.
	Name string
	// Tags enable tag-based selection.
	Tags []string
	// DependsOn lists names of pipelines that must succeed before this
	// one becomes eligible to run.
	DependsOn []string
	// Steps in declaration order.
	Steps []Step

	stepsByID map[string]*Step
}

// HasTag reports whether the pipeline carries the given tag.
func (p *Pipeline) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Step returns the step with the given ID, if present.
func (p *Pipeline) Step(id string) (*Step, bool) {
	s, ok := p.stepsByID[id]
	return s, ok
}
