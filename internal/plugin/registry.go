package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/alexeiveselov92/dft-pipeline/internal/model"
)

// Factories build connector instances from a step's opaque config.
type (
	SourceFactory    func(config map[string]any) (Source, error)
	ProcessorFactory func(config map[string]any) (Processor, error)
	EndpointFactory  func(config map[string]any) (Endpoint, error)
)

// Module is implemented by connector packages to register their
// factories into a Registry at startup.
type Module interface {
	Register(r *Registry)
}

// Registry maps (kind, sub-type) pairs to connector factories. It is
// populated once at startup and read-only during execution.
type Registry struct {
	mu         sync.RWMutex
	sources    map[string]SourceFactory
	processors map[string]ProcessorFactory
	endpoints  map[string]EndpointFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sources:    make(map[string]SourceFactory),
		processors: make(map[string]ProcessorFactory),
		endpoints:  make(map[string]EndpointFactory),
	}
}

// RegisterSource adds a source factory under the given sub-type.
func (r *Registry) RegisterSource(subType string, f SourceFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[subType] = f
}

// RegisterProcessor adds a processor factory under the given sub-type.
func (r *Registry) RegisterProcessor(subType string, f ProcessorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors[subType] = f
}

// RegisterEndpoint adds an endpoint factory under the given sub-type.
func (r *Registry) RegisterEndpoint(subType string, f EndpointFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints[subType] = f
}

// Source returns the factory for a source sub-type.
func (r *Registry) Source(subType string) (SourceFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.sources[subType]
	return f, ok
}

// Processor returns the factory for a processor sub-type.
func (r *Registry) Processor(subType string) (ProcessorFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.processors[subType]
	return f, ok
}

// Endpoint returns the factory for an endpoint sub-type.
func (r *Registry) Endpoint(subType string) (EndpointFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.endpoints[subType]
	return f, ok
}

// Has reports whether a factory exists for the given kind and sub-type.
func (r *Registry) Has(kind model.StepKind, subType string) bool {
	switch kind {
	case model.KindSource:
		_, ok := r.Source(subType)
		return ok
	case model.KindProcessor:
		_, ok := r.Processor(subType)
		return ok
	case model.KindEndpoint:
		_, ok := r.Endpoint(subType)
		return ok
	}
	return false
}

// Build constructs the connector instance for a step. The returned value
// is one of Source, Processor or Endpoint according to the step's kind.
func (r *Registry) Build(step *model.Step) (any, error) {
	switch step.Kind {
	case model.KindSource:
		f, ok := r.Source(step.SubType)
		if !ok {
			return nil, fmt.Errorf("unknown source type %q", step.SubType)
		}
		return f(step.Config)
	case model.KindProcessor:
		f, ok := r.Processor(step.SubType)
		if !ok {
			return nil, fmt.Errorf("unknown processor type %q", step.SubType)
		}
		return f(step.Config)
	case model.KindEndpoint:
		f, ok := r.Endpoint(step.SubType)
		if !ok {
			return nil, fmt.Errorf("unknown endpoint type %q", step.SubType)
		}
		return f(step.Config)
	}
	return nil, fmt.Errorf("unknown step kind %q", step.Kind)
}

// Validate checks that every step of every pipeline resolves to a
// registered factory, so unknown sub-types surface before scheduling.
func (r *Registry) Validate(project *model.Project) error {
	for _, p := range project.Pipelines() {
		for i := range p.Steps {
			s := &p.Steps[i]
			if !r.Has(s.Kind, s.SubType) {
				return &model.ConfigurationError{
					Reason: fmt.Sprintf("pipeline %q step %q: no registered %s of type %q", p.Name, s.ID, s.Kind, s.SubType),
				}
			}
		}
	}
	return nil
}

// List returns "kind:sub-type" keys for everything registered, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sources)+len(r.processors)+len(r.endpoints))
	for k := range r.sources {
		out = append(out, "source:"+k)
	}
	for k := range r.processors {
		out = append(out, "processor:"+k)
	}
	for k := range r.endpoints {
		out = append(out, "endpoint:"+k)
	}
	sort.Strings(out)
	return out
}
