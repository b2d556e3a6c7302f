// Package plugin defines the contract between the execution engine and
// concrete connector implementations, plus the registry through which
// connectors are resolved by (kind, sub-type).
//
// Connectors signal failure through ordinary error returns; the engine
// converts every error (and every panic) at this boundary into a step
// failure, so a misbehaving connector can never abort unrelated
// pipelines.
package plugin

import "context"

// RunContext carries the per-invocation inputs every connector call
// receives: variable bindings, the full-refresh flag, and the opaque
// per-pipeline state handle managed by the state store.
type RunContext struct {
	// Variables merges project defaults with command-line overrides.
	Variables map[string]any
	// FullRefresh tells connectors to discard incremental state and
	// reprocess from scratch. The engine forwards it verbatim.
	FullRefresh bool
	// State is the pipeline's persisted state handle. Connectors may
	// read and mutate it; the engine saves it back after the pipeline
	// succeeds. Nil when full refresh is requested.
	State map[string]any
}

// Source extracts data from an external system.
type Source interface {
	Extract(ctx context.Context, rc RunContext) (*Artifact, error)
}

// Processor transforms data produced by upstream steps. Inputs are keyed
// by the predecessor step ID that produced them.
type Processor interface {
	Process(ctx context.Context, inputs map[string]*Artifact, rc RunContext) (*Artifact, error)
}

// Endpoint loads data into an external system. Inputs are keyed by the
// predecessor step ID that produced them.
type Endpoint interface {
	Load(ctx context.Context, inputs map[string]*Artifact, rc RunContext) error
}

// ConnectionTester is optionally implemented by connectors that support
// a connectivity self-check independent of a run. Tooling uses it for
// project validation; the engine never calls it during execution.
type ConnectionTester interface {
	TestConnection(ctx context.Context) error
}
