package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the terminal state of a pipeline or step.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// StepResult records one step's outcome.
type StepResult struct {
	ID       string
	Status   Status
	Error    string
	Duration time.Duration
}

// PipelineResult records one pipeline's outcome with its steps in
// execution order.
type PipelineResult struct {
	Name     string
	Status   Status
	Error    string
	Steps    []StepResult
	Duration time.Duration
}

// RunResult aggregates the outcome of one executor invocation. A fresh
// instance is created per run; workers are the only writers, each owning
// its pipeline's result, and the aggregate map is guarded for concurrent
// status reads.
type RunResult struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	mu        sync.RWMutex
	pipelines map[string]*PipelineResult
	plan      []string
}

func newRunResult(plan []string) *RunResult {
	return &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		pipelines: make(map[string]*PipelineResult, len(plan)),
		plan:      plan,
	}
}

func (r *RunResult) add(pr *PipelineResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipelines[pr.Name] = pr
}

// Pipeline returns the result for a pipeline, if it has finished.
func (r *RunResult) Pipeline(name string) (*PipelineResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pr, ok := r.pipelines[name]
	return pr, ok
}

// Pipelines returns all pipeline results in execution-plan order.
func (r *RunResult) Pipelines() []*PipelineResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*PipelineResult, 0, len(r.plan))
	for _, name := range r.plan {
		if pr, ok := r.pipelines[name]; ok {
			out = append(out, pr)
		}
	}
	return out
}

// Plan returns the execution order the run was scheduled with.
func (r *RunResult) Plan() []string {
	out := make([]string, len(r.plan))
	copy(out, r.plan)
	return out
}

// Success reports whether every targeted pipeline succeeded.
func (r *RunResult) Success() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.pipelines) != len(r.plan) {
		return false
	}
	for _, pr := range r.pipelines {
		if pr.Status != StatusSucceeded {
			return false
		}
	}
	return true
}

// Counts tallies pipelines per terminal status.
func (r *RunResult) Counts() (succeeded, failed, skipped int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, pr := range r.pipelines {
		switch pr.Status {
		case StatusSucceeded:
			succeeded++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return
}
