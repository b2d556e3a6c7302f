// Package engine schedules and executes pipelines.
//
// Scheduling follows a ready-queue discipline over the pipeline graph
// restricted to the run's target set: every pipeline carries an in-degree
// counter of not-yet-terminal dependencies; reaching zero puts it on the
// ready channel consumed by a bounded worker pool. A pipeline whose
// upstream failed or was skipped is skipped without execution instead of
// run. Steps inside a pipeline always execute sequentially in stable
// topological order because later steps consume artifacts produced by
// earlier ones.
//
// The engine is safe under any worker bound >= 1 and always drains the
// whole target set: independent branches run to completion even when
// other branches fail, so one run reports the complete picture.
package engine
