// Package graph implements the generic dependency graph used at both
// orchestration levels: the pipeline graph (built from pipeline depends_on)
// and the per-pipeline step graph (built from step depends_on).
//
// A Graph is immutable once handed to callers: derived views (successors,
// upstream/downstream closures, topological order) are computed on demand
// and never mutate the graph, so a single instance is safe to share across
// concurrent workers. Node declaration order is retained and used as the
// deterministic tie-break wherever ordering is otherwise unconstrained.
package graph
