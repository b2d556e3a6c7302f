package graph

import "fmt"

// UnknownReferenceError reports a depends_on entry that names a node
// missing from the graph.
type UnknownReferenceError struct {
	// Node is the node that declared the dependency.
	Node string
	// Ref is the dangling reference.
	Ref string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown reference: %q depends on %q, which does not exist", e.Node, e.Ref)
}

// CycleError reports the back-edge that closed a dependency cycle.
type CycleError struct {
	// From -> To is the edge that was found to close the cycle.
	From string
	To   string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: edge %q -> %q closes a cycle", e.From, e.To)
}

// Graph is a directed dependency graph. An edge from A to B means
// "B depends on A": A is a predecessor of B.
type Graph struct {
	// preds maps a node to the set of its direct predecessors.
	preds map[string]map[string]struct{}
	// order holds node IDs in declaration order.
	order []string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{preds: make(map[string]map[string]struct{})}
}

// AddNode registers a node. Adding an existing node is a no-op, so the
// first declaration wins for ordering purposes.
func (g *Graph) AddNode(id string) {
	if _, ok := g.preds[id]; ok {
		return
	}
	g.preds[id] = make(map[string]struct{})
	g.order = append(g.order, id)
}

// AddEdge records that `to` depends on `from`. Both nodes must already
// exist; a dangling reference yields UnknownReferenceError.
func (g *Graph) AddEdge(from, to string) error {
	if from == to {
		return &CycleError{From: from, To: to}
	}
	if _, ok := g.preds[to]; !ok {
		return &UnknownReferenceError{Node: from, Ref: to}
	}
	if _, ok := g.preds[from]; !ok {
		return &UnknownReferenceError{Node: to, Ref: from}
	}
	g.preds[to][from] = struct{}{}
	return nil
}

// Has reports whether the node exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.preds[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// Nodes returns all node IDs in declaration order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Predecessors returns the direct dependencies of a node, in declaration
// order of the graph.
func (g *Graph) Predecessors(id string) []string {
	set, ok := g.preds[id]
	if !ok {
		return nil
	}
	var out []string
	for _, n := range g.order {
		if _, dep := set[n]; dep {
			out = append(out, n)
		}
	}
	return out
}

// Successors returns the direct dependents of a node, in declaration
// order of the graph.
func (g *Graph) Successors(id string) []string {
	var out []string
	for _, n := range g.order {
		if _, dep := g.preds[n][id]; dep {
			out = append(out, n)
		}
	}
	return out
}

// Upstream returns the transitive predecessor closure of id. When
// inclusive is true the node itself is part of the result.
func (g *Graph) Upstream(id string, inclusive bool) map[string]struct{} {
	return g.closure(id, inclusive, g.Predecessors)
}

// Downstream returns the transitive successor closure of id. When
// inclusive is true the node itself is part of the result.
func (g *Graph) Downstream(id string, inclusive bool) map[string]struct{} {
	return g.closure(id, inclusive, g.Successors)
}

func (g *Graph) closure(id string, inclusive bool, next func(string) []string) map[string]struct{} {
	out := make(map[string]struct{})
	if !g.Has(id) {
		return out
	}

	stack := []string{id}
	seen := map[string]struct{}{id: {}}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, m := range next(n) {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out[m] = struct{}{}
			stack = append(stack, m)
		}
	}

	if inclusive {
		out[id] = struct{}{}
	}
	return out
}

// Restrict returns the subgraph induced on keep: only nodes present in
// keep survive, with edges between surviving nodes. Declaration order is
// inherited from the parent graph.
func (g *Graph) Restrict(keep map[string]struct{}) *Graph {
	sub := New()
	for _, n := range g.order {
		if _, ok := keep[n]; ok {
			sub.AddNode(n)
		}
	}
	for _, n := range sub.order {
		for dep := range g.preds[n] {
			if _, ok := keep[dep]; ok {
				sub.preds[n][dep] = struct{}{}
			}
		}
	}
	return sub
}
