package graph

// color values for the DFS cycle scan.
type color uint8

const (
	white color = iota // unvisited
	grey               // in the current recursion stack
	black              // fully explored
)

// DetectCycles scans the graph with a three-color depth-first search and
// returns a CycleError naming the back-edge that closed the first cycle
// found, or nil for an acyclic graph. Nodes are visited in declaration
// order so the reported edge is deterministic.
func (g *Graph) DetectCycles() error {
	colors := make(map[string]color, len(g.order))

	var visit func(id string) error
	visit = func(id string) error {
		colors[id] = grey
		for _, succ := range g.Successors(id) {
			switch colors[succ] {
			case grey:
				// Back-edge into the recursion stack: a cycle.
				return &CycleError{From: id, To: succ}
			case white:
				if err := visit(succ); err != nil {
					return err
				}
			}
		}
		colors[id] = black
		return nil
	}

	for _, id := range g.order {
		if colors[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}
