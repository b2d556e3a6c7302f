package graph

// TopoOrder computes a topological order over the graph using Kahn's
// algorithm. Among nodes with no relative dependency the declaration
// order decides, so repeated invocations over identical input produce
// identical orders. A cyclic graph yields the exact CycleError from
// DetectCycles.
func (g *Graph) TopoOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.order))
	for _, n := range g.order {
		inDegree[n] = len(g.preds[n])
	}

	// ready is kept sorted by declaration index.
	declIndex := make(map[string]int, len(g.order))
	for i, n := range g.order {
		declIndex[n] = i
	}

	var ready []string
	for _, n := range g.order {
		if inDegree[n] == 0 {
			ready = append(ready, n)
		}
	}

	out := make([]string, 0, len(g.order))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		out = append(out, n)

		for _, succ := range g.Successors(n) {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				ready = insertByIndex(ready, succ, declIndex)
			}
		}
	}

	if len(out) != len(g.order) {
		// Nodes remain with unmet in-degree, so there is a cycle.
		// Re-scan to report the offending edge precisely.
		if err := g.DetectCycles(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// insertByIndex places id into ready keeping declaration-index order.
func insertByIndex(ready []string, id string, declIndex map[string]int) []string {
	pos := len(ready)
	for i, n := range ready {
		if declIndex[id] < declIndex[n] {
			pos = i
			break
		}
	}
	ready = append(ready, "")
	copy(ready[pos+1:], ready[pos:])
	ready[pos] = id
	return ready
}
