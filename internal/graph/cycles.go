package graph

// DetectCycle returns the node ids of one cycle, closed with its first id
// repeated at the end, or nil when the graph is acyclic. Edges that reference
// unknown nodes are ignored. Traversal follows declaration order, so the same
// graph always yields the same witness.
func DetectCycle(g Graph) []string {
	known := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		known[n.ID] = struct{}{}
	}
	succ := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		if _, ok := known[e.Source]; !ok {
			continue
		}
		if _, ok := known[e.Target]; !ok {
			continue
		}
		succ[e.Source] = append(succ[e.Source], e.Target)
	}

	// permanent: fully explored and not on a cycle; onStack: in the current path.
	permanent := make(map[string]bool, len(g.Nodes))
	onStack := make(map[string]bool)
	var path []string

	var visit func(id string) []string
	visit = func(id string) []string {
		if permanent[id] {
			return nil
		}
		if onStack[id] {
			for i, p := range path {
				if p == id {
					cycle := append([]string{}, path[i:]...)
					return append(cycle, id)
				}
			}
		}

		onStack[id] = true
		path = append(path, id)
		for _, next := range succ[id] {
			if cycle := visit(next); cycle != nil {
				return cycle
			}
		}
		path = path[:len(path)-1]
		delete(onStack, id)
		permanent[id] = true
		return nil
	}

	for _, n := range g.Nodes {
		if cycle := visit(n.ID); cycle != nil {
			return cycle
		}
	}
	return nil
}
