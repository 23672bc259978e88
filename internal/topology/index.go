// Package topology provides the adjacency index the executor walks during a
// run. An Index is built once from a graph snapshot and never mutated, so it
// needs no locking.
package topology

import (
	"github.com/specialistvlad/burstflow/internal/graph"
)

// Index maps node ids to nodes and to their downstream successors.
type Index struct {
	nodes      map[string]graph.Node
	successors map[string][]string
	order      []string
	triggers   []string
}

// Build indexes g. Successor lists follow edge declaration order. Edges whose
// source is unknown are kept under that source id so that a lookup miss is
// reported by the executor rather than hidden here. For duplicate node ids the
// first declaration wins.
func Build(g graph.Graph) *Index {
	idx := &Index{
		nodes:      make(map[string]graph.Node, len(g.Nodes)),
		successors: make(map[string][]string, len(g.Nodes)),
		order:      make([]string, 0, len(g.Nodes)),
	}
	for _, n := range g.Nodes {
		if _, exists := idx.nodes[n.ID]; exists {
			continue
		}
		idx.nodes[n.ID] = n
		idx.order = append(idx.order, n.ID)
		if n.Kind == graph.KindTrigger {
			idx.triggers = append(idx.triggers, n.ID)
		}
	}
	for _, e := range g.Edges {
		idx.successors[e.Source] = append(idx.successors[e.Source], e.Target)
	}
	return idx
}

// Node looks up a node by id.
func (i *Index) Node(id string) (graph.Node, bool) {
	n, ok := i.nodes[id]
	return n, ok
}

// Successors returns a copy of the ids directly downstream of id.
func (i *Index) Successors(id string) []string {
	succ := i.successors[id]
	if len(succ) == 0 {
		return nil
	}
	out := make([]string, len(succ))
	copy(out, succ)
	return out
}

// Triggers returns the trigger ids in declaration order.
func (i *Index) Triggers() []string {
	out := make([]string, len(i.triggers))
	copy(out, i.triggers)
	return out
}

// Len is the number of distinct nodes.
func (i *Index) Len() int {
	return len(i.nodes)
}

// Unreachable lists, in declaration order, the nodes no trigger can reach.
// Such nodes never run; tooling reports them as warnings.
func (i *Index) Unreachable() []string {
	seen := make(map[string]bool, len(i.nodes))
	queue := append([]string{}, i.triggers...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		queue = append(queue, i.successors[id]...)
	}

	var out []string
	for _, id := range i.order {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}
