package testutil

import (
	"fmt"

	"github.com/specialistvlad/burstflow/internal/graph"
)

// GraphBuilder assembles graphs for tests. Node titles default to the id and
// edge ids are derived from their endpoints.
type GraphBuilder struct {
	g graph.Graph
}

// NewGraph starts an empty graph.
func NewGraph() *GraphBuilder {
	return &GraphBuilder{}
}

// Trigger adds a trigger node of type "webhook".
func (b *GraphBuilder) Trigger(ids ...string) *GraphBuilder {
	for _, id := range ids {
		b.g.Nodes = append(b.g.Nodes, graph.Node{
			ID: id, Kind: graph.KindTrigger, Title: id,
			Descriptor: graph.Descriptor{Type: "webhook"},
		})
	}
	return b
}

// Action adds action nodes of type "email".
func (b *GraphBuilder) Action(ids ...string) *GraphBuilder {
	for _, id := range ids {
		b.g.Nodes = append(b.g.Nodes, graph.Node{
			ID: id, Kind: graph.KindAction, Title: id,
			Descriptor: graph.Descriptor{Type: "email"},
		})
	}
	return b
}

// Edge links source to each target, in argument order.
func (b *GraphBuilder) Edge(source string, targets ...string) *GraphBuilder {
	for _, target := range targets {
		id := fmt.Sprintf("e%s-%s", source, target)
		for n := 2; b.hasEdge(id); n++ {
			id = fmt.Sprintf("e%s-%s-%d", source, target, n)
		}
		b.g.Edges = append(b.g.Edges, graph.Edge{ID: id, Source: source, Target: target})
	}
	return b
}

func (b *GraphBuilder) hasEdge(id string) bool {
	for _, e := range b.g.Edges {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Build returns a copy of the assembled graph.
func (b *GraphBuilder) Build() graph.Graph {
	return b.g.Clone()
}
