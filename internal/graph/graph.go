package graph

import (
	"fmt"
	"strings"
)

// Kind distinguishes nodes that start a run from nodes that are reached by edges.
type Kind int

const (
	// KindAction is the zero value so that an unset kind never seeds a run.
	KindAction Kind = iota
	KindTrigger
)

// String returns the lower-case name used in workflow files.
func (k Kind) String() string {
	switch k {
	case KindTrigger:
		return "trigger"
	case KindAction:
		return "action"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a workflow-file kind name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trigger":
		return KindTrigger, nil
	case "action":
		return KindAction, nil
	default:
		return 0, fmt.Errorf("unknown node kind %q: must be 'trigger' or 'action'", s)
	}
}

// Descriptor is the node configuration handed to a runner. The engine never
// looks inside Params; Type selects which runner handles the node.
type Descriptor struct {
	Type   string
	Params map[string]any
}

// Node is a single unit of work in a workflow.
type Node struct {
	ID         string
	Kind       Kind
	Title      string
	Descriptor Descriptor
}

// DisplayName is the title when set, otherwise the id.
func (n Node) DisplayName() string {
	if n.Title != "" {
		return n.Title
	}
	return n.ID
}

// Edge is a directed "runs after" link from Source to Target.
type Edge struct {
	ID     string
	Source string
	Target string
}

// Graph is the set of nodes and edges that make up one workflow.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Triggers returns the trigger nodes in declaration order.
func (g Graph) Triggers() []Node {
	var triggers []Node
	for _, n := range g.Nodes {
		if n.Kind == KindTrigger {
			triggers = append(triggers, n)
		}
	}
	return triggers
}

// NodeByID finds a node by id with a linear scan. Use the topology index when
// doing repeated lookups.
func (g Graph) NodeByID(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Clone returns a deep copy of the graph, including descriptor params.
func (g Graph) Clone() Graph {
	out := Graph{}
	if g.Nodes != nil {
		out.Nodes = make([]Node, len(g.Nodes))
		for i, n := range g.Nodes {
			n.Descriptor.Params = cloneMap(n.Descriptor.Params)
			out.Nodes[i] = n
		}
	}
	if g.Edges != nil {
		out.Edges = make([]Edge, len(g.Edges))
		copy(out.Edges, g.Edges)
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
