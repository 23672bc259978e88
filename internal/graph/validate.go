package graph

import (
	"errors"
	"fmt"
)

// Validate checks the structural rules of g and returns nil when the graph can
// be handed to the executor. All violations are collected and joined.
func Validate(g Graph) error {
	var errs []error

	nodes := make(map[string]struct{}, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			errs = append(errs, malformed(ViolationEmptyNodeID, "", fmt.Sprintf("node at position %d has an empty id", i)))
			continue
		}
		if _, dup := nodes[n.ID]; dup {
			errs = append(errs, malformed(ViolationDuplicateNode, n.ID, fmt.Sprintf("node id '%s' is declared more than once", n.ID)))
			continue
		}
		nodes[n.ID] = struct{}{}
		if n.Kind != KindTrigger && n.Kind != KindAction {
			errs = append(errs, malformed(ViolationUnknownKind, n.ID, fmt.Sprintf("node '%s' has unknown kind %s", n.ID, n.Kind)))
		}
	}

	edges := make(map[string]struct{}, len(g.Edges))
	for i, e := range g.Edges {
		ref := e.ID
		switch {
		case e.ID == "":
			errs = append(errs, malformed(ViolationEmptyEdgeID, "", fmt.Sprintf("edge at position %d has an empty id", i)))
			ref = fmt.Sprintf("#%d", i)
		default:
			if _, dup := edges[e.ID]; dup {
				errs = append(errs, malformed(ViolationDuplicateEdge, e.ID, fmt.Sprintf("edge id '%s' is declared more than once", e.ID)))
			}
			edges[e.ID] = struct{}{}
		}

		if e.Source == e.Target {
			errs = append(errs, malformed(ViolationSelfLoop, ref, fmt.Sprintf("edge '%s' connects node '%s' to itself", ref, e.Source)))
			continue
		}
		if _, ok := nodes[e.Source]; !ok {
			errs = append(errs, malformed(ViolationDanglingSource, ref, fmt.Sprintf("edge '%s' source node '%s' not found", ref, e.Source)))
		}
		if _, ok := nodes[e.Target]; !ok {
			errs = append(errs, malformed(ViolationDanglingTarget, ref, fmt.Sprintf("edge '%s' target node '%s' not found", ref, e.Target)))
		}
	}

	return errors.Join(errs...)
}
