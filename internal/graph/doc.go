// Package graph defines the workflow graph: trigger and action nodes joined by
// directed edges, plus the structural rules a graph must satisfy before it can
// be run.
//
// # Model
//
// A Graph is a plain value. Nodes and edges are kept in declaration order,
// because that order is observable: triggers are seeded in node order and
// successors are visited in edge order. A graph with zero triggers is
// well-formed but cannot be run.
//
// # Validation
//
// Validate checks a graph once, before a run starts. Every violation is
// reported through a *GraphError whose kind is ErrMalformedGraph, so callers can
// use errors.Is without inspecting messages:
//
//	if err := graph.Validate(g); errors.Is(err, graph.ErrMalformedGraph) {
//		// reject the workflow
//	}
//
// Cycles are not a validation failure. The executor never runs a node twice in
// one run, so a cycle simply ends where it meets an executed node. DetectCycle
// exists for tooling that wants to warn about them.
//
// # Snapshots
//
// The executor works on Clone() of the caller's graph so that later edits by
// the caller cannot leak into a run in progress.
package graph
