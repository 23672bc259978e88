package graph

import "errors"

// ErrMalformedGraph is the kind of every structural violation found by Validate.
var ErrMalformedGraph = errors.New("malformed graph")

// Violation names one structural rule.
type Violation string

const (
	ViolationEmptyNodeID    Violation = "empty_node_id"
	ViolationDuplicateNode  Violation = "duplicate_node"
	ViolationUnknownKind    Violation = "unknown_kind"
	ViolationEmptyEdgeID    Violation = "empty_edge_id"
	ViolationDuplicateEdge  Violation = "duplicate_edge"
	ViolationDanglingSource Violation = "dangling_source"
	ViolationDanglingTarget Violation = "dangling_target"
	ViolationSelfLoop       Violation = "self_loop"
)

// GraphError describes one rule broken by a graph.
type GraphError struct {
	Kind      error
	Violation Violation
	// Ref is the offending node or edge id.
	Ref string
	Msg string
}

func (e *GraphError) Error() string {
	return e.Kind.Error() + ": " + e.Msg
}

func (e *GraphError) Unwrap() error {
	return e.Kind
}

func malformed(v Violation, ref, msg string) *GraphError {
	return &GraphError{Kind: ErrMalformedGraph, Violation: v, Ref: ref, Msg: msg}
}

// Violations extracts every *GraphError contained in err, in order, looking
// through wrapping and joined errors.
func Violations(err error) []*GraphError {
	switch e := err.(type) {
	case nil:
		return nil
	case *GraphError:
		return []*GraphError{e}
	case interface{ Unwrap() []error }:
		var out []*GraphError
		for _, inner := range e.Unwrap() {
			out = append(out, Violations(inner)...)
		}
		return out
	case interface{ Unwrap() error }:
		return Violations(e.Unwrap())
	default:
		return nil
	}
}
