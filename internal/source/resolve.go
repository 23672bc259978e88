package source

import (
	"fmt"

	"github.com/specialistvlad/burstflow/internal/catalog"
	"github.com/specialistvlad/burstflow/internal/graph"
)

// nodeSpec is a node as written in a file, before catalog defaults apply.
type nodeSpec struct {
	ID     string
	Type   string
	Kind   string
	Title  string
	Params map[string]any
}

// resolveNode fills kind and title from the catalog when the file leaves them
// out. A type the catalog does not know must state its kind.
func resolveNode(spec nodeSpec) (graph.Node, error) {
	if spec.Type == "" {
		return graph.Node{}, fmt.Errorf("node '%s': type is required", spec.ID)
	}
	def, known := catalog.Lookup(spec.Type)

	n := graph.Node{
		ID:    spec.ID,
		Title: spec.Title,
		Descriptor: graph.Descriptor{
			Type:   spec.Type,
			Params: spec.Params,
		},
	}

	switch {
	case spec.Kind != "":
		kind, err := graph.ParseKind(spec.Kind)
		if err != nil {
			return graph.Node{}, fmt.Errorf("node '%s': %w", spec.ID, err)
		}
		n.Kind = kind
	case known:
		n.Kind = def.Kind
	default:
		return graph.Node{}, fmt.Errorf("node '%s': kind is required for type '%s' which is not in the catalog", spec.ID, spec.Type)
	}

	if n.Title == "" && known {
		n.Title = def.Title
	}
	return n, nil
}
