package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/specialistvlad/burstflow/internal/catalog"
	"github.com/specialistvlad/burstflow/internal/graph"
)

// ErrNoSuggestion is returned when a text holds no fenced JSON block.
var ErrNoSuggestion = errors.New("no workflow suggestion found")

var suggestionBlock = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ExtractSuggestion finds the first fenced ```json block in text. It returns
// the text with that block removed, and the block body. ok is false when there
// is no block or the body is not valid JSON.
func ExtractSuggestion(text string) (content, suggestion string, ok bool) {
	loc := suggestionBlock.FindStringSubmatchIndex(text)
	if loc == nil {
		return strings.TrimSpace(text), "", false
	}
	body := text[loc[2]:loc[3]]
	if !json.Valid([]byte(body)) {
		return strings.TrimSpace(text), "", false
	}
	content = strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	return content, body, true
}

type suggestionDoc struct {
	Nodes *[]suggestionNode `json:"nodes"`
	Edges *[]suggestionEdge `json:"edges"`
}

// suggestionNode is a canvas node whose data names a catalog key. A flat
// nodeKey next to the id is accepted too.
type suggestionNode struct {
	ID     string         `json:"id"`
	Key    string         `json:"nodeKey"`
	Title  string         `json:"title"`
	Params map[string]any `json:"params"`
	Data   struct {
		NodeKey string         `json:"nodeKey"`
		Title   string         `json:"title"`
		Params  map[string]any `json:"params"`
	} `json:"data"`
}

func (sn suggestionNode) spec() nodeSpec {
	spec := nodeSpec{ID: sn.ID, Type: sn.Data.NodeKey, Title: sn.Data.Title, Params: sn.Data.Params}
	if spec.Type == "" {
		spec.Type = sn.Key
	}
	if spec.Title == "" {
		spec.Title = sn.Title
	}
	if spec.Params == nil {
		spec.Params = sn.Params
	}
	return spec
}

type suggestionEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// ParseSuggestion decodes a suggested workflow: a JSON object with "nodes" and
// "edges" arrays, where each node names a catalog key in data.nodeKey. Kind
// and default title come from the catalog, never from the node's own type.
func ParseSuggestion(raw []byte) (graph.Graph, error) {
	var doc suggestionDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return graph.Graph{}, fmt.Errorf("failed to decode suggestion: %w", err)
	}
	if doc.Nodes == nil || doc.Edges == nil {
		return graph.Graph{}, errors.New("suggestion must contain 'nodes' and 'edges' arrays")
	}

	var g graph.Graph
	for _, sn := range *doc.Nodes {
		spec := sn.spec()
		if _, ok := catalog.Lookup(spec.Type); !ok {
			return graph.Graph{}, fmt.Errorf("suggested node '%s' has unknown nodeKey '%s'", sn.ID, spec.Type)
		}
		n, err := resolveNode(spec)
		if err != nil {
			return graph.Graph{}, err
		}
		g.Nodes = append(g.Nodes, n)
	}
	for _, se := range *doc.Edges {
		id := se.ID
		if id == "" {
			id = fmt.Sprintf("e%s-%s", se.Source, se.Target)
		}
		g.Edges = append(g.Edges, graph.Edge{ID: id, Source: se.Source, Target: se.Target})
	}
	return g, nil
}

// SuggestionLoader reads a workflow from an assistant reply saved as text or
// markdown. The surrounding prose becomes the workflow name.
type SuggestionLoader struct{}

// NewSuggestionLoader creates a loader for saved assistant replies.
func NewSuggestionLoader() *SuggestionLoader { return &SuggestionLoader{} }

func (l *SuggestionLoader) Load(_ context.Context, path string) (*Workflow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file %s: %w", path, err)
	}
	content, body, ok := ExtractSuggestion(string(raw))
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSuggestion)
	}
	g, err := ParseSuggestion([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	name, _, _ := strings.Cut(content, "\n")
	return &Workflow{Name: strings.TrimSpace(name), Graph: g}, nil
}
