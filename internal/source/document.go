package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/burstflow/internal/catalog"
	"github.com/specialistvlad/burstflow/internal/graph"
)

var validate = validator.New()

// Document is the stored form of a workflow as saved by the builder. The graph
// may sit under "graph" or directly at the top level.
type Document struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	Graph         *DocumentGraph `json:"graph,omitempty" yaml:"graph,omitempty"`
	DocumentGraph `yaml:",inline"`
}

// DocumentGraph holds canvas nodes and edges.
type DocumentGraph struct {
	Nodes []DocumentNode `json:"nodes" yaml:"nodes" validate:"dive"`
	Edges []DocumentEdge `json:"edges" yaml:"edges" validate:"dive"`
}

// DocumentNode is a canvas node. Type is the node kind.
type DocumentNode struct {
	ID   string           `json:"id" yaml:"id" validate:"required"`
	Type string           `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=trigger action"`
	Data DocumentNodeData `json:"data" yaml:"data"`
}

// DocumentNodeData carries the catalog key and per-node settings. Older saves
// have no nodeKey and are matched to the catalog by title.
type DocumentNodeData struct {
	NodeKey     string         `json:"nodeKey,omitempty" yaml:"nodeKey,omitempty"`
	Title       string         `json:"title,omitempty" yaml:"title,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Params      map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// DocumentEdge is a canvas edge.
type DocumentEdge struct {
	ID     string `json:"id" yaml:"id" validate:"required"`
	Source string `json:"source" yaml:"source" validate:"required"`
	Target string `json:"target" yaml:"target" validate:"required"`
}

// ToWorkflow checks the document tags and converts it to a Workflow.
func (d *Document) ToWorkflow() (*Workflow, error) {
	if err := validate.Struct(d); err != nil {
		return nil, fmt.Errorf("invalid workflow document: %w", err)
	}

	g := d.DocumentGraph
	if d.Graph != nil {
		g = *d.Graph
	}

	wf := &Workflow{ID: d.ID, Name: d.Name}
	for _, n := range g.Nodes {
		key := n.Data.NodeKey
		if key == "" {
			def, ok := catalog.ByTitle(n.Data.Title)
			if !ok {
				return nil, fmt.Errorf("node '%s': data.nodeKey is required", n.ID)
			}
			key = def.Key
		}
		node, err := resolveNode(nodeSpec{
			ID:     n.ID,
			Type:   key,
			Kind:   n.Type,
			Title:  n.Data.Title,
			Params: n.Data.Params,
		})
		if err != nil {
			return nil, err
		}
		wf.Graph.Nodes = append(wf.Graph.Nodes, node)
	}
	for _, e := range g.Edges {
		wf.Graph.Edges = append(wf.Graph.Edges, graph.Edge{ID: e.ID, Source: e.Source, Target: e.Target})
	}
	return wf, nil
}

// FromWorkflow is the inverse of ToWorkflow, used to export workflows.
func FromWorkflow(wf *Workflow) *Document {
	d := &Document{ID: wf.ID, Name: wf.Name, Graph: &DocumentGraph{}}
	for _, n := range wf.Graph.Nodes {
		d.Graph.Nodes = append(d.Graph.Nodes, DocumentNode{
			ID:   n.ID,
			Type: n.Kind.String(),
			Data: DocumentNodeData{NodeKey: n.Descriptor.Type, Title: n.Title, Params: n.Descriptor.Params},
		})
	}
	for _, e := range wf.Graph.Edges {
		d.Graph.Edges = append(d.Graph.Edges, DocumentEdge{ID: e.ID, Source: e.Source, Target: e.Target})
	}
	return d
}

// JSONLoader reads JSON workflow documents.
type JSONLoader struct{}

// NewJSONLoader creates a JSON workflow loader.
func NewJSONLoader() *JSONLoader { return &JSONLoader{} }

func (l *JSONLoader) Load(_ context.Context, path string) (*Workflow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode JSON file %s: %w", path, err)
	}
	wf, err := doc.ToWorkflow()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return wf, nil
}

// YAMLLoader reads YAML workflow documents.
type YAMLLoader struct{}

// NewYAMLLoader creates a YAML workflow loader.
func NewYAMLLoader() *YAMLLoader { return &YAMLLoader{} }

func (l *YAMLLoader) Load(_ context.Context, path string) (*Workflow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}
	wf, err := doc.ToWorkflow()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return wf, nil
}

// savedDocument is the shape Save writes: the graph always sits under "graph".
type savedDocument struct {
	ID    string        `json:"id" yaml:"id"`
	Name  string        `json:"name" yaml:"name"`
	Graph DocumentGraph `json:"graph" yaml:"graph"`
}

// Save writes wf to path as a workflow document. The extension picks the
// encoding: .json, or .yaml/.yml. An existing file is never replaced.
func Save(path string, wf *Workflow) error {
	d := FromWorkflow(wf)
	doc := savedDocument{ID: d.ID, Name: d.Name, Graph: *d.Graph}

	var (
		raw []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		raw, err = json.MarshalIndent(doc, "", "  ")
		raw = append(raw, '\n')
	case ".yaml", ".yml":
		raw, err = yaml.Marshal(doc)
	default:
		return fmt.Errorf("%w: cannot save '%s', use .json or .yaml", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return fmt.Errorf("failed to encode workflow %s: %w", wf.ID, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create workflow file: %w", err)
	}
	if _, err := f.Write(raw); err != nil {
		f.Close()
		return fmt.Errorf("failed to write workflow file %s: %w", path, err)
	}
	return f.Close()
}
