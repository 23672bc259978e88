package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/specialistvlad/burstflow/internal/ctxlog"
	"github.com/specialistvlad/burstflow/internal/graph"
)

// HCLLoader reads workflows written as HCL:
//
//	workflow "orders" {
//	  name = "Order notifications"
//	}
//
//	node "1" {
//	  type = "webhook"
//	}
//
//	node "2" {
//	  type   = "http_request"
//	  title  = "Notify CRM"
//	  params = { url = "https://crm.example/hook", method = "POST" }
//	}
//
//	edge "e1-2" {
//	  source = "1"
//	  target = "2"
//	}
//
// Nodes and edges keep the order in which they appear in the file.
type HCLLoader struct{}

// NewHCLLoader creates a new HCL workflow loader.
func NewHCLLoader() *HCLLoader {
	return &HCLLoader{}
}

// fileRoot decodes all top-level blocks of a workflow file.
type fileRoot struct {
	Workflow *hclWorkflow `hcl:"workflow,block"`
	Nodes    []*hclNode   `hcl:"node,block"`
	Edges    []*hclEdge   `hcl:"edge,block"`
}

type hclWorkflow struct {
	ID   string `hcl:"id,label"`
	Name string `hcl:"name,optional"`
}

type hclNode struct {
	ID     string         `hcl:"id,label"`
	Type   string         `hcl:"type"`
	Kind   string         `hcl:"kind,optional"`
	Title  string         `hcl:"title,optional"`
	Params hcl.Expression `hcl:"params,optional"`
}

type hclEdge struct {
	ID     string `hcl:"id,label"`
	Source string `hcl:"source"`
	Target string `hcl:"target"`
}

// Load parses and decodes the HCL file at path.
func (l *HCLLoader) Load(ctx context.Context, path string) (*Workflow, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file %s: %w", path, err)
	}
	return l.Decode(ctx, src, path)
}

// Decode parses src as if it were read from filename.
func (l *HCLLoader) Decode(ctx context.Context, src []byte, filename string) (*Workflow, error) {
	logger := ctxlog.FromContext(ctx)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	wf := &Workflow{}
	if root.Workflow != nil {
		wf.ID = root.Workflow.ID
		wf.Name = root.Workflow.Name
	}

	for _, n := range root.Nodes {
		params, err := evalParams(n.Params)
		if err != nil {
			return nil, fmt.Errorf("node '%s' in %s: %w", n.ID, filename, err)
		}
		node, err := resolveNode(nodeSpec{ID: n.ID, Type: n.Type, Kind: n.Kind, Title: n.Title, Params: params})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		wf.Graph.Nodes = append(wf.Graph.Nodes, node)
	}
	for _, e := range root.Edges {
		wf.Graph.Edges = append(wf.Graph.Edges, graph.Edge{ID: e.ID, Source: e.Source, Target: e.Target})
	}

	logger.Debug("HCL workflow decoded.", "file", filename, "nodes", len(wf.Graph.Nodes), "edges", len(wf.Graph.Edges))
	return wf, nil
}

// evalParams evaluates a params expression with no variables in scope and
// converts the resulting object to plain Go values.
func evalParams(expr hcl.Expression) (map[string]any, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate params: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("params must be fully known at load time")
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("params must be an object, got %s", ty.FriendlyName())
	}
	return ctyToMap(val)
}

func ctyToMap(val cty.Value) (map[string]any, error) {
	raw, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return nil, fmt.Errorf("failed to convert params: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to convert params: %w", err)
	}
	return out, nil
}
