package source

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/burstflow/internal/catalog"
	"github.com/specialistvlad/burstflow/internal/graph"
	"github.com/specialistvlad/burstflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fanOutHCL = `
workflow "orders" {
  name = "Order notifications"
}

node "1" {
  type = "webhook"
}

node "2" {
  type   = "http_request"
  title  = "Notify CRM"
  params = {
    url    = "https://crm.example/hook"
    method = "POST"
    retries = 2
  }
}

node "3" {
  type = "email"
}

edge "e1-2" {
  source = "1"
  target = "2"
}

edge "e1-3" {
  source = "1"
  target = "3"
}
`

func TestLoad_HCL(t *testing.T) {
	t.Parallel()
	dir := testutil.WriteFiles(t, map[string]string{"orders.hcl": fanOutHCL})

	wf, err := Load(context.Background(), filepath.Join(dir, "orders.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "orders", wf.ID)
	assert.Equal(t, "Order notifications", wf.Name)
	assert.Equal(t, filepath.Join(dir, "orders.hcl"), wf.Path)
	require.Len(t, wf.Graph.Nodes, 3)

	trigger := wf.Graph.Nodes[0]
	assert.Equal(t, graph.KindTrigger, trigger.Kind)
	assert.Equal(t, "Webhook Trigger", trigger.Title, "title defaults from the catalog")
	assert.Nil(t, trigger.Descriptor.Params)

	crm := wf.Graph.Nodes[1]
	assert.Equal(t, graph.KindAction, crm.Kind)
	assert.Equal(t, "Notify CRM", crm.Title)
	assert.Equal(t, map[string]any{
		"url":     "https://crm.example/hook",
		"method":  "POST",
		"retries": float64(2),
	}, crm.Descriptor.Params)

	assert.Equal(t, []graph.Edge{
		{ID: "e1-2", Source: "1", Target: "2"},
		{ID: "e1-3", Source: "1", Target: "3"},
	}, wf.Graph.Edges)
	require.NoError(t, graph.Validate(wf.Graph))
}

func TestLoad_HCL_DefaultIDFromFileName(t *testing.T) {
	t.Parallel()
	dir := testutil.WriteFiles(t, map[string]string{"nightly.hcl": `node "a" { type = "webhook" }`})

	wf, err := Load(context.Background(), filepath.Join(dir, "nightly.hcl"))
	require.NoError(t, err)
	assert.Equal(t, "nightly", wf.ID)
	assert.Empty(t, wf.Name)
}

func TestLoad_HCL_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"syntax error", `node "a" {`, "failed to parse HCL file"},
		{"unknown block", `pipeline "x" {}`, "failed to decode HCL file"},
		{"missing type", `node "a" { kind = "trigger" }`, "failed to decode HCL file"},
		{"unknown type without kind", `node "a" { type = "fax" }`, "kind is required for type 'fax'"},
		{"bad kind", `node "a" {
  type = "fax"
  kind = "sensor"
}`, "unknown node kind"},
		{"params not an object", `node "a" {
  type   = "print"
  params = "loud"
}`, "params must be an object"},
		{"params reference a variable", `node "a" {
  type   = "print"
  params = { to = var.recipient }
}`, "failed to evaluate params"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewHCLLoader().Decode(context.Background(), []byte(tc.src), "test.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_HCL_CustomTypeWithKind(t *testing.T) {
	t.Parallel()

	wf, err := NewHCLLoader().Decode(context.Background(), []byte(`
node "a" {
  type = "fax"
  kind = "action"
}`), "test.hcl")
	require.NoError(t, err)
	require.Len(t, wf.Graph.Nodes, 1)
	assert.Equal(t, graph.KindAction, wf.Graph.Nodes[0].Kind)
	assert.Equal(t, "a", wf.Graph.Nodes[0].DisplayName(), "untitled nodes fall back to their id")
}

func TestLoad_JSONDocument(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		doc  string
	}{
		{
			name: "nested graph",
			doc: `{
  "id": "wf-1",
  "name": "Greetings",
  "graph": {
    "nodes": [
      {"id": "1", "type": "trigger", "data": {"nodeKey": "webhook", "title": "Webhook Trigger"}},
      {"id": "2", "type": "action", "data": {"nodeKey": "whatsapp", "title": "Say hi", "params": {"to": "+100"}}}
    ],
    "edges": [{"id": "e1-2", "source": "1", "target": "2"}]
  },
  "viewport": {"x": 0, "y": 0, "zoom": 1}
}`,
		},
		{
			name: "top level nodes without nodeKey",
			doc: `{
  "id": "wf-1",
  "name": "Greetings",
  "nodes": [
    {"id": "1", "type": "trigger", "data": {"title": "Webhook Trigger"}},
    {"id": "2", "data": {"nodeKey": "whatsapp", "title": "Say hi", "params": {"to": "+100"}}}
  ],
  "edges": [{"id": "e1-2", "source": "1", "target": "2"}]
}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			dir := testutil.WriteFiles(t, map[string]string{"wf.json": tc.doc})

			wf, err := Load(context.Background(), filepath.Join(dir, "wf.json"))
			require.NoError(t, err)
			assert.Equal(t, "wf-1", wf.ID)
			assert.Equal(t, "Greetings", wf.Name)
			assert.Equal(t, graph.Graph{
				Nodes: []graph.Node{
					{ID: "1", Kind: graph.KindTrigger, Title: "Webhook Trigger", Descriptor: graph.Descriptor{Type: "webhook"}},
					{ID: "2", Kind: graph.KindAction, Title: "Say hi", Descriptor: graph.Descriptor{Type: "whatsapp", Params: map[string]any{"to": "+100"}}},
				},
				Edges: []graph.Edge{{ID: "e1-2", Source: "1", Target: "2"}},
			}, wf.Graph)
		})
	}
}

func TestLoad_YAMLDocument(t *testing.T) {
	t.Parallel()
	dir := testutil.WriteFiles(t, map[string]string{"wf.yml": `
name: Greetings
nodes:
  - id: "1"
    type: trigger
    data:
      nodeKey: webhook
  - id: "2"
    data:
      nodeKey: email
      params:
        to: ops@example.com
edges:
  - id: e1-2
    source: "1"
    target: "2"
`})

	wf, err := Load(context.Background(), filepath.Join(dir, "wf.yml"))
	require.NoError(t, err)
	assert.Equal(t, "wf", wf.ID)
	require.Len(t, wf.Graph.Nodes, 2)
	assert.Equal(t, "Send E-mail", wf.Graph.Nodes[1].Title)
	assert.Equal(t, map[string]any{"to": "ops@example.com"}, wf.Graph.Nodes[1].Descriptor.Params)
	assert.Equal(t, []graph.Edge{{ID: "e1-2", Source: "1", Target: "2"}}, wf.Graph.Edges)
}

func TestLoad_DocumentValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"edge without target", `{"nodes": [], "edges": [{"id": "e1", "source": "1"}]}`, "invalid workflow document"},
		{"node without id", `{"nodes": [{"data": {"nodeKey": "email"}}], "edges": []}`, "invalid workflow document"},
		{"unknown kind", `{"nodes": [{"id": "1", "type": "sensor", "data": {"nodeKey": "email"}}], "edges": []}`, "invalid workflow document"},
		{"no key and unknown title", `{"nodes": [{"id": "1", "data": {"title": "Fax"}}], "edges": []}`, "data.nodeKey is required"},
		{"broken json", `{"nodes": [`, "failed to decode JSON file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			dir := testutil.WriteFiles(t, map[string]string{"wf.json": tc.doc})
			_, err := Load(context.Background(), filepath.Join(dir, "wf.json"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestFromWorkflow_RoundTrip(t *testing.T) {
	t.Parallel()

	wf := &Workflow{ID: "wf", Name: "n", Graph: graph.Graph{
		Nodes: []graph.Node{
			{ID: "1", Kind: graph.KindTrigger, Title: "Webhook Trigger", Descriptor: graph.Descriptor{Type: "webhook"}},
			{ID: "2", Kind: graph.KindAction, Title: "Print", Descriptor: graph.Descriptor{Type: "print", Params: map[string]any{"msg": "hi"}}},
		},
		Edges: []graph.Edge{{ID: "e1-2", Source: "1", Target: "2"}},
	}}

	back, err := FromWorkflow(wf).ToWorkflow()
	require.NoError(t, err)
	assert.Equal(t, wf.Graph, back.Graph)
}

func TestSave(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	wf := &Workflow{ID: "starter", Name: "Starter", Graph: catalog.SampleGraph()}

	for _, name := range []string{"starter.json", "starter.yaml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(path, wf))

			back, err := Load(ctx, path)
			require.NoError(t, err)
			assert.Equal(t, "starter", back.ID)
			assert.Equal(t, "Starter", back.Name)
			assert.Equal(t, wf.Graph, back.Graph)

			err = Save(path, wf)
			require.Error(t, err)
			assert.ErrorIs(t, err, os.ErrExist)
		})
	}

	t.Run("graph is only written under graph", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "starter.json")
		require.NoError(t, Save(path, wf))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		var top map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &top))
		assert.Len(t, top, 3)
		assert.Contains(t, top, "graph")
		assert.NotContains(t, top, "nodes")
		assert.NotContains(t, top, "edges")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()
		err := Save(filepath.Join(t.TempDir(), "starter.hcl"), wf)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestExtractSuggestion(t *testing.T) {
	t.Parallel()

	t.Run("fenced block is split out", func(t *testing.T) {
		t.Parallel()
		text := "Here is a flow.\n```json\n{\"nodes\": [], \"edges\": []}\n```\nEnjoy."
		content, suggestion, ok := ExtractSuggestion(text)
		require.True(t, ok)
		assert.Equal(t, `{"nodes": [], "edges": []}`, suggestion)
		assert.Equal(t, "Here is a flow.\n\nEnjoy.", content)
	})

	t.Run("no block", func(t *testing.T) {
		t.Parallel()
		content, suggestion, ok := ExtractSuggestion("  just text  ")
		assert.False(t, ok)
		assert.Empty(t, suggestion)
		assert.Equal(t, "just text", content)
	})

	t.Run("invalid json in block", func(t *testing.T) {
		t.Parallel()
		_, _, ok := ExtractSuggestion("```json\n{nodes: }\n```")
		assert.False(t, ok)
	})
}

func TestParseSuggestion(t *testing.T) {
	t.Parallel()

	t.Run("catalog fills kind and title", func(t *testing.T) {
		t.Parallel()
		g, err := ParseSuggestion([]byte(`{
  "nodes": [{"id": "1", "nodeKey": "webhook"}, {"id": "2", "nodeKey": "ai_action", "title": "Summarize"}],
  "edges": [{"source": "1", "target": "2"}]
}`))
		require.NoError(t, err)
		assert.Equal(t, graph.KindTrigger, g.Nodes[0].Kind)
		assert.Equal(t, "Webhook Trigger", g.Nodes[0].Title)
		assert.Equal(t, "Summarize", g.Nodes[1].Title)
		assert.Equal(t, []graph.Edge{{ID: "e1-2", Source: "1", Target: "2"}}, g.Edges)
	})

	t.Run("canvas nodes carry the key in data", func(t *testing.T) {
		t.Parallel()
		g, err := ParseSuggestion([]byte(`{
  "nodes": [
    {"id": "1", "type": "trigger", "position": {"x": 0, "y": 0}, "data": {"nodeKey": "webhook"}},
    {"id": "2", "type": "action", "position": {"x": 0, "y": 120}, "data": {"nodeKey": "email", "params": {"to": "ops@example.com"}}}
  ],
  "edges": [{"id": "e1-2", "source": "1", "target": "2"}]
}`))
		require.NoError(t, err)
		require.Len(t, g.Nodes, 2)
		assert.Equal(t, "webhook", g.Nodes[0].Descriptor.Type)
		assert.Equal(t, graph.KindTrigger, g.Nodes[0].Kind)
		assert.Equal(t, "email", g.Nodes[1].Descriptor.Type)
		assert.Equal(t, graph.KindAction, g.Nodes[1].Kind)
		assert.Equal(t, map[string]any{"to": "ops@example.com"}, g.Nodes[1].Descriptor.Params)
		assert.Equal(t, []graph.Edge{{ID: "e1-2", Source: "1", Target: "2"}}, g.Edges)
	})

	t.Run("unknown key in data", func(t *testing.T) {
		t.Parallel()
		_, err := ParseSuggestion([]byte(`{"nodes": [{"id": "1", "data": {"nodeKey": "fax"}}], "edges": []}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown nodeKey 'fax'")
	})

	t.Run("missing arrays", func(t *testing.T) {
		t.Parallel()
		_, err := ParseSuggestion([]byte(`{"nodes": []}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "'nodes' and 'edges'")
	})

	t.Run("unknown node key", func(t *testing.T) {
		t.Parallel()
		_, err := ParseSuggestion([]byte(`{"nodes": [{"id": "1", "nodeKey": "fax"}], "edges": []}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown nodeKey 'fax'")
	})
}

func TestLoad_Suggestion(t *testing.T) {
	t.Parallel()
	dir := testutil.WriteFiles(t, map[string]string{"reply.md": "Welcome flow\nSends a greeting.\n\n```json\n" +
		`{"nodes": [{"id": "1", "type": "trigger", "data": {"nodeKey": "webhook"}}, {"id": "2", "type": "action", "data": {"nodeKey": "whatsapp"}}], "edges": [{"id": "e1", "source": "1", "target": "2"}]}` +
		"\n```\n"})

	wf, err := Load(context.Background(), filepath.Join(dir, "reply.md"))
	require.NoError(t, err)
	assert.Equal(t, "reply", wf.ID)
	assert.Equal(t, "Welcome flow", wf.Name)
	assert.Len(t, wf.Graph.Nodes, 2)
	assert.Len(t, wf.Graph.Edges, 1)

	dir = testutil.WriteFiles(t, map[string]string{"empty.txt": "nothing to see"})
	_, err = Load(context.Background(), filepath.Join(dir, "empty.txt"))
	assert.ErrorIs(t, err, ErrNoSuggestion)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "workflow.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDiscover(t *testing.T) {
	t.Parallel()
	dir := testutil.WriteFiles(t, map[string]string{
		"a.hcl":        "",
		"b.JSON":       "",
		"nested/c.yml": "",
		"notes.go":     "",
	})

	files, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.hcl"),
		filepath.Join(dir, "b.JSON"),
		filepath.Join(dir, "nested", "c.yml"),
	}, files)
}

func TestExtensions(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{".hcl", ".json", ".md", ".txt", ".yaml", ".yml"}, Extensions())
}
