package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() Graph {
	return Graph{
		Nodes: []Node{
			{ID: "1", Kind: KindTrigger, Title: "Webhook", Descriptor: Descriptor{Type: "webhook", Params: map[string]any{
				"path":    "/hooks/order",
				"headers": map[string]any{"x-token": "abc"},
				"tags":    []any{"a", map[string]any{"b": 1}},
			}}},
			{ID: "2", Kind: KindAction, Title: "Send WhatsApp", Descriptor: Descriptor{Type: "whatsapp"}},
			{ID: "3", Kind: KindAction, Descriptor: Descriptor{Type: "email"}},
		},
		Edges: []Edge{
			{ID: "e1-2", Source: "1", Target: "2"},
			{ID: "e1-3", Source: "1", Target: "3"},
		},
	}
}

func TestKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "trigger", KindTrigger.String())
	assert.Equal(t, "action", KindAction.String())
	assert.Equal(t, "kind(7)", Kind(7).String())

	k, err := ParseKind(" Trigger ")
	require.NoError(t, err)
	assert.Equal(t, KindTrigger, k)

	k, err = ParseKind("action")
	require.NoError(t, err)
	assert.Equal(t, KindAction, k)

	_, err = ParseKind("condition")
	assert.ErrorContains(t, err, "unknown node kind")
}

func TestNode_DisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Send", Node{ID: "2", Title: "Send"}.DisplayName())
	assert.Equal(t, "2", Node{ID: "2"}.DisplayName())
}

func TestGraph_Triggers(t *testing.T) {
	t.Parallel()

	g := Graph{Nodes: []Node{
		{ID: "a", Kind: KindAction},
		{ID: "t2", Kind: KindTrigger},
		{ID: "t1", Kind: KindTrigger},
	}}

	triggers := g.Triggers()
	require.Len(t, triggers, 2)
	assert.Equal(t, "t2", triggers[0].ID, "declaration order must be kept")
	assert.Equal(t, "t1", triggers[1].ID)

	assert.Empty(t, Graph{}.Triggers())
}

func TestGraph_NodeByID(t *testing.T) {
	t.Parallel()

	g := sampleGraph()
	n, ok := g.NodeByID("2")
	require.True(t, ok)
	assert.Equal(t, "Send WhatsApp", n.Title)

	_, ok = g.NodeByID("missing")
	assert.False(t, ok)
}

func TestGraph_Clone(t *testing.T) {
	t.Parallel()

	t.Run("copy is equal to the original", func(t *testing.T) {
		g := sampleGraph()
		assert.Equal(t, g, g.Clone())
	})

	t.Run("mutating the original does not leak into the copy", func(t *testing.T) {
		g := sampleGraph()
		snapshot := g.Clone()

		g.Nodes[0].Title = "changed"
		g.Nodes[0].Descriptor.Params["path"] = "/other"
		g.Nodes[0].Descriptor.Params["headers"].(map[string]any)["x-token"] = "changed"
		g.Nodes[0].Descriptor.Params["tags"].([]any)[0] = "changed"
		g.Edges[0].Target = "3"

		assert.Equal(t, sampleGraph(), snapshot)
	})

	t.Run("nil slices stay nil", func(t *testing.T) {
		c := Graph{}.Clone()
		assert.Nil(t, c.Nodes)
		assert.Nil(t, c.Edges)
	})
}

func TestDetectCycle(t *testing.T) {
	t.Parallel()

	nodes := func(ids ...string) []Node {
		out := make([]Node, len(ids))
		for i, id := range ids {
			out[i] = Node{ID: id}
		}
		return out
	}

	t.Run("empty graph has no cycles", func(t *testing.T) {
		assert.Nil(t, DetectCycle(Graph{}))
	})

	t.Run("diamond has no cycles", func(t *testing.T) {
		g := Graph{
			Nodes: nodes("a", "b", "c", "d"),
			Edges: []Edge{
				{ID: "1", Source: "a", Target: "b"},
				{ID: "2", Source: "a", Target: "c"},
				{ID: "3", Source: "b", Target: "d"},
				{ID: "4", Source: "c", Target: "d"},
			},
		}
		assert.Nil(t, DetectCycle(g))
	})

	t.Run("direct cycle is detected", func(t *testing.T) {
		g := Graph{
			Nodes: nodes("a", "b"),
			Edges: []Edge{
				{ID: "1", Source: "a", Target: "b"},
				{ID: "2", Source: "b", Target: "a"},
			},
		}
		assert.Equal(t, []string{"a", "b", "a"}, DetectCycle(g))
	})

	t.Run("longer cycle is detected from the path", func(t *testing.T) {
		g := Graph{
			Nodes: nodes("start", "a", "b", "c"),
			Edges: []Edge{
				{ID: "1", Source: "start", Target: "a"},
				{ID: "2", Source: "a", Target: "b"},
				{ID: "3", Source: "b", Target: "c"},
				{ID: "4", Source: "c", Target: "a"},
			},
		}
		assert.Equal(t, []string{"a", "b", "c", "a"}, DetectCycle(g))
	})

	t.Run("dangling edges are ignored", func(t *testing.T) {
		g := Graph{
			Nodes: nodes("a"),
			Edges: []Edge{{ID: "1", Source: "a", Target: "ghost"}},
		}
		assert.Nil(t, DetectCycle(g))
	})
}
