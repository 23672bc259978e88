package print

import (
	"bytes"
	"context"
	"testing"

	"github.com/specialistvlad/burstflow/internal/catalog"
	"github.com/specialistvlad/burstflow/internal/graph"
	"github.com/specialistvlad/burstflow/internal/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint(t *testing.T) {
	t.Parallel()

	t.Run("params sorted by key", func(t *testing.T) {
		var buf bytes.Buffer
		reg := runner.NewRegistry()
		(&Module{Out: &buf}).Register(reg)

		n := graph.Node{ID: "2", Title: "Greeting", Descriptor: graph.Descriptor{
			Type:   catalog.Print,
			Params: map[string]any{"to": "world", "count": float64(2), "loud": true},
		}}
		require.NoError(t, reg.Run(context.Background(), n))
		assert.Equal(t, "    Greeting\n      count = 2\n      loud = true\n      to = \"world\"\n", buf.String())
	})

	t.Run("no params", func(t *testing.T) {
		var buf bytes.Buffer
		m := &Module{Out: &buf}
		require.NoError(t, m.Run(context.Background(), graph.Node{ID: "9", Descriptor: graph.Descriptor{Type: catalog.Print}}))
		assert.Equal(t, "    9\n      (null)\n", buf.String())
	})
}
