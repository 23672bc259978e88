package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/specialistvlad/burstflow/internal/catalog"
	"github.com/specialistvlad/burstflow/internal/ctxlog"
	"github.com/specialistvlad/burstflow/internal/graph"
	"github.com/specialistvlad/burstflow/internal/runner"
)

// Module implements the runner.Module interface for this package.
type Module struct {
	// Out receives the printed params. Defaults to os.Stdout.
	Out io.Writer
}

// Run writes the node title followed by its params, sorted by key.
func (m *Module) Run(ctx context.Context, node graph.Node) error {
	ctxlog.FromContext(ctx).Info("Printing node params.", "node_id", node.ID)

	out := m.Out
	if out == nil {
		out = os.Stdout
	}

	if _, err := fmt.Fprintf(out, "    %s\n", node.DisplayName()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	params := node.Descriptor.Params
	if len(params) == 0 {
		_, err := fmt.Fprintln(out, "      (null)")
		return err
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(out, "      %s = %s\n", k, format(params[k])); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func format(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}

// Register registers the runner with the registry.
func (m *Module) Register(r *runner.Registry) {
	r.Register(catalog.Print, m)
}
