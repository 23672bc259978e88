// Package runner defines how a single workflow node is executed. The engine
// only knows the Runner interface; concrete behavior is registered per node
// type in a Registry by modules.
package runner

import (
	"context"

	"github.com/specialistvlad/burstflow/internal/graph"
)

// Runner performs the side effect of one node. A nil error means success.
type Runner interface {
	Run(ctx context.Context, node graph.Node) error
}

// Func adapts a function to the Runner interface.
type Func func(ctx context.Context, node graph.Node) error

func (f Func) Run(ctx context.Context, node graph.Node) error {
	return f(ctx, node)
}
