package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/specialistvlad/burstflow/internal/graph"
)

// ErrNoHandler is returned when a node's type has no registered runner.
var ErrNoHandler = errors.New("no runner registered for node type")

// Module is implemented by every package that contributes runners.
type Module interface {
	Register(r *Registry)
}

// Registry dispatches nodes to runners by descriptor type.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Runner
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Runner)}
}

// Register binds nodeType to r. Registering the same type twice is a
// programming error and panics.
func (reg *Registry) Register(nodeType string, r Runner) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if nodeType == "" {
		panic("runner: node type must not be empty")
	}
	if _, exists := reg.handlers[nodeType]; exists {
		panic(fmt.Sprintf("runner for node type '%s' already registered", nodeType))
	}
	slog.Debug("Registering node runner.", "type", nodeType)
	reg.handlers[nodeType] = r
}

// Lookup returns the runner bound to nodeType.
func (reg *Registry) Lookup(nodeType string) (Runner, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.handlers[nodeType]
	return r, ok
}

// Types lists the registered node types in sorted order.
func (reg *Registry) Types() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	types := make([]string, 0, len(reg.handlers))
	for t := range reg.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Run dispatches node to the runner registered for its descriptor type.
func (reg *Registry) Run(ctx context.Context, node graph.Node) error {
	r, ok := reg.Lookup(node.Descriptor.Type)
	if !ok {
		return fmt.Errorf("%w: '%s' (node '%s')", ErrNoHandler, node.Descriptor.Type, node.ID)
	}
	return r.Run(ctx, node)
}

// Missing returns the descriptor types used by g that have no runner, sorted
// and without duplicates.
func (reg *Registry) Missing(g graph.Graph) []string {
	seen := make(map[string]struct{})
	var missing []string
	for _, n := range g.Nodes {
		if _, ok := reg.Lookup(n.Descriptor.Type); ok {
			continue
		}
		if _, dup := seen[n.Descriptor.Type]; dup {
			continue
		}
		seen[n.Descriptor.Type] = struct{}{}
		missing = append(missing, n.Descriptor.Type)
	}
	sort.Strings(missing)
	return missing
}
