package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/burstflow/internal/graph"
	"github.com/specialistvlad/burstflow/internal/runner"
)

// ScriptedRunner records every node it runs and fails or panics for the ids it
// is told to. It is safe for concurrent use.
type ScriptedRunner struct {
	mu      sync.Mutex
	calls   []string
	failOn  map[string]error
	panicOn map[string]any
	hooks   map[string]func(ctx context.Context)
}

// NewScriptedRunner returns a runner that succeeds for every node.
func NewScriptedRunner() *ScriptedRunner {
	return &ScriptedRunner{
		failOn:  make(map[string]error),
		panicOn: make(map[string]any),
		hooks:   make(map[string]func(ctx context.Context)),
	}
}

// FailOn makes node id fail with err.
func (r *ScriptedRunner) FailOn(id string, err error) *ScriptedRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failOn[id] = err
	return r
}

// PanicOn makes node id panic with v.
func (r *ScriptedRunner) PanicOn(id string, v any) *ScriptedRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panicOn[id] = v
	return r
}

// OnRun calls fn while node id is running, before its outcome is decided.
func (r *ScriptedRunner) OnRun(id string, fn func(ctx context.Context)) *ScriptedRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[id] = fn
	return r
}

func (r *ScriptedRunner) Run(ctx context.Context, node graph.Node) error {
	r.mu.Lock()
	r.calls = append(r.calls, node.ID)
	hook := r.hooks[node.ID]
	failErr, fails := r.failOn[node.ID]
	panicVal, panics := r.panicOn[node.ID]
	r.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	if panics {
		panic(panicVal)
	}
	if fails {
		return failErr
	}
	return ctx.Err()
}

// Calls returns the node ids run so far, in order.
func (r *ScriptedRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Module registers r as the runner for each of types.
func (r *ScriptedRunner) Module(types ...string) runner.Module {
	return scriptedModule{r: r, types: types}
}

type scriptedModule struct {
	r     *ScriptedRunner
	types []string
}

func (m scriptedModule) Register(reg *runner.Registry) {
	for _, t := range m.types {
		reg.Register(t, m.r)
	}
}
