package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/burstflow/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id, typ string) graph.Node {
	return graph.Node{ID: id, Descriptor: graph.Descriptor{Type: typ}}
}

type countingModule struct{ calls *int }

func (m countingModule) Register(r *Registry) {
	r.Register("count", Func(func(context.Context, graph.Node) error {
		*m.calls++
		return nil
	}))
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("dispatches by descriptor type", func(t *testing.T) {
		reg := NewRegistry()
		var got []string
		reg.Register("email", Func(func(_ context.Context, n graph.Node) error {
			got = append(got, "email:"+n.ID)
			return nil
		}))
		reg.Register("whatsapp", Func(func(_ context.Context, n graph.Node) error {
			got = append(got, "whatsapp:"+n.ID)
			return errors.New("rate limited")
		}))

		require.NoError(t, reg.Run(context.Background(), node("1", "email")))
		assert.EqualError(t, reg.Run(context.Background(), node("2", "whatsapp")), "rate limited")
		assert.Equal(t, []string{"email:1", "whatsapp:2"}, got)
	})

	t.Run("unknown type fails with ErrNoHandler", func(t *testing.T) {
		reg := NewRegistry()
		err := reg.Run(context.Background(), node("7", "fax"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoHandler))
		assert.Contains(t, err.Error(), "'fax' (node '7')")
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register("email", Func(func(context.Context, graph.Node) error { return nil }))
		assert.PanicsWithValue(t, "runner for node type 'email' already registered", func() {
			reg.Register("email", Func(func(context.Context, graph.Node) error { return nil }))
		})
	})

	t.Run("empty type panics", func(t *testing.T) {
		assert.Panics(t, func() { NewRegistry().Register("", Func(nil)) })
	})

	t.Run("types are sorted", func(t *testing.T) {
		reg := NewRegistry()
		noop := Func(func(context.Context, graph.Node) error { return nil })
		reg.Register("webhook", noop)
		reg.Register("email", noop)
		reg.Register("ai_action", noop)
		assert.Equal(t, []string{"ai_action", "email", "webhook"}, reg.Types())
	})

	t.Run("modules register themselves", func(t *testing.T) {
		reg := NewRegistry()
		calls := 0
		countingModule{calls: &calls}.Register(reg)
		require.NoError(t, reg.Run(context.Background(), node("1", "count")))
		assert.Equal(t, 1, calls)
	})

	t.Run("missing reports unregistered types once", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register("email", Func(func(context.Context, graph.Node) error { return nil }))
		g := graph.Graph{Nodes: []graph.Node{
			node("1", "webhook"), node("2", "email"), node("3", "sms"), node("4", "webhook"),
		}}
		assert.Equal(t, []string{"sms", "webhook"}, reg.Missing(g))
	})
}

func TestSimulated(t *testing.T) {
	t.Parallel()

	newStubbed := func(cfg SimulatedConfig) (*Simulated, *[]time.Duration) {
		s := NewSimulated(cfg)
		var mu sync.Mutex
		var slept []time.Duration
		s.sleep = func(ctx context.Context, d time.Duration) error {
			mu.Lock()
			defer mu.Unlock()
			slept = append(slept, d)
			return ctx.Err()
		}
		return s, &slept
	}

	t.Run("defaults", func(t *testing.T) {
		cfg := DefaultSimulatedConfig()
		assert.Equal(t, 0.9, cfg.SuccessRate)
		assert.Equal(t, time.Second, cfg.MinLatency)
		assert.Equal(t, 1500*time.Millisecond, cfg.MaxLatency)
	})

	t.Run("latency stays within bounds", func(t *testing.T) {
		cfg := DefaultSimulatedConfig()
		cfg.SuccessRate = 1
		cfg.Seed = 42
		s, slept := newStubbed(cfg)
		for i := 0; i < 200; i++ {
			require.NoError(t, s.Run(context.Background(), node("n", "email")))
		}
		for _, d := range *slept {
			assert.GreaterOrEqual(t, d, time.Second)
			assert.LessOrEqual(t, d, 1500*time.Millisecond)
		}
	})

	t.Run("success rate zero always fails", func(t *testing.T) {
		s, _ := newStubbed(SimulatedConfig{SuccessRate: 0, Seed: 1})
		err := s.Run(context.Background(), node("n", "email"))
		assert.ErrorIs(t, err, ErrSimulatedFailure)
	})

	t.Run("same seed gives the same outcomes", func(t *testing.T) {
		cfg := SimulatedConfig{SuccessRate: 0.5, MinLatency: 0, MaxLatency: time.Second, Seed: 7}
		a, sleptA := newStubbed(cfg)
		b, sleptB := newStubbed(cfg)
		for i := 0; i < 50; i++ {
			errA := a.Run(context.Background(), node("n", "x"))
			errB := b.Run(context.Background(), node("n", "x"))
			assert.Equal(t, errA, errB)
		}
		assert.Equal(t, *sleptA, *sleptB)
	})

	t.Run("inverted bounds collapse to the minimum", func(t *testing.T) {
		s, slept := newStubbed(SimulatedConfig{SuccessRate: 1, MinLatency: time.Second, MaxLatency: time.Millisecond, Seed: 3})
		require.NoError(t, s.Run(context.Background(), node("n", "x")))
		assert.Equal(t, []time.Duration{time.Second}, *slept)
	})

	t.Run("cancellation interrupts the wait", func(t *testing.T) {
		s := NewSimulated(SimulatedConfig{SuccessRate: 1, MinLatency: time.Hour, MaxLatency: time.Hour})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := s.Run(ctx, node("n", "x"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDecodeParams(t *testing.T) {
	t.Parallel()

	type input struct {
		URL     string `json:"url" validate:"required,url"`
		Retries int    `json:"retries"`
	}

	t.Run("decodes and validates", func(t *testing.T) {
		n := graph.Node{ID: "2", Descriptor: graph.Descriptor{Params: map[string]any{"url": "https://example.com", "retries": 3.0}}}
		var in input
		require.NoError(t, DecodeParams(n, &in))
		assert.Equal(t, input{URL: "https://example.com", Retries: 3}, in)
	})

	t.Run("missing required field", func(t *testing.T) {
		var in input
		err := DecodeParams(graph.Node{ID: "2"}, &in)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "node '2': invalid params")
	})

	t.Run("wrong type", func(t *testing.T) {
		n := graph.Node{ID: "2", Descriptor: graph.Descriptor{Params: map[string]any{"url": 42}}}
		var in input
		assert.ErrorContains(t, DecodeParams(n, &in), "invalid params")
	})
}
