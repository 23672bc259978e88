package runner

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/specialistvlad/burstflow/internal/ctxlog"
	"github.com/specialistvlad/burstflow/internal/graph"
)

// ErrSimulatedFailure is returned when a simulated node draws a failure.
var ErrSimulatedFailure = errors.New("simulated failure")

// SimulatedConfig controls the stand-in runner used for node types whose real
// integrations live outside this engine.
type SimulatedConfig struct {
	SuccessRate float64
	MinLatency  time.Duration
	MaxLatency  time.Duration
	// Seed makes the draws reproducible. Zero picks a random seed.
	Seed uint64
}

// DefaultSimulatedConfig waits 1–1.5s per node and succeeds nine times out of ten.
func DefaultSimulatedConfig() SimulatedConfig {
	return SimulatedConfig{
		SuccessRate: 0.9,
		MinLatency:  1000 * time.Millisecond,
		MaxLatency:  1500 * time.Millisecond,
	}
}

// Simulated waits a random latency and then succeeds or fails at random.
type Simulated struct {
	cfg   SimulatedConfig
	mu    sync.Mutex
	rng   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSimulated builds a Simulated runner from cfg.
func NewSimulated(cfg SimulatedConfig) *Simulated {
	if cfg.MaxLatency < cfg.MinLatency {
		cfg.MaxLatency = cfg.MinLatency
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Simulated{
		cfg:   cfg,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		sleep: sleepContext,
	}
}

func (s *Simulated) Run(ctx context.Context, node graph.Node) error {
	latency, ok := s.draw()
	logger := ctxlog.FromContext(ctx).With("node_id", node.ID, "type", node.Descriptor.Type)
	logger.Debug("Simulating node.", "latency", latency, "outcome_success", ok)

	if err := s.sleep(ctx, latency); err != nil {
		return err
	}
	if !ok {
		return ErrSimulatedFailure
	}
	return nil
}

func (s *Simulated) draw() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	latency := s.cfg.MinLatency
	if spread := s.cfg.MaxLatency - s.cfg.MinLatency; spread > 0 {
		latency += time.Duration(s.rng.Int64N(int64(spread) + 1))
	}
	return latency, s.rng.Float64() < s.cfg.SuccessRate
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
