package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/specialistvlad/burstflow/internal/ctxlog"
	"github.com/specialistvlad/burstflow/internal/graph"
	"github.com/specialistvlad/burstflow/internal/progress"
	"github.com/specialistvlad/burstflow/internal/runner"
	"github.com/specialistvlad/burstflow/internal/topology"
)

// Executor runs workflow graphs with a single runner. One Executor may serve
// many runs, sequentially or concurrently; each run owns its state.
type Executor struct {
	runner   runner.Runner
	logger   *slog.Logger
	now      func() time.Time
	newRunID func() string

	metricsOnce   sync.Once
	nodeSuccesses metric.Int64Counter
	nodeFailures  metric.Int64Counter
	nodeLatency   metric.Float64Histogram
	runLatency    metric.Float64Histogram
}

// Option customizes an Executor.
type Option func(*Executor)

// WithClock sets the source of event timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// WithLogger sets the logger used when the run context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithRunIDs sets the run id generator.
func WithRunIDs(next func() string) Option {
	return func(e *Executor) { e.newRunID = next }
}

// New creates an Executor that runs every node through r.
func New(r runner.Runner, opts ...Option) *Executor {
	e := &Executor{
		runner:   r,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result summarizes a finished run.
type Result struct {
	RunID      string
	Status     Status
	Executed   []string
	FailedNode string
	// Err is the runner error that aborted the run, if any.
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Run executes g and returns the terminal status. All detail is delivered to
// rep as it happens.
func (e *Executor) Run(ctx context.Context, g graph.Graph, rep progress.Reporter) Status {
	return e.Execute(ctx, g, rep).Status
}

// Execute is Run with a summary of what happened. g is expected to have passed
// graph.Validate; an edge to an unknown node is reported and skipped.
func (e *Executor) Execute(ctx context.Context, g graph.Graph, rep progress.Reporter) *Result {
	snapshot := g.Clone()
	state := newState(e.newRunID())

	if _, ok := ctxlog.Lookup(ctx); !ok && e.logger != nil {
		ctx = ctxlog.WithLogger(ctx, e.logger)
	}
	ctx = ctxlog.With(ctx, "run_id", state.RunID)
	logger := ctxlog.FromContext(ctx)
	e.initMetrics(logger)

	ctx, span := tracer.Start(ctx, "executor.Run",
		trace.WithAttributes(
			attribute.String("run_id", state.RunID),
			attribute.Int("node_count", len(snapshot.Nodes)),
			attribute.Int("edge_count", len(snapshot.Edges)),
		),
	)
	defer span.End()

	res := &Result{RunID: state.RunID, StartedAt: e.now()}
	sink := progress.Safe(rep, logger)
	emit := func(kind progress.EventKind, sev progress.Severity, msg, nodeID, detail string) {
		sink.Report(progress.Event{
			RunID:    state.RunID,
			Kind:     kind,
			Severity: sev,
			Message:  msg,
			NodeID:   nodeID,
			Detail:   detail,
			Time:     e.now(),
		})
	}

	logger.Info("Workflow run starting.", "nodes", len(snapshot.Nodes), "edges", len(snapshot.Edges))
	emit(progress.RunStarted, progress.SeverityInfo, msgRunStarting, "", "")

	idx := topology.Build(snapshot)
	triggers := idx.Triggers()
	if len(triggers) == 0 {
		logger.Warn("Workflow has no trigger node, nothing to run.")
		emit(progress.NoTrigger, progress.SeverityError, msgNoTrigger, "", "")
		return e.finish(ctx, span, state, res, StatusFailed)
	}
	state.enqueue(triggers...)
	logger.Debug("Ready queue seeded with triggers.", "triggers", triggers)

	for {
		id, ok := state.dequeue()
		if !ok {
			break
		}
		if state.wasExecuted(id) {
			logger.Debug("Node already executed, skipping.", "node_id", id)
			continue
		}

		node, ok := idx.Node(id)
		if !ok {
			logger.Error("Queued node id not found in graph.", "node_id", id)
			emit(progress.NodeUnresolved, progress.SeverityError, nodeMessage(fmtNodeMissing, id), id, "")
			continue
		}

		name := node.DisplayName()
		emit(progress.NodeStarted, progress.SeverityInfo, nodeMessage(fmtNodeStarted, name), id, "")

		if err := e.runNode(ctx, node); err != nil {
			logger.Error("Node execution failed.", "node_id", id, "error", err)
			res.FailedNode = id
			res.Err = err
			emit(progress.NodeFailed, progress.SeverityError, nodeMessage(fmtNodeFailed, name), id, err.Error())
			emit(progress.RunAborted, progress.SeverityError, msgRunAborted, "", "")
			if dropped := state.discard(); dropped > 0 {
				logger.Debug("Discarded pending queue entries.", "count", dropped)
			}
			return e.finish(ctx, span, state, res, StatusFailed)
		}

		state.markExecuted(id)
		emit(progress.NodeSucceeded, progress.SeveritySuccess, nodeMessage(fmtNodeSucceeded, name), id, "")

		for _, next := range idx.Successors(id) {
			if !state.wasExecuted(next) {
				state.enqueue(next)
			}
		}
	}

	emit(progress.RunCompleted, progress.SeveritySuccess, msgRunCompleted, "", "")
	return e.finish(ctx, span, state, res, StatusSucceeded)
}

func (e *Executor) finish(ctx context.Context, span trace.Span, state *ExecutionState, res *Result, status Status) *Result {
	state.Status = status
	res.Status = status
	res.Executed = state.Executed()
	res.FinishedAt = e.now()

	elapsed := res.FinishedAt.Sub(res.StartedAt)
	if e.runLatency != nil {
		e.runLatency.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("status", status.String())))
	}

	span.SetAttributes(
		attribute.String("status", status.String()),
		attribute.Int("executed", len(res.Executed)),
	)
	if status == StatusFailed {
		msg := "run failed"
		if res.FailedNode != "" {
			msg = fmt.Sprintf("node %s failed", res.FailedNode)
		}
		span.SetStatus(codes.Error, msg)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	ctxlog.FromContext(ctx).Info("Workflow run finished.",
		"status", status.String(),
		"executed", len(res.Executed),
		"duration", elapsed,
	)
	return res
}

// runNode calls the runner, converting a panic into an error.
func (e *Executor) runNode(ctx context.Context, node graph.Node) (err error) {
	ctx = ctxlog.With(ctx, "node_id", node.ID, "node_type", node.Descriptor.Type)
	ctx, span := tracer.Start(ctx, "executor.Node",
		trace.WithAttributes(
			attribute.String("node_id", node.ID),
			attribute.String("node_type", node.Descriptor.Type),
			attribute.String("node_kind", node.Kind.String()),
		),
	)
	attrs := metric.WithAttributes(attribute.String("node_type", node.Descriptor.Type))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("runner panicked: %v", r)
		}
		if e.nodeLatency != nil {
			e.nodeLatency.Record(ctx, time.Since(start).Seconds(), attrs)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if e.nodeFailures != nil {
				e.nodeFailures.Add(ctx, 1, attrs)
			}
		} else {
			span.SetStatus(codes.Ok, "")
			if e.nodeSuccesses != nil {
				e.nodeSuccesses.Add(ctx, 1, attrs)
			}
		}
		span.End()
	}()

	ctxlog.FromContext(ctx).Debug("Running node.")
	return e.runner.Run(ctx, node)
}
