package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/burstflow/internal/ctxlog"
	"github.com/specialistvlad/burstflow/internal/executor"
	"github.com/specialistvlad/burstflow/internal/graph"
	"github.com/specialistvlad/burstflow/internal/history"
	"github.com/specialistvlad/burstflow/internal/progress"
	"github.com/specialistvlad/burstflow/internal/source"
)

// Run executes the main application logic based on the provided configuration.
// In watch mode it keeps rerunning the workflow until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthCheckServer(ctx)
	}

	if a.config.WorkflowPath == "" {
		return errors.New("no workflow path configured")
	}

	if a.config.Watch {
		return a.watch(ctx, a.config.WorkflowPath)
	}

	_, err := a.RunWorkflow(ctx, a.config.WorkflowPath)
	a.logger.Debug("App.Run method finished.")
	return err
}

// RunWorkflow loads, validates and executes the workflow at path once. The
// returned error wraps ErrRunFailed when the run itself failed.
func (a *App) RunWorkflow(ctx context.Context, path string) (*executor.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger.With("path", path)

	wf, err := source.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}
	if err := graph.Validate(wf.Graph); err != nil {
		return nil, fmt.Errorf("workflow '%s' is invalid: %w", wf.ID, err)
	}
	logger = logger.With("workflow_id", wf.ID)
	logger.Info("Workflow loaded.", "name", wf.Name, "nodes", len(wf.Graph.Nodes), "edges", len(wf.Graph.Edges))

	if cycle := graph.DetectCycle(wf.Graph); cycle != nil {
		logger.Warn("Workflow contains a cycle; each node still runs at most once.", "cycle", strings.Join(cycle, " -> "))
	}
	if missing := a.registry.Missing(wf.Graph); len(missing) > 0 {
		logger.Warn("No runner registered for some node types; those nodes will fail.", "types", missing)
	}

	rep, closeReporters := a.reporters(ctx)
	defer closeReporters()

	rec := history.NewRecord(wf.ID, a.now())
	a.putHistory(ctx, rec)

	res := a.executor.Execute(ctx, wf.Graph, rep)

	rec.RunID = res.RunID
	rec.NodesExecuted = len(res.Executed)
	rec.FailedNode = res.FailedNode
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	status := history.StatusSuccess
	if res.Status == executor.StatusFailed {
		status = history.StatusFailed
	}
	rec.Finish(status, res.FinishedAt)
	a.putHistory(ctx, rec)

	logger.Info("Workflow run finished.", "run_id", res.RunID, "status", res.Status, "executed", len(res.Executed), "duration", res.FinishedAt.Sub(res.StartedAt))

	if res.Status == executor.StatusFailed {
		if res.FailedNode != "" {
			return res, fmt.Errorf("%w: workflow '%s' stopped at node '%s'", ErrRunFailed, wf.ID, res.FailedNode)
		}
		return res, fmt.Errorf("%w: workflow '%s'", ErrRunFailed, wf.ID)
	}
	return res, nil
}

// reporters assembles the progress sinks for one run. Each sink is isolated
// so that one failing sink cannot affect the others or the run.
func (a *App) reporters(ctx context.Context) (progress.Reporter, func()) {
	logger := ctxlog.FromContext(ctx)
	sinks := []progress.Reporter{
		progress.Safe(progress.NewConsole(a.outW), logger),
		progress.Safe(progress.NewLogSink(logger.With("component", "progress")), logger),
	}
	var closers []func()

	if a.config.LogbookPath != "" {
		lb, err := progress.OpenLogbook(a.config.LogbookPath, logger)
		if err != nil {
			logger.Warn("Logbook disabled.", "path", a.config.LogbookPath, "error", err)
		} else {
			sinks = append(sinks, progress.Safe(lb, logger))
		}
	}

	if a.config.SocketIOURL != "" {
		sio, err := progress.DialSocketIO(a.config.SocketIOURL, a.config.SocketIONamespace, a.config.SocketIOEvent, logger)
		if err != nil {
			logger.Warn("Socket.IO progress stream disabled.", "url", a.config.SocketIOURL, "error", err)
		} else {
			sinks = append(sinks, progress.Safe(sio, logger))
			closers = append(closers, func() {
				if err := sio.Close(); err != nil {
					logger.Warn("Socket.IO progress stream did not close cleanly.", "error", err)
				}
			})
		}
	}

	return progress.Fanout(sinks...), func() {
		for _, c := range closers {
			c()
		}
	}
}

func (a *App) putHistory(ctx context.Context, rec history.Record) {
	if err := a.history.Put(ctx, rec); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to record execution history.", "record_id", rec.ID, "error", err)
	}
}
