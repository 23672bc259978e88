package executor

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("burstflow.executor")
	meter  = otel.Meter("burstflow.executor")
)

// initMetrics creates the instruments once per Executor. Failures degrade
// observability but never block a run.
func (e *Executor) initMetrics(logger *slog.Logger) {
	e.metricsOnce.Do(func() {
		var initErrors []string
		var err error

		e.nodeSuccesses, err = meter.Int64Counter("workflow_node_success_total",
			metric.WithDescription("Number of nodes that completed successfully"),
		)
		if err != nil {
			initErrors = append(initErrors, "node_successes: "+err.Error())
		}

		e.nodeFailures, err = meter.Int64Counter("workflow_node_failure_total",
			metric.WithDescription("Number of nodes whose runner returned an error"),
		)
		if err != nil {
			initErrors = append(initErrors, "node_failures: "+err.Error())
		}

		e.nodeLatency, err = meter.Float64Histogram("workflow_node_duration_seconds",
			metric.WithDescription("Time spent inside a node runner"),
			metric.WithUnit("s"),
		)
		if err != nil {
			initErrors = append(initErrors, "node_latency: "+err.Error())
		}

		e.runLatency, err = meter.Float64Histogram("workflow_run_duration_seconds",
			metric.WithDescription("Wall time of a whole workflow run"),
			metric.WithUnit("s"),
		)
		if err != nil {
			initErrors = append(initErrors, "run_latency: "+err.Error())
		}

		if len(initErrors) > 0 {
			logger.Error("Failed to initialize some executor metrics.",
				slog.Int("failed_count", len(initErrors)),
				slog.Any("errors", initErrors),
			)
		}
	})
}
