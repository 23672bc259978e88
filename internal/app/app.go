package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/specialistvlad/burstflow/internal/ctxlog"
	"github.com/specialistvlad/burstflow/internal/executor"
	"github.com/specialistvlad/burstflow/internal/history"
	"github.com/specialistvlad/burstflow/internal/runner"
	"github.com/specialistvlad/burstflow/internal/telemetry"
)

// ErrRunFailed is returned when a workflow run ends in the failed state.
var ErrRunFailed = errors.New("workflow run failed")

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *runner.Registry
	executor   *executor.Executor
	history    history.Store
	telemetry  *telemetry.Providers
	httpServer *http.Server
	now        func() time.Time
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// With no modules given, the core modules are registered.
func NewApp(outW io.Writer, cfg *Config, modules ...runner.Module) (*App, error) {
	logger := newLogger(cfg.level, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := runner.NewRegistry()
	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	modules = append(modules, simulatedModule{cfg: cfg.Simulate.runnerConfig()})
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "types", reg.Types())

	var store history.Store
	if cfg.HistoryDir != "" {
		s, err := history.OpenBadger(history.BadgerConfig{Path: cfg.HistoryDir, Logger: logger.With("component", "history")})
		if err != nil {
			return nil, fmt.Errorf("failed to open execution history: %w", err)
		}
		store = s
		logger.Debug("Persistent execution history opened.", "dir", cfg.HistoryDir)
	} else {
		store = history.NewMemoryStore()
	}

	providers, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	a := &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		registry:  reg,
		history:   store,
		telemetry: providers,
		now:       time.Now,
	}
	a.executor = executor.New(reg, executor.WithLogger(logger), executor.WithClock(func() time.Time { return a.now() }))
	return a, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *runner.Registry {
	return a.registry
}

// Close releases everything NewApp opened.
func (a *App) Close() error {
	ctx := ctxlog.WithLogger(context.Background(), a.logger)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var errs []error
	if err := a.closeHealthCheckServer(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
	}
	if err := a.history.Close(); err != nil {
		errs = append(errs, fmt.Errorf("history close: %w", err))
	}
	return errors.Join(errs...)
}
