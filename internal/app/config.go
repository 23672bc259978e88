package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/specialistvlad/burstflow/internal/runner"
	"github.com/specialistvlad/burstflow/internal/telemetry"
)

var validate = validator.New()

// SimulateConfig tunes the runner used for node types without an integration.
type SimulateConfig struct {
	SuccessRate float64       `validate:"gte=0,lte=1"`
	MinLatency  time.Duration `validate:"gte=0"`
	MaxLatency  time.Duration `validate:"gte=0,gtefield=MinLatency"`
	Seed        uint64
}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	WorkflowPath string // .hcl, .json, .yaml or a saved assistant reply

	LogFormat       string `validate:"oneof=text json"`
	LogLevel        string // any slog level name: debug, info, warn, error
	HealthcheckPort int    `validate:"gte=0,lte=65535"`

	// HistoryDir enables the persistent execution history. Empty keeps
	// history in memory for the life of the process.
	HistoryDir  string
	LogbookPath string

	SocketIOURL       string `validate:"omitempty,url"`
	SocketIONamespace string
	SocketIOEvent     string

	// Simulate nil means runner.DefaultSimulatedConfig. A non-nil value is
	// used as given, zeros included.
	Simulate  *SimulateConfig
	Watch     bool
	Telemetry telemetry.Config

	level slog.Level
}

// NewConfig fills defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Simulate == nil {
		d := runner.DefaultSimulatedConfig()
		cfg.Simulate = &SimulateConfig{SuccessRate: d.SuccessRate, MinLatency: d.MinLatency, MaxLatency: d.MaxLatency}
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "burstflow"
	}
	if cfg.Telemetry.TraceExporter == "" {
		cfg.Telemetry.TraceExporter = telemetry.ExporterNone
	}
	if cfg.Telemetry.MetricExporter == "" {
		cfg.Telemetry.MetricExporter = telemetry.ExporterNone
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.level = level

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Watch && cfg.WorkflowPath == "" {
		return nil, fmt.Errorf("invalid configuration: watch mode needs a workflow path")
	}
	return &cfg, nil
}

func (c SimulateConfig) runnerConfig() runner.SimulatedConfig {
	return runner.SimulatedConfig{
		SuccessRate: c.SuccessRate,
		MinLatency:  c.MinLatency,
		MaxLatency:  c.MaxLatency,
		Seed:        c.Seed,
	}
}
