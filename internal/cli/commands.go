package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/specialistvlad/burstflow/internal/app"
	"github.com/specialistvlad/burstflow/internal/catalog"
	"github.com/specialistvlad/burstflow/internal/runner"
	"github.com/specialistvlad/burstflow/internal/source"
	"github.com/specialistvlad/burstflow/internal/telemetry"
)

// globalOptions are shared by every command.
type globalOptions struct {
	logFormat string
	logLevel  string
}

// runOptions back the flags of the run command and of the bare root command.
type runOptions struct {
	watch             bool
	healthcheckPort   int
	historyDir        string
	logbookPath       string
	socketIOURL       string
	socketIONamespace string
	socketIOEvent     string
	successRate       float64
	minLatency        time.Duration
	maxLatency        time.Duration
	seed              uint64
	traceExporter     string
	metricExporter    string
	otlpEndpoint      string
}

func newRootCmd(outW io.Writer) *cobra.Command {
	global := &globalOptions{}
	rootRun := &runOptions{}

	root := &cobra.Command{
		Use:   "burstflow [PATH]",
		Short: "Run trigger-driven workflow graphs.",
		Long: `burstflow runs workflow graphs: triggers start a run, and every node that
succeeds hands control to the nodes its edges point at. The first failure
stops the run.

PATH is a workflow file (.hcl, .json, .yaml, .yml, or a saved assistant reply
in .md/.txt).`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runWorkflow(cmd, outW, global, rootRun, args[0])
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})
	root.PersistentFlags().StringVar(&global.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	root.PersistentFlags().StringVar(&global.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	addRunFlags(root, rootRun)

	root.AddCommand(
		newRunCmd(outW, global),
		newValidateCmd(outW, global),
		newHistoryCmd(outW, global),
		newCatalogCmd(outW),
		newInitCmd(outW),
	)
	return root
}

func addRunFlags(cmd *cobra.Command, o *runOptions) {
	sim := runner.DefaultSimulatedConfig()
	tel := telemetry.DefaultConfig()

	f := cmd.Flags()
	f.BoolVarP(&o.watch, "watch", "w", false, "Rerun the workflow every time the file changes.")
	f.IntVar(&o.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	f.StringVar(&o.historyDir, "history-dir", "", "Directory of the persistent execution history. Empty keeps history in memory.")
	f.StringVar(&o.logbookPath, "logbook", "", "Append every progress event to this file.")
	f.StringVar(&o.socketIOURL, "socketio-url", "", "Stream progress events to this socket.io server.")
	f.StringVar(&o.socketIONamespace, "socketio-namespace", "/", "Namespace for --socketio-url.")
	f.StringVar(&o.socketIOEvent, "socketio-event", "", "Event name for --socketio-url (default \"workflow:progress\").")
	f.Float64Var(&o.successRate, "success-rate", sim.SuccessRate, "Probability that a simulated node succeeds.")
	f.DurationVar(&o.minLatency, "min-latency", sim.MinLatency, "Minimum simulated node latency.")
	f.DurationVar(&o.maxLatency, "max-latency", sim.MaxLatency, "Maximum simulated node latency.")
	f.Uint64Var(&o.seed, "seed", 0, "Seed for simulated outcomes. 0 picks a random seed.")
	f.StringVar(&o.traceExporter, "trace-exporter", tel.TraceExporter, "Trace exporter. Options: 'none', 'stdout', 'otlp'.")
	f.StringVar(&o.metricExporter, "metric-exporter", tel.MetricExporter, "Metric exporter. Options: 'none', 'stdout', 'prometheus'.")
	f.StringVar(&o.otlpEndpoint, "otlp-endpoint", tel.OTLPEndpoint, "OTLP gRPC endpoint for --trace-exporter=otlp.")
}

func newRunCmd(outW io.Writer, global *globalOptions) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run PATH",
		Short: "Run a workflow file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, outW, global, o, args[0])
		},
	}
	addRunFlags(cmd, o)
	return cmd
}

func runWorkflow(cmd *cobra.Command, outW io.Writer, global *globalOptions, o *runOptions, path string) error {
	tel := telemetry.DefaultConfig()
	tel.TraceExporter = strings.ToLower(o.traceExporter)
	tel.MetricExporter = strings.ToLower(o.metricExporter)
	tel.OTLPEndpoint = o.otlpEndpoint
	tel.Writer = outW

	cfg, err := newConfig(global, app.Config{
		WorkflowPath:      path,
		HealthcheckPort:   o.healthcheckPort,
		HistoryDir:        o.historyDir,
		LogbookPath:       o.logbookPath,
		SocketIOURL:       o.socketIOURL,
		SocketIONamespace: o.socketIONamespace,
		SocketIOEvent:     o.socketIOEvent,
		Simulate: &app.SimulateConfig{
			SuccessRate: o.successRate,
			MinLatency:  o.minLatency,
			MaxLatency:  o.maxLatency,
			Seed:        o.seed,
		},
		Watch:     o.watch,
		Telemetry: tel,
	})
	if err != nil {
		return err
	}

	a, err := app.NewApp(outW, cfg)
	if err != nil {
		return &ExitError{Code: 1, Message: err.Error()}
	}
	defer a.Close()

	if err := a.Run(cmd.Context()); err != nil {
		return &ExitError{Code: 1, Message: err.Error()}
	}
	return nil
}

func newValidateCmd(outW io.Writer, global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate PATH...",
		Short: "Check workflow files without running them.",
		Long:  "Check workflow files or directories of workflow files. Cycles, unreachable nodes and unknown node types are reported as warnings.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := newConfig(global, app.Config{})
			if err != nil {
				return err
			}
			a, err := app.NewApp(io.Discard, cfg)
			if err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			defer a.Close()

			reports, err := a.Validate(cmd.Context(), args...)
			if err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}

			r := lipgloss.NewRenderer(outW)
			ok := r.NewStyle().Foreground(lipgloss.Color("#2CD7C7")).Bold(true)
			bad := r.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)
			warn := r.NewStyle().Foreground(lipgloss.Color("#FFB86C"))

			invalid := 0
			for _, rep := range reports {
				if rep.Err != nil {
					invalid++
					fmt.Fprintf(outW, "%s %s\n", bad.Render("✗"), rep.Path)
					for _, line := range strings.Split(rep.Err.Error(), "\n") {
						fmt.Fprintf(outW, "    %s\n", line)
					}
					continue
				}
				fmt.Fprintf(outW, "%s %s (workflow %s, %d nodes, %d edges)\n", ok.Render("✓"), rep.Path, rep.WorkflowID, rep.Nodes, rep.Edges)
				for _, w := range rep.Warnings {
					fmt.Fprintf(outW, "    %s %s\n", warn.Render("!"), w)
				}
			}
			if invalid > 0 {
				return &ExitError{Code: 1, Message: fmt.Sprintf("%d of %d workflow files are invalid", invalid, len(reports))}
			}
			return nil
		},
	}
}

func newHistoryCmd(outW io.Writer, global *globalOptions) *cobra.Command {
	var historyDir string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "history WORKFLOW_ID",
		Short: "List past executions of a workflow.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := newConfig(global, app.Config{HistoryDir: historyDir})
			if err != nil {
				return err
			}
			a, err := app.NewApp(io.Discard, cfg)
			if err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			defer a.Close()

			recs, err := a.History(cmd.Context(), args[0])
			if err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}

			if asJSON {
				enc := json.NewEncoder(outW)
				enc.SetIndent("", "  ")
				return enc.Encode(recs)
			}
			if len(recs) == 0 {
				fmt.Fprintf(outW, "No executions recorded for workflow %s.\n", args[0])
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "STATUS", "STARTED", "DURATION", "NODES", "FAILED NODE")
			for _, r := range recs {
				duration := "-"
				if r.FinishedAt != nil {
					duration = r.Duration().Round(time.Millisecond).String()
				}
				t.Row(r.ID, string(r.Status), r.StartedAt.Format(time.RFC3339), duration, fmt.Sprint(r.NodesExecuted), r.FailedNode)
			}
			fmt.Fprintln(outW, t.Render())
			return nil
		},
	}
	cmd.Flags().StringVar(&historyDir, "history-dir", "", "Directory of the persistent execution history.")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON.")
	_ = cmd.MarkFlagRequired("history-dir")
	return cmd
}

func newCatalogCmd(outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the node types a workflow can use.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("TYPE", "KIND", "TITLE", "RUNS ON")
			for _, d := range catalog.Definitions() {
				runsOn := "integration"
				if d.Simulated {
					runsOn = "simulated"
				}
				t.Row(d.Key, d.Kind.String(), d.Title, runsOn)
			}
			fmt.Fprintln(outW, t.Render())
			fmt.Fprintf(outW, "Workflow file extensions: %s\n", strings.Join(source.Extensions(), ", "))
			return nil
		},
	}
}

// newConfig applies the global flags and validates the result. A rejected
// configuration is a usage error.
func newConfig(global *globalOptions, cfg app.Config) (*app.Config, error) {
	cfg.LogFormat = strings.ToLower(global.logFormat)
	cfg.LogLevel = strings.ToLower(global.logLevel)
	c, err := app.NewConfig(cfg)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return c, nil
}

func newInitCmd(outW io.Writer) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "init PATH",
		Short: "Write a starter workflow (.json or .yaml) to PATH.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			wf := &source.Workflow{
				ID:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
				Name:  name,
				Graph: catalog.SampleGraph(),
			}
			if err := source.Save(path, wf); err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			fmt.Fprintf(outW, "Wrote starter workflow '%s' to %s\n", wf.ID, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "My workflow", "Display name of the new workflow.")
	return cmd
}
