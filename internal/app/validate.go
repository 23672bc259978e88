package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/burstflow/internal/ctxlog"
	"github.com/specialistvlad/burstflow/internal/graph"
	"github.com/specialistvlad/burstflow/internal/source"
	"github.com/specialistvlad/burstflow/internal/topology"
)

// FileReport is the validation outcome for one workflow file. Err makes the
// file unusable; warnings do not.
type FileReport struct {
	Path       string
	WorkflowID string
	Nodes      int
	Edges      int
	Err        error
	Warnings   []string
}

// Validate checks every workflow file found under paths without running
// anything. The returned error covers discovery only; per-file problems are
// in the reports.
func (a *App) Validate(ctx context.Context, paths ...string) ([]FileReport, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	files, err := source.Discover(paths...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no workflow files found (looked for %s)", strings.Join(source.Extensions(), ", "))
	}

	reports := make([]FileReport, 0, len(files))
	for _, f := range files {
		reports = append(reports, a.validateFile(ctx, f))
	}
	return reports, nil
}

func (a *App) validateFile(ctx context.Context, path string) FileReport {
	rep := FileReport{Path: path}

	wf, err := source.Load(ctx, path)
	if err != nil {
		rep.Err = err
		return rep
	}
	rep.WorkflowID = wf.ID
	rep.Nodes = len(wf.Graph.Nodes)
	rep.Edges = len(wf.Graph.Edges)

	if err := graph.Validate(wf.Graph); err != nil {
		rep.Err = err
		return rep
	}

	if len(wf.Graph.Triggers()) == 0 {
		rep.Warnings = append(rep.Warnings, "no trigger found; runs will fail immediately")
	}
	if cycle := graph.DetectCycle(wf.Graph); cycle != nil {
		rep.Warnings = append(rep.Warnings, "cycle: "+strings.Join(cycle, " -> "))
	}
	if unreachable := topology.Build(wf.Graph).Unreachable(); len(unreachable) > 0 {
		rep.Warnings = append(rep.Warnings, "never reached from a trigger: "+strings.Join(unreachable, ", "))
	}
	if missing := a.registry.Missing(wf.Graph); len(missing) > 0 {
		rep.Warnings = append(rep.Warnings, "no runner for node types: "+strings.Join(missing, ", "))
	}
	return rep
}
