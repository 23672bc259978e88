package app

import (
	"context"

	"github.com/specialistvlad/burstflow/internal/history"
)

// History lists recorded executions of workflowID, newest first.
func (a *App) History(ctx context.Context, workflowID string) ([]history.Record, error) {
	return a.history.List(ctx, workflowID)
}
