// Package history records workflow executions so that past runs can be listed
// per workflow. A record is written when a run starts and overwritten when it
// ends.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a recorded execution.
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Record describes one execution of a workflow.
type Record struct {
	ID            string     `json:"id"`
	WorkflowID    string     `json:"workflow_id"`
	RunID         string     `json:"run_id,omitempty"`
	Status        Status     `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	NodesExecuted int        `json:"nodes_executed"`
	FailedNode    string     `json:"failed_node,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// NewRecord returns a running record for workflowID started at now.
func NewRecord(workflowID string, now time.Time) Record {
	return Record{
		ID:         "exec_" + uuid.NewString(),
		WorkflowID: workflowID,
		Status:     StatusRunning,
		StartedAt:  now,
	}
}

// Finish marks the record terminal.
func (r *Record) Finish(status Status, at time.Time) {
	r.Status = status
	r.FinishedAt = &at
}

// Duration is the wall time of a finished record, or zero while running.
func (r Record) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store persists execution records. Put replaces any record with the same ID.
type Store interface {
	Put(ctx context.Context, rec Record) error
	// List returns the records of one workflow, newest first.
	List(ctx context.Context, workflowID string) ([]Record, error)
	Close() error
}
