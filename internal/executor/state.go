package executor

import "fmt"

// Status is the lifecycle state of a run.
type Status int

const (
	StatusRunning Status = iota
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ExecutionState is owned by exactly one run and never shared.
type ExecutionState struct {
	RunID  string
	Status Status

	ready    []string
	executed map[string]struct{}
	order    []string
}

func newState(runID string) *ExecutionState {
	return &ExecutionState{
		RunID:    runID,
		Status:   StatusRunning,
		executed: make(map[string]struct{}),
	}
}

func (s *ExecutionState) enqueue(ids ...string) {
	s.ready = append(s.ready, ids...)
}

func (s *ExecutionState) dequeue() (string, bool) {
	if len(s.ready) == 0 {
		return "", false
	}
	id := s.ready[0]
	s.ready = s.ready[1:]
	return id, true
}

// discard drops every pending entry without visiting it.
func (s *ExecutionState) discard() int {
	n := len(s.ready)
	s.ready = nil
	return n
}

func (s *ExecutionState) markExecuted(id string) {
	if _, ok := s.executed[id]; ok {
		return
	}
	s.executed[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *ExecutionState) wasExecuted(id string) bool {
	_, ok := s.executed[id]
	return ok
}

// Pending is the number of queued entries, including ones that will be skipped.
func (s *ExecutionState) Pending() int {
	return len(s.ready)
}

// Executed returns the executed node ids in completion order.
func (s *ExecutionState) Executed() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
