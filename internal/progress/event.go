// Package progress carries the ordered stream of events a workflow run emits
// to its observers. A Reporter receives events synchronously, one at a time, in
// the order the executor produced them.
package progress

import (
	"fmt"
	"time"
)

// Severity classifies an event for display.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText lets Severity appear by name in JSON payloads.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EventKind identifies what happened, independent of the message text.
type EventKind string

const (
	RunStarted     EventKind = "run_started"
	NoTrigger      EventKind = "no_trigger"
	NodeStarted    EventKind = "node_started"
	NodeSucceeded  EventKind = "node_succeeded"
	NodeFailed     EventKind = "node_failed"
	NodeUnresolved EventKind = "node_unresolved"
	RunAborted     EventKind = "run_aborted"
	RunCompleted   EventKind = "run_completed"
)

// Event is one entry of the progress stream.
type Event struct {
	RunID    string    `json:"run_id"`
	Kind     EventKind `json:"kind"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	NodeID   string    `json:"node_id,omitempty"`
	// Detail holds the runner error text for failed nodes.
	Detail string    `json:"detail,omitempty"`
	Time   time.Time `json:"time"`
}
