package executor

import "fmt"

const (
	msgRunStarting   = "run starting"
	msgNoTrigger     = "no trigger found"
	msgRunAborted    = "run aborted"
	msgRunCompleted  = "run completed"
	fmtNodeStarted   = "executing node %s"
	fmtNodeSucceeded = "node %s succeeded"
	fmtNodeFailed    = "node %s failed"
	fmtNodeMissing   = "node %s could not be resolved"
)

func nodeMessage(format, name string) string {
	return fmt.Sprintf(format, name)
}
