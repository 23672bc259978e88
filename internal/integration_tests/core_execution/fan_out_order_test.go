package integration_tests

import (
	"testing"

	"github.com/specialistvlad/burstflow/internal/executor"
	"github.com/specialistvlad/burstflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Successors run breadth-first in edge declaration order, one at a time.
func TestCoreExecution_FanOutRunsInEdgeOrder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := `
node "hook" {
  type = "webhook"
}
node "mail" {
  type = "email"
}
node "chat" {
  type = "whatsapp"
}
node "ai" {
  type = "ai_action"
}
node "followup" {
  type = "email"
}

edge "e1" {
  source = "hook"
  target = "chat"
}
edge "e2" {
  source = "hook"
  target = "mail"
}
edge "e3" {
  source = "chat"
  target = "followup"
}
edge "e4" {
  source = "hook"
  target = "ai"
}
`
	scripted := testutil.NewScriptedRunner()

	// --- Act ---
	res, _, err := runHCL(t, scripted, src)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, executor.StatusSucceeded, res.Status)
	assert.Equal(t, []string{"hook", "chat", "mail", "ai", "followup"}, scripted.Calls())
}

// Two triggers seed the queue in declaration order.
func TestCoreExecution_MultipleTriggers(t *testing.T) {
	t.Parallel()

	src := `
node "b" {
  type = "webhook"
}
node "a" {
  type = "webhook"
}
node "x" {
  type = "email"
}
edge "ax" {
  source = "a"
  target = "x"
}
`
	scripted := testutil.NewScriptedRunner()
	res, _, err := runHCL(t, scripted, src)

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "x"}, res.Executed)
}
