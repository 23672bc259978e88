package integration_tests

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/burstflow/internal/app"
	"github.com/specialistvlad/burstflow/internal/executor"
	"github.com/specialistvlad/burstflow/internal/testutil"
	"github.com/stretchr/testify/require"
)

// runHCL writes src as a workflow file and runs it with every catalog type
// served by scripted.
func runHCL(t *testing.T, scripted *testutil.ScriptedRunner, src string) (*executor.Result, string, error) {
	t.Helper()
	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": src})
	a, out := app.SetupAppTest(t, app.Config{}, scripted.Module("webhook", "email", "whatsapp", "ai_action"))
	res, err := a.RunWorkflow(context.Background(), filepath.Join(dir, "main.hcl"))
	require.NotNil(t, res, "workflow should have been executed: %v", err)
	return res, out.String(), err
}
