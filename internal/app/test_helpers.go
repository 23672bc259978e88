package app

import (
	"testing"

	"github.com/specialistvlad/burstflow/internal/runner"
	"github.com/specialistvlad/burstflow/internal/testutil"
	"github.com/stretchr/testify/require"
)

// SetupAppTest creates a new app instance for system testing. Logs and
// progress are captured in the returned buffer. Simulated node types run
// instantly and always succeed unless cfg says otherwise.
func SetupAppTest(t *testing.T, cfg Config, modules ...runner.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	cfg.LogLevel = "debug"
	if cfg.Simulate == nil {
		cfg.Simulate = &SimulateConfig{SuccessRate: 1}
	}
	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)

	buf := &testutil.SafeBuffer{}
	testApp, err := NewApp(buf, appConfig, modules...)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, testApp.Close())
	})
	testutil.DumpOnCleanup(t, buf)

	return testApp, buf
}
